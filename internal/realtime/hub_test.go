package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeConn struct {
	mu        sync.Mutex
	written   []any
	failing   bool
	closed    int
	deadlines int
}

func (f *fakeConn) WriteJSON(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, v)
	return nil
}

func (f *fakeConn) SetWriteDeadline(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadlines++
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

func (f *fakeConn) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// stalledConn never completes a write before its deadline, like a peer that
// stopped reading.
type stalledConn struct {
	mu       sync.Mutex
	deadline time.Time
	closed   chan struct{}
	once     sync.Once
}

func newStalledConn() *stalledConn {
	return &stalledConn{closed: make(chan struct{})}
}

func (s *stalledConn) SetWriteDeadline(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadline = t
	return nil
}

func (s *stalledConn) WriteJSON(v any) error {
	s.mu.Lock()
	wait := time.Until(s.deadline)
	s.mu.Unlock()

	select {
	case <-time.After(wait):
		return errors.New("i/o timeout")
	case <-s.closed:
		return errors.New("use of closed connection")
	}
}

func (s *stalledConn) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	a, b := &fakeConn{}, &fakeConn{}
	hub.Register(a)
	hub.Register(b)
	require.Equal(t, 2, hub.Count())

	event := Event{Type: EventInsert, Table: TableFoodSubmissions, Data: map[string]any{"id": "1"}}
	hub.Broadcast(event)

	require.Eventually(t, func() bool { return a.count() == 1 && b.count() == 1 }, time.Second, 5*time.Millisecond)
	a.mu.Lock()
	assert.Equal(t, event, a.written[0])
	assert.Equal(t, 1, a.deadlines)
	a.mu.Unlock()
}

func TestHubDropsFailingClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	healthy, broken := &fakeConn{}, &fakeConn{failing: true}
	hub.Register(healthy)
	hub.Register(broken)

	hub.Broadcast(Event{Type: EventInsert, Table: TableFoodSubmissions})

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, broken.closeCount())
	require.Eventually(t, func() bool { return healthy.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestHubStalledClientDoesNotBlockBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop(), WithWriteTimeout(500*time.Millisecond), WithSendBuffer(4))
	defer hub.Close()
	healthy := &fakeConn{}
	hub.Register(healthy)
	hub.Register(newStalledConn())

	start := time.Now()
	for i := 0; i < 20; i++ {
		hub.Broadcast(Event{Type: EventInsert, Table: TableFoodSubmissions, Data: i})
	}
	assert.Less(t, time.Since(start), 250*time.Millisecond)

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return healthy.count() > 0 }, time.Second, 5*time.Millisecond)
}

func TestHubWriteTimeoutDropsClient(t *testing.T) {
	hub := NewHub(zap.NewNop(), WithWriteTimeout(20*time.Millisecond))
	defer hub.Close()
	c := hub.Register(newStalledConn())

	require.NoError(t, c.Send("hello"))
	require.Eventually(t, func() bool { return hub.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Send("again"), ErrClientClosed)
}

func TestHubUnregisterIsIdempotent(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := &fakeConn{}
	c := hub.Register(conn)

	hub.Unregister(c)
	hub.Unregister(c)

	assert.Equal(t, 0, hub.Count())
	assert.Equal(t, 1, conn.closeCount())
}

func TestHubConcurrentBroadcast(t *testing.T) {
	hub := NewHub(zap.NewNop())
	defer hub.Close()
	conn := &fakeConn{}
	hub.Register(conn)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast(Event{Type: EventUpdate, Table: TableFoodSubmissions})
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return conn.count() == 20 }, time.Second, 5*time.Millisecond)
}
