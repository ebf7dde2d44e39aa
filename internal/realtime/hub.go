// Package realtime fans database change events out to websocket subscribers.
package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types pushed to subscribers
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
)

// TableFoodSubmissions is the only table with change notifications
const TableFoodSubmissions = "food_submissions"

const (
	defaultWriteTimeout = 10 * time.Second
	defaultSendBuffer   = 64
)

var (
	// ErrClientClosed is returned when sending to an unregistered client
	ErrClientClosed = errors.New("realtime client closed")
	// ErrClientTooSlow is returned when a client's outgoing queue is full
	ErrClientTooSlow = errors.New("realtime client too slow")
)

// Event is a row change on a table
type Event struct {
	Type  string `json:"type"`
	Table string `json:"table"`
	Data  any    `json:"data"`
}

// Conn is the part of a websocket connection the hub writes to
type Conn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one registered subscriber. Messages are queued and written by a
// single goroutine per client, so a stalled reader never blocks the sender.
type Client struct {
	ID   string
	conn Conn
	send chan any
	done chan struct{}
}

// Send queues v for the client. It never blocks.
func (c *Client) Send(v any) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- v:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		return ErrClientTooSlow
	}
}

// Option configures a Hub
type Option func(*Hub)

// WithWriteTimeout bounds how long a single write to a client may take
func WithWriteTimeout(d time.Duration) Option {
	return func(h *Hub) { h.writeTimeout = d }
}

// WithSendBuffer sets how many messages may be queued per client
func WithSendBuffer(n int) Option {
	return func(h *Hub) { h.sendBuffer = n }
}

// Hub tracks connected clients and broadcasts events to them
type Hub struct {
	clients      sync.Map // id -> *Client
	logger       *zap.Logger
	writeTimeout time.Duration
	sendBuffer   int
}

// NewHub creates an empty hub
func NewHub(logger *zap.Logger, opts ...Option) *Hub {
	h := &Hub{
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
		sendBuffer:   defaultSendBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a connection, starts its writer and returns its client handle
func (h *Hub) Register(conn Conn) *Client {
	c := &Client{
		ID:   uuid.New().String(),
		conn: conn,
		send: make(chan any, h.sendBuffer),
		done: make(chan struct{}),
	}
	h.clients.Store(c.ID, c)
	go h.writePump(c)
	h.logger.Debug("Realtime client registered", zap.String("client", c.ID))
	return c
}

func (h *Hub) writePump(c *Client) {
	for {
		select {
		case <-c.done:
			return
		case v := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := c.conn.WriteJSON(v); err != nil {
				h.logger.Warn("Dropping realtime client", zap.String("client", c.ID), zap.Error(err))
				h.Unregister(c)
				return
			}
		}
	}
}

// Unregister removes the client, stops its writer and closes its connection.
// Calling it twice is harmless.
func (h *Hub) Unregister(c *Client) {
	if _, loaded := h.clients.LoadAndDelete(c.ID); !loaded {
		return
	}
	close(c.done)
	_ = c.conn.Close()
	h.logger.Debug("Realtime client unregistered", zap.String("client", c.ID))
}

// Broadcast queues the event for every client. Clients whose queue is full
// are dropped.
func (h *Hub) Broadcast(event Event) {
	h.clients.Range(func(_, value any) bool {
		c := value.(*Client)
		if err := c.Send(event); err != nil {
			h.logger.Warn("Dropping realtime client", zap.String("client", c.ID), zap.Error(err))
			h.Unregister(c)
		}
		return true
	})
}

// Close unregisters every client
func (h *Hub) Close() {
	h.clients.Range(func(_, value any) bool {
		h.Unregister(value.(*Client))
		return true
	})
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	n := 0
	h.clients.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
