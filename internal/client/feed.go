package client

import (
	"sync"

	"github.com/franckalain/foodrescue/internal/models"
	"github.com/franckalain/foodrescue/internal/realtime"
)

// FeedSize is the maximum number of entries a Feed keeps
const FeedSize = 10

// Feed is the live list of recent submissions, newest first. It never holds
// more than FeedSize entries.
type Feed struct {
	mu    sync.Mutex
	items []models.FoodSubmission
}

// Reset replaces the list with the result of the initial query
func (f *Feed) Reset(subs []*models.FoodSubmission) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = f.items[:0]
	for _, s := range subs {
		if len(f.items) == FeedSize {
			break
		}
		f.items = append(f.items, *s)
	}
}

// Prepend puts a freshly inserted submission at the front, dropping the oldest
// entry when full.
func (f *Feed) Prepend(sub models.FoodSubmission) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items := make([]models.FoodSubmission, 0, FeedSize)
	items = append(items, sub)
	for _, s := range f.items {
		if len(items) == FeedSize {
			break
		}
		items = append(items, s)
	}
	f.items = items
}

// Apply folds a realtime event into the feed: inserts are prepended and
// updates replace the matching entry in place.
func (f *Feed) Apply(e Event) {
	switch e.Type {
	case realtime.EventInsert:
		f.Prepend(e.Data)
	case realtime.EventUpdate:
		f.mu.Lock()
		defer f.mu.Unlock()
		for i := range f.items {
			if f.items[i].ID == e.Data.ID {
				f.items[i] = e.Data
				return
			}
		}
	}
}

// Items returns a copy of the current list
func (f *Feed) Items() []models.FoodSubmission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.FoodSubmission(nil), f.items...)
}

// Len returns the number of entries
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}
