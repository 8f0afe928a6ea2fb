package session

import (
	"sync"
	"time"

	"github.com/DeafMist/comment-radar/internal/models"
)

type entry struct {
	id string
	ts time.Time
}

type item struct {
	set models.ResultSet
	ts  time.Time
}

// Store keeps a bounded set of recently fetched result sets so follow-up
// views (filter, CSV, chart, word cloud) can reuse them. It never feeds a
// new fetch: every fetch starts cold.
type Store struct {
	mu       sync.Mutex
	items    map[string]item
	order    []entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a store with the provided capacity and ttl.
func NewStore(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{
		items:    make(map[string]item, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the result set stored under id while it is inside the ttl window.
func (s *Store) Get(id string) (models.ResultSet, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok || now.Sub(it.ts) > s.ttl {
		return models.ResultSet{}, false
	}
	return it.set, true
}

// Put records a result set under its ID, evicting the oldest entries when
// the store is over capacity.
func (s *Store) Put(set models.ResultSet) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[set.ID] = item{set: set, ts: now}
	s.order = append(s.order, entry{id: set.ID, ts: now})
	s.compact(now)
}

// Len reports how many entries are held, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) compact(now time.Time) {
	cutoff := now.Add(-s.ttl)

	for len(s.order) > 0 && (len(s.items) > s.capacity || s.order[0].ts.Before(cutoff)) {
		oldest := s.order[0]
		s.order = s.order[1:]

		if it, ok := s.items[oldest.id]; ok && it.ts.Equal(oldest.ts) {
			delete(s.items, oldest.id)
		}
	}
}
