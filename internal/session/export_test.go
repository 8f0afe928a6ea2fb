package session

import "time"

// SetClock replaces the store clock so tests can move time by hand.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
