package view

import (
	"sync"
	"time"
)

// Session holds the per-process presentation state: the active sort key and
// which month groups are expanded. It is created once at startup and never
// persisted.
type Session struct {
	mu       sync.Mutex
	sortKey  SortKey
	expanded map[string]bool
}

func NewSession(now time.Time) *Session {
	return &Session{
		sortKey:  SortByDue,
		expanded: DefaultExpanded(now),
	}
}

func (s *Session) SortKey() SortKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortKey
}

func (s *Session) SetSortKey(key SortKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortKey = key
}

// ToggleMonth flips a group between expanded and collapsed and returns the
// new state.
func (s *Session) ToggleMonth(month string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanded[month] {
		delete(s.expanded, month)
		return false
	}
	s.expanded[month] = true
	return true
}

// Expanded returns a copy of the expanded set.
func (s *Session) Expanded() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]bool, len(s.expanded))
	for k, v := range s.expanded {
		out[k] = v
	}
	return out
}
