// Package apisession keeps per-client state between connections. The
// server hands out an opaque session ID; a client that comes back with it
// within the TTL gets the same state again.
package apisession

import (
	"sync"
	"time"
)

// cleanupInterval is how many Get calls pass between lazy evictions.
const cleanupInterval = 100

type entry[T any] struct {
	value      *T
	lastAccess time.Time
}

// Store is a typed, thread-safe session store.
type Store[T any] struct {
	mu       sync.Mutex
	entries  map[string]*entry[T]
	ttl      time.Duration
	now      func() time.Time
	getCalls int
}

// New creates a Store that forgets sessions idle longer than ttl.
func New[T any](ttl time.Duration) *Store[T] {
	return &Store[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock replaces the wall clock.
func (s *Store[T]) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Get returns the state for id and refreshes it. Expired sessions are
// reported as missing.
func (s *Store[T]) Get(id string) (*T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getCalls++
	if s.getCalls%cleanupInterval == 0 {
		s.cleanupLocked()
	}

	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastAccess) > s.ttl {
		delete(s.entries, id)
		return nil, false
	}
	e.lastAccess = now
	return e.value, true
}

// Put stores v under id, replacing any previous state.
func (s *Store[T]) Put(id string, v *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &entry[T]{value: v, lastAccess: s.now()}
}

// Touch refreshes id without returning it.
func (s *Store[T]) Touch(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[id]; ok {
		e.lastAccess = s.now()
	}
}

// Delete forgets id.
func (s *Store[T]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Cleanup evicts expired sessions and returns how many went.
func (s *Store[T]) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleanupLocked()
}

func (s *Store[T]) cleanupLocked() int {
	cutoff := s.now().Add(-s.ttl)
	n := 0
	for id, e := range s.entries {
		if e.lastAccess.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// Len returns the number of stored sessions, expired or not.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
