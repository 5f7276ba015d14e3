// Package store holds the application's current valuation state as an
// explicit, passed-by-reference object with observer callbacks. Nothing in
// this package is module-level mutable state; the server constructs one
// Store and hands it to whoever needs change notifications.
package store

import (
	"sort"
	"sync"

	"github.com/finmodel/ddmcalc/internal/validate"
	"github.com/finmodel/ddmcalc/pkg/models"
)

// Snapshot is one immutable (request, result) pair — what the calculator
// last computed and from which inputs.
type Snapshot struct {
	Request validate.Request       `json:"request"`
	Result  models.ValuationResult `json:"result"`
}

// Listener receives the new snapshot after each Set.
type Listener func(Snapshot)

// Store is a thread-safe observable container for the latest snapshot.
// Listeners are invoked synchronously, outside the lock, in registration
// order.
type Store struct {
	mu        sync.RWMutex
	current   Snapshot
	populated bool
	nextID    int
	listeners map[int]Listener
}

// New returns an empty store with no snapshot and no listeners.
func New() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// Set replaces the current snapshot and notifies every listener.
func (s *Store) Set(snap Snapshot) {
	s.mu.Lock()
	s.current = snap
	s.populated = true
	notify := make([]Listener, 0, len(s.listeners))
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	// Map iteration order is random; deliver in registration order.
	sort.Ints(ids)
	for _, id := range ids {
		notify = append(notify, s.listeners[id])
	}
	s.mu.Unlock()

	for _, fn := range notify {
		fn(snap)
	}
}

// Get returns the current snapshot; ok is false until the first Set.
func (s *Store) Get() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.populated
}

// Subscribe registers a listener and returns its unsubscribe function.
// Unsubscribing twice is harmless.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// ListenerCount reports how many listeners are registered.
func (s *Store) ListenerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.listeners)
}
