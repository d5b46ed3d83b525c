package cart

import "sync"

// Store holds one user's cart state behind a mutex and notifies subscribers
// after each dispatch. It is the observable wrapper around Reduce.
type Store struct {
	mu    sync.Mutex
	state State
	subs  []func(State)
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{}
}

// Dispatch applies the action and returns the resulting state. Subscribers
// are invoked synchronously, outside the lock, in registration order.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	next := s.state
	subs := make([]func(State), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers a callback invoked after every dispatch.
func (s *Store) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
