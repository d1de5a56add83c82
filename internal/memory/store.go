package memory

import "sync"

// Persister receives a copy of the slots after every mutation.
// Implementations are expected to be asynchronous and best-effort.
type Persister interface {
	PersistMemory(s Slots)
}

// PersisterFunc adapts a plain function to Persister.
type PersisterFunc func(Slots)

func (f PersisterFunc) PersistMemory(s Slots) { f(s) }

// Store is the per-session slot store.
type Store struct {
	mu        sync.RWMutex
	slots     Slots
	persister Persister
}

func NewStore(initial Slots, persister Persister) *Store {
	return &Store{slots: initial, persister: persister}
}

func (s *Store) Get() Slots {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slots
}

// MergeUpdate applies partial and returns the resulting slots. An empty
// partial is a no-op and is not persisted.
func (s *Store) MergeUpdate(partial Slots) Slots {
	s.mu.Lock()
	next := s.slots.Merge(partial)
	changed := next != s.slots
	s.slots = next
	s.mu.Unlock()

	if changed {
		s.persist(next)
	}
	return next
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.slots = Slots{}
	s.mu.Unlock()
	s.persist(Slots{})
}

func (s *Store) persist(snapshot Slots) {
	if s.persister == nil {
		return
	}
	s.persister.PersistMemory(snapshot)
}
