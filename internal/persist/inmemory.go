package persist

import (
	"context"
	"encoding/json"
	"sync"
)

// InMemoryStore is a process-local store for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	clients map[string]Values
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{clients: make(map[string]Values)}
}

func (s *InMemoryStore) Init(context.Context) error { return nil }

func (s *InMemoryStore) Load(_ context.Context, clientID string) (Values, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.clients[clientID]
	out := make(Values, len(stored))
	for k, v := range stored {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out, nil
}

func (s *InMemoryStore) Save(_ context.Context, clientID string, values Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.clients[clientID]
	if !ok {
		stored = make(Values, len(values))
		s.clients[clientID] = stored
	}
	for k, v := range values {
		stored[k] = append(json.RawMessage(nil), v...)
	}
	return nil
}

func (s *InMemoryStore) Clear(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, clientID)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
