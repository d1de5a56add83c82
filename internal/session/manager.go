package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var ErrNotFound = errors.New("session not found")

// Session is the lifecycle record of one widget conversation. ClientID
// identifies the browser and keys durable storage.
type Session struct {
	ID             string    `json:"session_id"`
	ClientID       string    `json:"client_id"`
	Status         Status    `json:"status"`
	StartedAt      time.Time `json:"started_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	EndedAt        time.Time `json:"ended_at"`
}

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	sessionByClient   map[string]string
	inactivityTimeout time.Duration
	endedRetention    time.Duration
	onExpire          func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		sessionByClient:   make(map[string]string),
		inactivityTimeout: inactivityTimeout,
		endedRetention:    5 * time.Minute,
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// SetEndedRetention controls how long ended sessions stay readable before
// the janitor forgets them.
func (m *Manager) SetEndedRetention(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endedRetention = d
}

// Create starts a session. A client with an active session gets a new one
// and the old one is ended.
func (m *Manager) Create(clientID string) *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:             uuid.NewString(),
		ClientID:       clientID,
		Status:         StatusActive,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.sessionByClient[clientID]; ok && clientID != "" {
		if old := m.sessions[prev]; old != nil {
			old.Status = StatusEnded
			old.EndedAt = now
		}
	}
	m.sessions[s.ID] = s
	if clientID != "" {
		m.sessionByClient[clientID] = s.ID
	}
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// ActiveForClient returns the client's active session, if any.
func (m *Manager) ActiveForClient(clientID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.sessionByClient[clientID]
	if !ok {
		return nil, ErrNotFound
	}
	s, ok := m.sessions[id]
	if !ok || s.Status != StatusActive {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *Manager) Touch(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) End(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	now := time.Now().UTC()
	s.Status = StatusEnded
	s.LastActivityAt = now
	s.EndedAt = now
	if s.ClientID != "" && m.sessionByClient[s.ClientID] == s.ID {
		delete(m.sessionByClient, s.ClientID)
	}
	return clone(s), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Status != StatusActive {
			if !s.EndedAt.IsZero() && now.Sub(s.EndedAt) >= m.endedRetention {
				delete(m.sessions, id)
			}
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.Status = StatusEnded
		s.LastActivityAt = now
		s.EndedAt = now
		expired = append(expired, clone(s))
		if s.ClientID != "" && m.sessionByClient[s.ClientID] == s.ID {
			delete(m.sessionByClient, s.ClientID)
		}
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	return &c
}
