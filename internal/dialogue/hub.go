package dialogue

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/session"
)

// Hub maps live sessions to their controllers. The session manager owns
// lifecycle; the hub drops a controller when its session ends or expires.
type Hub struct {
	sessions *session.Manager
	deps     Deps

	mu          sync.RWMutex
	controllers map[string]*Controller
}

func NewHub(sessions *session.Manager, deps Deps) *Hub {
	deps = deps.withDefaults()
	h := &Hub{
		sessions:    sessions,
		deps:        deps,
		controllers: make(map[string]*Controller),
	}
	sessions.SetExpireHook(func(s *session.Session) {
		h.drop(s.ID)
		deps.Metrics.SessionEvent("expired")
		deps.Logger.Info("chat session expired",
			zap.String("session_id", s.ID),
			zap.String("client_id", s.ClientID),
		)
	})
	return h
}

// Open starts a session for clientID and restores its stored conversation.
// An empty clientID gets a new random one, returned in the snapshot.
func (h *Hub) Open(ctx context.Context, clientID string) (*Controller, session.Snapshot) {
	if clientID == "" {
		clientID = uuid.NewString()
	}
	if prev, err := h.sessions.ActiveForClient(clientID); err == nil {
		h.drop(prev.ID)
	}
	s := h.sessions.Create(clientID)
	c := New(s.ID, clientID, h.deps)
	snap := c.Restore(ctx)

	h.mu.Lock()
	h.controllers[s.ID] = c
	h.mu.Unlock()

	h.deps.Metrics.SessionEvent("opened")
	h.deps.Metrics.SetActiveSessions(h.sessions.ActiveCount())
	return c, snap
}

// Get returns the controller of an active session and marks it used.
func (h *Hub) Get(sessionID string) (*Controller, error) {
	s, err := h.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if s.Status != session.StatusActive {
		return nil, session.ErrNotFound
	}
	h.mu.RLock()
	c, ok := h.controllers[sessionID]
	h.mu.RUnlock()
	if !ok {
		return nil, session.ErrNotFound
	}
	if err := h.sessions.Touch(sessionID); err != nil {
		return nil, err
	}
	return c, nil
}

func (h *Hub) End(sessionID string) (*session.Session, error) {
	s, err := h.sessions.End(sessionID)
	if err != nil {
		return nil, err
	}
	h.drop(sessionID)
	h.deps.Metrics.SessionEvent("ended")
	h.deps.Metrics.SetActiveSessions(h.sessions.ActiveCount())
	return s, nil
}

func (h *Hub) drop(sessionID string) {
	h.mu.Lock()
	delete(h.controllers, sessionID)
	h.mu.Unlock()
}
