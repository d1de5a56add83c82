package dialogue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ent0n29/realtybot/internal/session"
)

func TestHubOpenAssignsClientID(t *testing.T) {
	h := NewHub(session.NewManager(time.Minute), Deps{Replies: generator()})
	c, snap := h.Open(context.Background(), "")
	if snap.ClientID == "" || c.ClientID() != snap.ClientID {
		t.Fatalf("client id = %q / %q, want generated id", snap.ClientID, c.ClientID())
	}
	got, err := h.Get(snap.SessionID)
	if err != nil || got != c {
		t.Fatalf("Get() = %v, %v; want opened controller", got, err)
	}
}

func TestHubReopenEndsPreviousSession(t *testing.T) {
	h := NewHub(session.NewManager(time.Minute), Deps{Replies: generator()})
	_, first := h.Open(context.Background(), "browser-1")
	_, second := h.Open(context.Background(), "browser-1")

	if first.SessionID == second.SessionID {
		t.Fatalf("reopen reused session %s", first.SessionID)
	}
	if _, err := h.Get(first.SessionID); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Get(first) error = %v, want ErrNotFound", err)
	}
	if _, err := h.Get(second.SessionID); err != nil {
		t.Fatalf("Get(second) error = %v", err)
	}
}

func TestHubEnd(t *testing.T) {
	h := NewHub(session.NewManager(time.Minute), Deps{Replies: generator()})
	_, snap := h.Open(context.Background(), "browser-1")

	s, err := h.End(snap.SessionID)
	if err != nil || s.Status != session.StatusEnded {
		t.Fatalf("End() = %+v, %v", s, err)
	}
	if _, err := h.Get(snap.SessionID); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("Get() after End error = %v, want ErrNotFound", err)
	}
	if _, err := h.End("missing"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("End(missing) error = %v, want ErrNotFound", err)
	}
}
