package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestManagerCreateGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create("browser-1")
	if s.ID == "" {
		t.Fatalf("session ID should not be empty")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ClientID != "browser-1" || got.Status != StatusActive {
		t.Fatalf("unexpected session state: %+v", got)
	}

	ended, err := m.End(s.ID)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.Status != StatusEnded {
		t.Fatalf("ended status = %q, want %q", ended.Status, StatusEnded)
	}
	if _, err := m.ActiveForClient("browser-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ActiveForClient() error = %v, want ErrNotFound", err)
	}
}

func TestManagerCreateReplacesClientSession(t *testing.T) {
	m := NewManager(time.Minute)
	first := m.Create("browser-1")
	second := m.Create("browser-1")

	active, err := m.ActiveForClient("browser-1")
	if err != nil {
		t.Fatalf("ActiveForClient() error = %v", err)
	}
	if active.ID != second.ID {
		t.Fatalf("active = %q, want %q", active.ID, second.ID)
	}
	old, _ := m.Get(first.ID)
	if old.Status != StatusEnded {
		t.Fatalf("previous session status = %q, want ended", old.Status)
	}
	if got := m.ActiveCount(); got != 1 {
		t.Fatalf("ActiveCount() = %d, want 1", got)
	}
}

func TestManagerGetUnknown(t *testing.T) {
	if _, err := NewManager(time.Minute).Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestManagerJanitorExpiresInactive(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	var hooked atomic.Int32
	m.SetExpireHook(func(*Session) { hooked.Add(1) })
	s := m.Create("browser-1")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	time.Sleep(90 * time.Millisecond)
	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusEnded {
		t.Fatalf("Status = %q, want %q", got.Status, StatusEnded)
	}
	if hooked.Load() != 1 {
		t.Fatalf("expire hook calls = %d, want 1", hooked.Load())
	}
}

func TestManagerJanitorForgetsEndedSessions(t *testing.T) {
	m := NewManager(time.Hour)
	m.SetEndedRetention(10 * time.Millisecond)
	s := m.Create("browser-1")
	if _, err := m.End(s.ID); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	m.expireInactive()
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound after retention", err)
	}
}
