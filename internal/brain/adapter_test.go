package brain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ent0n29/realtybot/internal/memory"
)

type errAdapter struct{}

func (errAdapter) Reply(context.Context, Request) (string, error) {
	return "", errors.New("boom")
}

type okAdapter struct{ text string }

func (a okAdapter) Reply(context.Context, Request) (string, error) { return a.text, nil }

type cancelAdapter struct{}

func (cancelAdapter) Reply(context.Context, Request) (string, error) {
	return "", context.Canceled
}

type countingAdapter struct {
	text  string
	calls int
}

func (a *countingAdapter) Reply(context.Context, Request) (string, error) {
	a.calls++
	return a.text, nil
}

func TestNewAdapterAutoWithoutBackendsIsUnavailable(t *testing.T) {
	a, err := NewAdapter(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("NewAdapter() error = %v", err)
	}
	_, err = a.Reply(context.Background(), Request{Utterance: "hello"})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("Reply() error = %v, want ErrUnavailable", err)
	}
}

func TestNewAdapterRejectsIncompleteModes(t *testing.T) {
	if _, err := NewAdapter(Config{Mode: "http"}); err == nil {
		t.Fatalf("NewAdapter(http) expected error without url")
	}
	if _, err := NewAdapter(Config{Mode: "openai"}); err == nil {
		t.Fatalf("NewAdapter(openai) expected error without key")
	}
	if _, err := NewAdapter(Config{Mode: "telepathy"}); err == nil {
		t.Fatalf("NewAdapter(telepathy) expected error")
	}
}

func TestMockAdapterMentionsRememberedLocation(t *testing.T) {
	text, err := NewMockAdapter().Reply(context.Background(), Request{
		Utterance: "what is the process",
		Memory:    memory.Slots{Location: "lekki"},
	})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if !strings.Contains(text, "what is the process") || !strings.Contains(text, "lekki") {
		t.Fatalf("unexpected mock reply: %q", text)
	}
}

func TestFallbackAdapterUsesFallback(t *testing.T) {
	a := NewFallbackAdapter(errAdapter{}, okAdapter{text: "fallback"})
	text, err := a.Reply(context.Background(), Request{Utterance: "x"})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if text != "fallback" {
		t.Fatalf("text = %q, want fallback", text)
	}
}

func TestFallbackAdapterTreatsEmptyPrimaryAsMiss(t *testing.T) {
	a := NewFallbackAdapter(okAdapter{text: "  "}, okAdapter{text: "second"})
	text, err := a.Reply(context.Background(), Request{Utterance: "x"})
	if err != nil || text != "second" {
		t.Fatalf("Reply() = %q, %v, want second", text, err)
	}
}

func TestFallbackAdapterSkipsFallbackOnCanceledContext(t *testing.T) {
	fb := &countingAdapter{text: "fallback"}
	a := NewFallbackAdapter(cancelAdapter{}, fb)
	_, err := a.Reply(context.Background(), Request{Utterance: "x"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if fb.calls != 0 {
		t.Fatalf("fallback should not be called, calls = %d", fb.calls)
	}
}
