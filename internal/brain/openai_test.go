package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ent0n29/realtybot/internal/memory"
)

func TestOpenAIAdapterReply(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %q, want chat completions", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" Ikoyi is quieter. "},"finish_reason":"stop"}]}`))
	}))
	defer ts.Close()

	a := NewOpenAIAdapter("test-key", "", ts.URL+"/v1")
	text, err := a.Reply(context.Background(), Request{
		Utterance: "is ikoyi quieter than vi",
		History:   []HistoryTurn{{Speaker: "assistant", Text: "Hello!"}},
		Memory:    memory.Slots{Location: "ikoyi", Email: "secret@x.com"},
	})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if text != "Ikoyi is quieter." {
		t.Fatalf("text = %q", text)
	}

	msgs, _ := body["messages"].([]any)
	if len(msgs) != 3 {
		t.Fatalf("len(messages) = %d, want 3", len(msgs))
	}
	system, _ := msgs[0].(map[string]any)["content"].(string)
	if !strings.Contains(system, "prefers ikoyi") {
		t.Fatalf("system prompt missing memory facts: %q", system)
	}
	if strings.Contains(system, "secret@x.com") {
		t.Fatalf("system prompt leaked contact details")
	}
}
