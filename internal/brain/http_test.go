package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPAdapterConsumeSSE(t *testing.T) {
	a := NewHTTPAdapterWithOptions("http://example.test", false, 0)
	stream := strings.NewReader(strings.Join([]string{
		": keepalive",
		"",
		"data: {\"delta\":\"Hel\"}",
		"",
		"data: {\"delta\":\"lo\"}",
		"",
		"data: [DONE]",
		"",
	}, "\n"))

	text, err := a.consumeSSE(stream)
	if err != nil {
		t.Fatalf("consumeSSE() error = %v", err)
	}
	if text != "Hello" {
		t.Fatalf("text = %q, want %q", text, "Hello")
	}
}

func TestHTTPAdapterConsumeSSEStrictInvalidJSON(t *testing.T) {
	a := NewHTTPAdapterWithOptions("http://example.test", true, 0)
	if _, err := a.consumeSSE(strings.NewReader("data: {not-json}\n\n")); err == nil {
		t.Fatalf("consumeSSE() expected error for invalid strict payload")
	}
}

func TestHTTPAdapterConsumeNDJSON(t *testing.T) {
	a := NewHTTPAdapterWithOptions("http://example.test", false, 0)
	stream := strings.NewReader(strings.Join([]string{
		"{\"delta\":\"Hi\"}",
		" there",
		"[DONE]",
	}, "\n"))

	text, err := a.consumeNDJSON(stream)
	if err != nil {
		t.Fatalf("consumeNDJSON() error = %v", err)
	}
	if text != "Hi there" {
		t.Fatalf("text = %q, want %q", text, "Hi there")
	}
}

func TestHTTPAdapterPostsRequestAndReadsJSON(t *testing.T) {
	var got Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"reply":"Lekki is popular with young families."}`))
	}))
	defer ts.Close()

	a := NewHTTPAdapterWithOptions(ts.URL, false, time.Second)
	text, err := a.Reply(context.Background(), Request{
		Utterance: "is lekki good for families",
		History:   []HistoryTurn{{Speaker: "user", Text: "hi"}},
	})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if text != "Lekki is popular with young families." {
		t.Fatalf("text = %q", text)
	}
	if got.Utterance != "is lekki good for families" || len(got.History) != 1 {
		t.Fatalf("unexpected request payload: %+v", got)
	}
}

func TestHTTPAdapterStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	if _, err := NewHTTPAdapter(ts.URL).Reply(context.Background(), Request{Utterance: "x"}); err == nil {
		t.Fatalf("Reply() expected error for 502")
	}
}
