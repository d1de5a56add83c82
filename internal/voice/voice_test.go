package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type stubSynth struct {
	calls atomic.Int32
	err   error
	block chan struct{}
}

func (s *stubSynth) Synthesize(ctx context.Context, text string) (Audio, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return Audio{}, ctx.Err()
		}
	}
	if s.err != nil {
		return Audio{}, s.err
	}
	return Audio{Data: []byte(text), Format: "pcm"}, nil
}

func TestSpeechText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"spells naira millions", "This one is ₦45,000,000.", "This one is 45 million naira."},
		{"spells fractional scale", "Price: ₦1,250,000", "Price: 1.25 million naira"},
		{"drops markdown and links", "See **[the listing](https://example.com/x)** now", "See the listing now"},
		{"drops emoji", "Welcome 🏠 home", "Welcome home"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SpeechText(tc.in); got != tc.want {
				t.Fatalf("SpeechText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSpeakerDeliversAudioToSink(t *testing.T) {
	defer goleak.VerifyNone(t)
	synth := &stubSynth{}
	sp := NewSpeaker(synth, SpeakerOptions{Workers: 1})

	var (
		mu  sync.Mutex
		got []string
	)
	ok := sp.Speak(Job{SessionID: "s1", TurnID: "t1", Text: "Hello there", Sink: func(turnID string, a Audio) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, turnID+":"+string(a.Data))
	}})
	if !ok {
		t.Fatalf("Speak() = false, want accepted")
	}
	sp.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "t1:Hello there" {
		t.Fatalf("sink received %v", got)
	}
}

func TestSpeakerDropsWhenQueueFull(t *testing.T) {
	synth := &stubSynth{block: make(chan struct{})}
	sp := NewSpeaker(synth, SpeakerOptions{Workers: 1, QueueSize: 1})
	sink := func(string, Audio) {}

	accepted := 0
	for i := 0; i < 5; i++ {
		if sp.Speak(Job{TurnID: "t", Text: "hello", Sink: sink}) {
			accepted++
		}
	}
	close(synth.block)
	sp.Close()

	// One job in flight on the worker plus one queued at most.
	if accepted < 1 || accepted > 2 {
		t.Fatalf("accepted = %d, want 1 or 2", accepted)
	}
}

func TestSpeakerSkipsFailuresAndEmptyText(t *testing.T) {
	defer goleak.VerifyNone(t)
	synth := &stubSynth{err: errors.New("tts down")}
	sp := NewSpeaker(synth, SpeakerOptions{})
	called := atomic.Bool{}
	sink := func(string, Audio) { called.Store(true) }

	if sp.Speak(Job{Text: "  ", Sink: sink}) {
		t.Fatalf("Speak() accepted empty text")
	}
	sp.Speak(Job{Text: "hello", Sink: sink})
	sp.Close()
	if called.Load() {
		t.Fatalf("sink called after synthesis failure")
	}
	if sp.Speak(Job{Text: "late", Sink: sink}) {
		t.Fatalf("Speak() accepted job after Close")
	}
}

func TestFailoverSynthesizerSticksToFallback(t *testing.T) {
	primary := &stubSynth{err: errors.New("primary down")}
	fallback := &stubSynth{}
	f := NewFailoverSynthesizer(primary, fallback)

	for i := 0; i < 2; i++ {
		if _, err := f.Synthesize(context.Background(), "hi"); err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
	}
	if primary.calls.Load() != 1 {
		t.Fatalf("primary calls = %d, want 1", primary.calls.Load())
	}
	if fallback.calls.Load() != 2 {
		t.Fatalf("fallback calls = %d, want 2", fallback.calls.Load())
	}
	if !f.FallbackActive() {
		t.Fatalf("FallbackActive() = false, want true")
	}
}

func TestFailoverSynthesizerReturnsToPrimary(t *testing.T) {
	primary := &stubSynth{err: errors.New("primary down")}
	fallback := &stubSynth{}
	f := NewFailoverSynthesizer(primary, fallback)
	_, _ = f.Synthesize(context.Background(), "hi")

	primary.err = nil
	fallback.err = errors.New("fallback down")
	if _, err := f.Synthesize(context.Background(), "hi"); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if f.FallbackActive() {
		t.Fatalf("FallbackActive() = true, want primary restored")
	}
}

func TestHTTPSynthesizer(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write([]byte("RIFF"))
	}))
	defer ts.Close()

	out, err := NewHTTPSynthesizer(ts.URL, "ada", time.Second).Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if out.Format != "wav" || string(out.Data) != "RIFF" {
		t.Fatalf("Synthesize() = %+v", out)
	}
}

func TestHTTPSynthesizerRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3"))
	}))
	defer ts.Close()

	out, err := NewHTTPSynthesizer(ts.URL, "", time.Second).Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if out.Format != "mp3" || calls.Load() != 2 {
		t.Fatalf("out = %+v, calls = %d", out, calls.Load())
	}
}

func TestMockSynthesizerProducesWAV(t *testing.T) {
	out, err := NewMockSynthesizer().Synthesize(context.Background(), "three little words")
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	if out.Format != "wav" || len(out.Data) <= 44 {
		t.Fatalf("unexpected mock audio: format=%s len=%d", out.Format, len(out.Data))
	}
}

func TestNewSynthesizerModes(t *testing.T) {
	if s, err := NewSynthesizer(Config{}); err != nil || s != nil {
		t.Fatalf("NewSynthesizer(auto, no url) = %v, %v; want nil, nil", s, err)
	}
	if _, err := NewSynthesizer(Config{Mode: "http"}); err == nil {
		t.Fatalf("NewSynthesizer(http) expected error without url")
	}
	if s, _ := NewSynthesizer(Config{Mode: "mock"}); s == nil {
		t.Fatalf("NewSynthesizer(mock) = nil")
	}
	if s, _ := NewSynthesizer(Config{HTTPURL: "http://tts.local"}); s == nil {
		t.Fatalf("NewSynthesizer(auto, url) = nil")
	}
}
