package voice

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ent0n29/realtybot/internal/observability"
)

// Job asks for one assistant turn to be spoken. Sink receives the audio
// from a worker goroutine.
type Job struct {
	SessionID string
	TurnID    string
	Text      string
	Sink      func(turnID string, a Audio)
}

type SpeakerOptions struct {
	Workers   int
	QueueSize int
	Timeout   time.Duration
	Logger    *zap.Logger
	Metrics   *observability.Metrics
}

// Speaker synthesizes fire-and-forget. Speak never blocks: when the queue
// is full the job is dropped.
type Speaker struct {
	synth   Synthesizer
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics

	mu     sync.RWMutex
	closed bool
	jobs   chan Job
	wg     sync.WaitGroup
}

func NewSpeaker(synth Synthesizer, opts SpeakerOptions) *Speaker {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 32
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Speaker{
		synth:   synth,
		timeout: opts.Timeout,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		jobs:    make(chan Job, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		s.wg.Add(1)
		go s.work()
	}
	return s
}

// Speak enqueues j and reports whether it was accepted.
func (s *Speaker) Speak(j Job) bool {
	if s == nil || j.Sink == nil {
		return false
	}
	if j.Text = SpeechText(j.Text); j.Text == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case s.jobs <- j:
		return true
	default:
		s.metrics.CollaboratorError("tts", "queue_full")
		return false
	}
}

// Close stops accepting jobs and waits for in-flight ones.
func (s *Speaker) Close() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.jobs)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Speaker) work() {
	defer s.wg.Done()
	for j := range s.jobs {
		s.run(j)
	}
}

func (s *Speaker) run(j Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	out, err := s.synth.Synthesize(ctx, j.Text)
	if err != nil {
		reason := "error"
		if ctx.Err() != nil {
			reason = "timeout"
		}
		s.metrics.CollaboratorError("tts", reason)
		s.logger.Debug("speech synthesis failed",
			zap.String("session_id", j.SessionID),
			zap.String("turn_id", j.TurnID),
			zap.Error(err),
		)
		return
	}
	s.metrics.ObserveStage("tts", time.Since(started))
	j.Sink(j.TurnID, out)
}
