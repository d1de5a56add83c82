package voice

import (
	"context"
	"fmt"
	"sync/atomic"
)

// FailoverSynthesizer prefers primary and switches to fallback when it
// fails. Once fallback succeeds it stays active until it fails itself; then
// primary is retried.
type FailoverSynthesizer struct {
	primary        Synthesizer
	fallback       Synthesizer
	fallbackActive atomic.Bool
}

func NewFailoverSynthesizer(primary, fallback Synthesizer) *FailoverSynthesizer {
	return &FailoverSynthesizer{primary: primary, fallback: fallback}
}

func (f *FailoverSynthesizer) Synthesize(ctx context.Context, text string) (Audio, error) {
	first, second := f.primary, f.fallback
	if f.fallbackActive.Load() {
		first, second = f.fallback, f.primary
	}

	out, firstErr := first.Synthesize(ctx, text)
	if firstErr == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return Audio{}, firstErr
	}

	out, secondErr := second.Synthesize(ctx, text)
	if secondErr != nil {
		return Audio{}, fmt.Errorf("tts failed: %v; tts retry failed: %w", firstErr, secondErr)
	}
	// second succeeded, so it becomes the preferred backend.
	f.fallbackActive.Store(second == f.fallback)
	return out, nil
}

// FallbackActive reports whether the fallback is currently preferred.
func (f *FailoverSynthesizer) FallbackActive() bool {
	return f.fallbackActive.Load()
}
