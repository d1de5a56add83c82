// Package voice provides best-effort speech output for assistant turns.
// Speech input is transcribed in the browser and arrives as text.
package voice

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("speech synthesis unavailable")

// Audio is one synthesized utterance.
type Audio struct {
	Data   []byte
	Format string
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Audio, error)
}
