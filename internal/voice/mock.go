package voice

import (
	"context"
	"strings"
	"time"

	"github.com/ent0n29/realtybot/internal/audio"
)

// MockSynthesizer returns silent WAV audio sized to the text, for local
// development without a speech backend.
type MockSynthesizer struct {
	PerWord time.Duration
}

func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{PerWord: 60 * time.Millisecond}
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) (Audio, error) {
	if err := ctx.Err(); err != nil {
		return Audio{}, err
	}
	words := len(strings.Fields(text))
	if words == 0 {
		return Audio{}, ErrUnavailable
	}
	pcm := audio.Silence(time.Duration(words)*m.PerWord, audio.DefaultSampleRate)
	return Audio{Data: audio.EncodeWAV(pcm, audio.DefaultSampleRate), Format: "wav"}, nil
}
