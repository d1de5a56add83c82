package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/ent0n29/realtybot/internal/reliability"
)

const maxAudioBytes = 8 << 20

// HTTPSynthesizer posts {"text", "voice"} to a TTS endpoint and expects
// audio bytes back.
type HTTPSynthesizer struct {
	url    string
	voice  string
	client *http.Client
}

func NewHTTPSynthesizer(url, voiceID string, timeout time.Duration) *HTTPSynthesizer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSynthesizer{
		url:    strings.TrimSpace(url),
		voice:  strings.TrimSpace(voiceID),
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSynthesizer) Synthesize(ctx context.Context, text string) (Audio, error) {
	payload, err := json.Marshal(map[string]string{"text": text, "voice": s.voice})
	if err != nil {
		return Audio{}, fmt.Errorf("marshal tts request: %w", err)
	}
	var out Audio
	err = reliability.Do(ctx, 2, 150*time.Millisecond, time.Second, func(ctx context.Context) error {
		var err error
		out, err = s.do(ctx, payload)
		return err
	})
	return out, err
}

func (s *HTTPSynthesizer) do(ctx context.Context, payload []byte) (Audio, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return Audio{}, fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/*")

	res, err := s.client.Do(req)
	if err != nil {
		return Audio{}, reliability.Retryable(fmt.Errorf("send tts request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		err := fmt.Errorf("tts http status %d", res.StatusCode)
		if reliability.IsRetryableHTTPStatus(res.StatusCode) {
			return Audio{}, reliability.Retryable(err)
		}
		return Audio{}, err
	}

	data, err := io.ReadAll(io.LimitReader(res.Body, maxAudioBytes))
	if err != nil {
		return Audio{}, fmt.Errorf("read tts audio: %w", err)
	}
	if len(data) == 0 {
		return Audio{}, ErrUnavailable
	}
	return Audio{Data: data, Format: formatFromContentType(res.Header.Get("Content-Type"))}, nil
}

func formatFromContentType(ct string) string {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "mp3"
	}
	switch mediaType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return "wav"
	case "audio/ogg", "audio/opus":
		return "ogg"
	case "audio/pcm", "audio/l16":
		return "pcm"
	default:
		return "mp3"
	}
}
