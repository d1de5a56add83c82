package voice

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	// Mode is auto, http, mock or off. auto uses http when a URL is set
	// and disables speech output otherwise.
	Mode    string
	HTTPURL string
	VoiceID string
	Timeout time.Duration
}

// NewSynthesizer returns nil when speech output is disabled.
func NewSynthesizer(cfg Config) (Synthesizer, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	hasURL := strings.TrimSpace(cfg.HTTPURL) != ""
	switch mode {
	case "", "auto":
		if !hasURL {
			return nil, nil
		}
		return NewFailoverSynthesizer(NewHTTPSynthesizer(cfg.HTTPURL, cfg.VoiceID, cfg.Timeout), NewMockSynthesizer()), nil
	case "http":
		if !hasURL {
			return nil, fmt.Errorf("TTS_HTTP_URL is required for http speech mode")
		}
		return NewHTTPSynthesizer(cfg.HTTPURL, cfg.VoiceID, cfg.Timeout), nil
	case "mock":
		return NewMockSynthesizer(), nil
	case "off", "none", "disabled":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported speech mode %q", cfg.Mode)
	}
}
