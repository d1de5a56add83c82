package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ent0n29/realtybot/internal/memory"
)

// ErrUnavailable means no AI backend is configured or it declined to answer.
var ErrUnavailable = errors.New("ai fallback unavailable")

// HistoryTurn is one line of bounded conversation context.
type HistoryTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Request is what the dialogue engine hands to the AI fallback.
type Request struct {
	SessionID string        `json:"session_id,omitempty"`
	Utterance string        `json:"utterance"`
	History   []HistoryTurn `json:"history,omitempty"`
	Memory    memory.Slots  `json:"memory"`
}

// Adapter produces a free-text reply for input the rules could not handle.
type Adapter interface {
	Reply(ctx context.Context, req Request) (string, error)
}

// Config controls adapter construction.
type Config struct {
	Mode          string
	HTTPURL       string
	HTTPStrict    bool
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	Timeout       time.Duration
}

func NewAdapter(cfg Config) (Adapter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		return newAutoAdapter(cfg), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("ai fallback HTTP url is required for http mode")
		}
		return NewHTTPAdapterWithOptions(cfg.HTTPURL, cfg.HTTPStrict, cfg.Timeout), nil
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, errors.New("OPENAI_API_KEY is required for openai mode")
		}
		return NewOpenAIAdapter(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL), nil
	case "mock":
		return NewMockAdapter(), nil
	case "off", "none", "disabled":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unsupported ai fallback mode %q", cfg.Mode)
	}
}

// newAutoAdapter prefers OpenAI, falling back to the HTTP endpoint, and
// degrades to Unavailable so the rule templates answer.
func newAutoAdapter(cfg Config) Adapter {
	var adapters []Adapter
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		adapters = append(adapters, NewOpenAIAdapter(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL))
	}
	if strings.TrimSpace(cfg.HTTPURL) != "" {
		adapters = append(adapters, NewHTTPAdapterWithOptions(cfg.HTTPURL, cfg.HTTPStrict, cfg.Timeout))
	}
	switch len(adapters) {
	case 0:
		return Unavailable{}
	case 1:
		return adapters[0]
	default:
		return NewFallbackAdapter(adapters[0], adapters[1])
	}
}

// Unavailable always declines.
type Unavailable struct{}

func (Unavailable) Reply(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}
