package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// FallbackAdapter attempts a primary adapter first and falls back on error
// or an empty reply.
type FallbackAdapter struct {
	primary  Adapter
	fallback Adapter
}

func NewFallbackAdapter(primary Adapter, fallback Adapter) *FallbackAdapter {
	return &FallbackAdapter{
		primary:  primary,
		fallback: fallback,
	}
}

func (a *FallbackAdapter) Reply(ctx context.Context, req Request) (string, error) {
	if a == nil || a.primary == nil {
		if a != nil && a.fallback != nil {
			return a.fallback.Reply(ctx, req)
		}
		return "", fmt.Errorf("fallback adapter misconfigured")
	}

	text, err := a.primary.Reply(ctx, req)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "", err
	}
	if a.fallback == nil {
		if err == nil {
			err = ErrUnavailable
		}
		return "", err
	}

	fallbackText, fallbackErr := a.fallback.Reply(ctx, req)
	if fallbackErr != nil {
		if err == nil {
			return "", fallbackErr
		}
		return "", fmt.Errorf("primary adapter error: %w; fallback adapter error: %v", err, fallbackErr)
	}
	return fallbackText, nil
}
