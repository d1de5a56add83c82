package brain

import (
	"context"
	"fmt"
	"strings"
)

// MockAdapter provides deterministic local replies for development.
type MockAdapter struct{}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

func (a *MockAdapter) Reply(ctx context.Context, req Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return buildMockReply(req), nil
}

func buildMockReply(req Request) string {
	base := strings.TrimSpace(req.Utterance)
	if base == "" {
		return ""
	}
	reply := fmt.Sprintf("You said: %s. I can help you find a property, book a viewing or connect you with an agent.", base)
	if loc := req.Memory.Location; loc != "" {
		reply += fmt.Sprintf(" I still have %s noted as your preferred area.", loc)
	}
	return reply
}
