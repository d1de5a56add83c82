package brain

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPAdapter forwards requests to a JSON chat endpoint. Plain text, JSON,
// SSE and NDJSON response bodies are all accepted.
type HTTPAdapter struct {
	url    string
	strict bool
	client *http.Client
}

func NewHTTPAdapter(url string) *HTTPAdapter {
	return NewHTTPAdapterWithOptions(url, false, 0)
}

// NewHTTPAdapterWithOptions enables strict parsing, which rejects stream
// lines that are not valid JSON.
func NewHTTPAdapterWithOptions(url string, strict bool, timeout time.Duration) *HTTPAdapter {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAdapter{
		url:    strings.TrimSpace(url),
		strict: strict,
		client: &http.Client{Timeout: timeout},
	}
}

func (a *HTTPAdapter) Reply(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return "", ErrUnavailable
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("ai fallback http status %d: %s", res.StatusCode, string(body))
	}

	ct := strings.ToLower(res.Header.Get("Content-Type"))
	switch {
	case strings.Contains(ct, "text/event-stream"):
		return a.consumeSSE(res.Body)
	case strings.Contains(ct, "application/x-ndjson"):
		return a.consumeNDJSON(res.Body)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err != nil {
		return strings.TrimSpace(string(body)), nil
	}
	return strings.TrimSpace(extractText(obj)), nil
}

func (a *HTTPAdapter) consumeSSE(body io.Reader) (string, error) {
	return a.consumeLines(body, func(line string) (string, bool) {
		if !strings.HasPrefix(line, "data:") {
			// Comments, event names and ids carry no text.
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(line, "data:")), true
	})
}

func (a *HTTPAdapter) consumeNDJSON(body io.Reader) (string, error) {
	return a.consumeLines(body, func(line string) (string, bool) {
		return line, true
	})
}

func (a *HTTPAdapter) consumeLines(body io.Reader, payloadOf func(line string) (string, bool)) (string, error) {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var out strings.Builder
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		payload, ok := payloadOf(line)
		if !ok || payload == "" {
			continue
		}
		if payload == "[DONE]" {
			break
		}

		delta := payload
		var obj map[string]any
		if err := json.Unmarshal([]byte(payload), &obj); err == nil {
			delta = extractText(obj)
		} else if a.strict {
			return "", fmt.Errorf("invalid stream payload: %w", err)
		} else if !strings.HasPrefix(line, "data:") {
			// NDJSON tolerates bare text continuation lines.
			delta = scanner.Text()
		}
		out.WriteString(delta)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("stream read: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

func extractText(obj map[string]any) string {
	for _, k := range []string{"text", "reply", "delta", "output", "message"} {
		if v, ok := obj[k]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
	}
	return ""
}
