package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ent0n29/realtybot/internal/reliability"
)

// HTTPSearcher queries the marketplace listing API.
type HTTPSearcher struct {
	url      string
	client   *http.Client
	attempts int
}

func NewHTTPSearcher(endpoint string, timeout time.Duration) *HTTPSearcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSearcher{
		url:      strings.TrimSpace(endpoint),
		client:   &http.Client{Timeout: timeout},
		attempts: 2,
	}
}

func (s *HTTPSearcher) Search(ctx context.Context, q Query) ([]PropertyRef, error) {
	u, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	u.RawQuery = encodeQuery(u.Query(), q).Encode()

	var out []PropertyRef
	err = reliability.Do(ctx, s.attempts, 150*time.Millisecond, time.Second, func(ctx context.Context) error {
		refs, err := s.do(ctx, u.String())
		if err != nil {
			return err
		}
		out = refs
		return nil
	})
	if err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *HTTPSearcher) do(ctx context.Context, target string) ([]PropertyRef, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, reliability.Retryable(fmt.Errorf("send request: %w", err))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		err := fmt.Errorf("listing search status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
		if reliability.IsRetryableHTTPStatus(res.StatusCode) {
			return nil, reliability.Retryable(err)
		}
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return decodeResults(body)
}

func encodeQuery(v url.Values, q Query) url.Values {
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if q.PropertyType != "" {
		v.Set("type", q.PropertyType)
	}
	if q.Bedrooms > 0 {
		v.Set("bedrooms", strconv.Itoa(q.Bedrooms))
	}
	if q.MaxPrice > 0 {
		v.Set("max_price", strconv.FormatFloat(q.MaxPrice, 'f', 0, 64))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// decodeResults accepts a bare JSON array or an object wrapping it under
// "properties" or "data".
func decodeResults(body []byte) ([]PropertyRef, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var refs []PropertyRef
		if err := json.Unmarshal(body, &refs); err != nil {
			return nil, fmt.Errorf("decode results: %w", err)
		}
		return refs, nil
	}
	var wrapped struct {
		Properties []PropertyRef `json:"properties"`
		Data       []PropertyRef `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}
	if len(wrapped.Properties) > 0 {
		return wrapped.Properties, nil
	}
	return wrapped.Data, nil
}
