// Package payment contains mobile-money gateway adapters.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

const defaultHTTPTimeout = 30 * time.Second

// maxResponseBytes caps how much of a gateway response is read
const maxResponseBytes = 1 << 20

// httpError carries a non-2xx gateway response
type httpError struct {
	provider domain.Provider
	status   int
	body     string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%s: HTTP %d: %s", e.provider, e.status, truncate(e.body, 200))
}

func (e *httpError) Unwrap() error {
	if e.status >= 500 || e.status == http.StatusTooManyRequests {
		return domain.ErrGatewayUnavailable
	}
	return domain.ErrGatewayRequestFailed
}

// do sends req and returns the body of a 2xx response
func do(client *http.Client, provider domain.Provider, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s: %v", domain.ErrGatewayUnavailable, provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s: failed to read response: %w", provider, err)
	}
	if resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &httpError{provider: provider, status: resp.StatusCode, body: string(body)}
	}
	return body, resp.StatusCode, nil
}

func newJSONRequest(ctx context.Context, method, url string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func decodeJSON(provider domain.Provider, body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrGatewayInvalidResponse, provider, err)
	}
	return nil
}

// accessToken is a cached OAuth-style bearer token
type accessToken struct {
	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

// get returns the cached token or calls fetch when it is about to expire
func (t *accessToken) get(ctx context.Context, now time.Time, fetch func(context.Context) (string, time.Duration, error)) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.value != "" && now.Before(t.expiresAt) {
		return t.value, nil
	}
	value, ttl, err := fetch(ctx)
	if err != nil {
		return "", err
	}
	// refresh a minute early so in-flight calls never carry an expired token
	margin := time.Minute
	if ttl <= 2*margin {
		margin = ttl / 2
	}
	t.value = value
	t.expiresAt = now.Add(ttl - margin)
	return value, nil
}

func (t *accessToken) reset() {
	t.mu.Lock()
	t.value = ""
	t.mu.Unlock()
}

// wholeAmount formats an amount for gateways that only accept integers.
// XAF has no minor unit.
func wholeAmount(d decimal.Decimal) string {
	return d.Ceil().StringFixed(0)
}

// truncate fits s into n runes, marking a cut with "..."
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= len(ellipsis) {
		return string(runes[:n])
	}
	return string(runes[:n-len(ellipsis)]) + ellipsis
}

const ellipsis = "..."
