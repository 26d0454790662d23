// Package messaging delivers outbound email, SMS and WhatsApp messages
// through HTTP provider APIs.
package messaging

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/lexdesk/backend/internal/domain/messaging"
)

const defaultHTTPTimeout = 15 * time.Second

func defaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// send performs req and wraps any failure in ErrDeliveryFailed
func send(client *http.Client, provider string, req *http.Request) ([]byte, http.Header, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", domain.ErrDeliveryFailed, provider, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: failed to read response: %v", domain.ErrDeliveryFailed, provider, err)
	}
	if resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 200 {
			msg = msg[:200] + "..."
		}
		return nil, nil, fmt.Errorf("%w: %s: HTTP %d: %s", domain.ErrDeliveryFailed, provider, resp.StatusCode, msg)
	}
	return body, resp.Header, nil
}

// e164 adds the leading + that phone APIs require
func e164(phone string) string {
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + strings.TrimPrefix(phone, "00")
}
