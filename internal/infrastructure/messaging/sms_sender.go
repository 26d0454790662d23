package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	domain "github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

// ProviderTwilio names the SMS provider on communication rows
const ProviderTwilio = "twilio"

var ErrSMSMissingCredentials = errors.New("sms: missing account sid, auth token or sender")

// SMSSender sends text messages through the Twilio Messages API
type SMSSender struct {
	cfg        config.SMSConfig
	httpClient *http.Client
}

// NewSMSSender validates cfg and builds the sender
func NewSMSSender(cfg config.SMSConfig, httpClient *http.Client) (*SMSSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return nil, ErrSMSMissingCredentials
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &SMSSender{cfg: cfg, httpClient: defaultClient(httpClient)}, nil
}

// Channel returns the channel this sender serves
func (s *SMSSender) Channel() domain.Channel {
	return domain.ChannelSMS
}

// Send delivers msg.Body; the subject is not part of an SMS
func (s *SMSSender) Send(ctx context.Context, msg domain.OutboundMessage) (domain.DeliveryResult, error) {
	form := url.Values{
		"To":   {e164(msg.To)},
		"From": {s.cfg.From},
		"Body": {msg.Body},
	}
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", s.cfg.BaseURL, url.PathEscape(s.cfg.AccountSID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("sms: failed to create request: %w", err)
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, _, err := send(s.httpClient, ProviderTwilio, req)
	if err != nil {
		return domain.DeliveryResult{}, err
	}
	var res struct {
		SID       string `json:"sid"`
		Status    string `json:"status"`
		ErrorCode *int   `json:"error_code"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("%w: %s: invalid response: %v", domain.ErrDeliveryFailed, ProviderTwilio, err)
	}
	if res.Status == "failed" || res.Status == "undelivered" {
		return domain.DeliveryResult{}, fmt.Errorf("%w: %s: message %s", domain.ErrDeliveryFailed, ProviderTwilio, res.Status)
	}
	return domain.DeliveryResult{Provider: ProviderTwilio, MessageID: res.SID}, nil
}

var _ domain.Sender = (*SMSSender)(nil)
