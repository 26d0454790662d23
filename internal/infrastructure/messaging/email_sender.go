package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	domain "github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

// ProviderSendGrid names the email provider on communication rows
const ProviderSendGrid = "sendgrid"

var ErrEmailMissingCredentials = errors.New("email: missing api key or from address")

// EmailSender sends mail through the SendGrid v3 mail/send API
type EmailSender struct {
	cfg        config.EmailConfig
	httpClient *http.Client
}

// NewEmailSender validates cfg and builds the sender
func NewEmailSender(cfg config.EmailConfig, httpClient *http.Client) (*EmailSender, error) {
	if cfg.APIKey == "" || cfg.FromEmail == "" {
		return nil, ErrEmailMissingCredentials
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &EmailSender{cfg: cfg, httpClient: defaultClient(httpClient)}, nil
}

// Channel returns the channel this sender serves
func (s *EmailSender) Channel() domain.Channel {
	return domain.ChannelEmail
}

type sendgridAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendgridMail struct {
	Personalizations []struct {
		To []sendgridAddress `json:"to"`
	} `json:"personalizations"`
	From    sendgridAddress `json:"from"`
	Subject string          `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// Send delivers msg as a plain-text email. The firm's name, when given,
// replaces the configured sender name.
func (s *EmailSender) Send(ctx context.Context, msg domain.OutboundMessage) (domain.DeliveryResult, error) {
	var mail sendgridMail
	mail.Personalizations = make([]struct {
		To []sendgridAddress `json:"to"`
	}, 1)
	mail.Personalizations[0].To = []sendgridAddress{{Email: msg.To}}
	mail.From = sendgridAddress{Email: s.cfg.FromEmail, Name: s.cfg.FromName}
	if msg.FromName != "" {
		mail.From.Name = msg.FromName
	}
	mail.Subject = msg.Subject
	if mail.Subject == "" {
		mail.Subject = mail.From.Name
	}
	mail.Content = make([]struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}, 1)
	mail.Content[0].Type = "text/plain"
	mail.Content[0].Value = msg.Body

	payload, err := json.Marshal(mail)
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("email: failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/mail/send", bytes.NewReader(payload))
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("email: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	_, header, err := send(s.httpClient, ProviderSendGrid, req)
	if err != nil {
		return domain.DeliveryResult{}, err
	}
	return domain.DeliveryResult{
		Provider:  ProviderSendGrid,
		MessageID: header.Get("X-Message-Id"),
	}, nil
}

var _ domain.Sender = (*EmailSender)(nil)
