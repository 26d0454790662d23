package messaging

import (
	"bytes"
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

// ProviderWhatsApp names the WhatsApp Cloud API on communication rows
const ProviderWhatsApp = "whatsapp_cloud"

var ErrWhatsAppMissingCredentials = errors.New("whatsapp: missing phone number id or access token")

// WhatsAppSender sends text messages through the WhatsApp Cloud API
type WhatsAppSender struct {
	cfg        config.WhatsAppConfig
	httpClient *http.Client
}

// NewWhatsAppSender validates cfg and builds the sender
func NewWhatsAppSender(cfg config.WhatsAppConfig, httpClient *http.Client) (*WhatsAppSender, error) {
	if cfg.PhoneNumberID == "" || cfg.AccessToken == "" {
		return nil, ErrWhatsAppMissingCredentials
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &WhatsAppSender{cfg: cfg, httpClient: defaultClient(httpClient)}, nil
}

// Channel returns the channel this sender serves
func (s *WhatsAppSender) Channel() domain.Channel {
	return domain.ChannelWhatsApp
}

type whatsappText struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body       string `json:"body"`
		PreviewURL bool   `json:"preview_url"`
	} `json:"text"`
}

// Send delivers a text message. A subject is rendered as a bold first line.
func (s *WhatsAppSender) Send(ctx context.Context, msg domain.OutboundMessage) (domain.DeliveryResult, error) {
	payload := whatsappText{
		MessagingProduct: "whatsapp",
		To:               strings.TrimPrefix(e164(msg.To), "+"),
		Type:             "text",
	}
	payload.Text.Body = msg.Body
	if msg.Subject != "" {
		payload.Text.Body = "*" + msg.Subject + "*\n" + msg.Body
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("whatsapp: failed to marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/%s/messages", s.cfg.BaseURL, url.PathEscape(s.cfg.PhoneNumberID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("whatsapp: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	body, _, err := send(s.httpClient, ProviderWhatsApp, req)
	if err != nil {
		return domain.DeliveryResult{}, err
	}
	var res struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(body, &res); err != nil || len(res.Messages) == 0 {
		return domain.DeliveryResult{}, fmt.Errorf("%w: %s: response has no message id", domain.ErrDeliveryFailed, ProviderWhatsApp)
	}
	return domain.DeliveryResult{Provider: ProviderWhatsApp, MessageID: res.Messages[0].ID}, nil
}

var _ domain.Sender = (*WhatsAppSender)(nil)
