package messaging

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	domain "github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

// Dispatcher routes a message to the sender registered for its channel
type Dispatcher struct {
	senders map[domain.Channel]domain.Sender
	logger  *zap.Logger
}

// NewDispatcher registers senders by channel; a later sender for the same
// channel replaces an earlier one
func NewDispatcher(logger *zap.Logger, senders ...domain.Sender) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{senders: make(map[domain.Channel]domain.Sender, len(senders)), logger: logger}
	for _, s := range senders {
		if s != nil {
			d.senders[s.Channel()] = s
		}
	}
	return d
}

// NewDispatcherFromConfig builds a sender for every enabled channel
func NewDispatcherFromConfig(cfg config.MessagingConfig, httpClient *http.Client, logger *zap.Logger) (*Dispatcher, error) {
	var senders []domain.Sender
	if cfg.Email.Enabled {
		s, err := NewEmailSender(cfg.Email, httpClient)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	if cfg.SMS.Enabled {
		s, err := NewSMSSender(cfg.SMS, httpClient)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	if cfg.WhatsApp.Enabled {
		s, err := NewWhatsAppSender(cfg.WhatsApp, httpClient)
		if err != nil {
			return nil, err
		}
		senders = append(senders, s)
	}
	d := NewDispatcher(logger, senders...)
	if len(senders) == 0 {
		d.logger.Warn("No messaging channel enabled; outbound messages will be marked failed")
	}
	return d, nil
}

// Has reports whether a sender serves channel
func (d *Dispatcher) Has(channel domain.Channel) bool {
	_, ok := d.senders[channel]
	return ok
}

// Channel is never called on a dispatcher; it satisfies domain.Sender
func (d *Dispatcher) Channel() domain.Channel {
	return ""
}

// Send delivers msg on its channel
func (d *Dispatcher) Send(ctx context.Context, msg domain.OutboundMessage) (domain.DeliveryResult, error) {
	s, ok := d.senders[msg.Channel]
	if !ok {
		return domain.DeliveryResult{}, fmt.Errorf("%w: %s", domain.ErrChannelNotConfigured, msg.Channel)
	}
	res, err := s.Send(ctx, msg)
	if err != nil {
		d.logger.Warn("Message delivery failed",
			zap.String("channel", string(msg.Channel)),
			zap.Error(err),
		)
		return domain.DeliveryResult{}, err
	}
	d.logger.Debug("Message delivered",
		zap.String("channel", string(msg.Channel)),
		zap.String("provider", res.Provider),
		zap.String("message_id", res.MessageID),
	)
	return res, nil
}

var _ domain.Sender = (*Dispatcher)(nil)
