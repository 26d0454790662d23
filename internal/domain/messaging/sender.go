package messaging

import (
	"context"
	"errors"
)

var (
	// ErrDeliveryFailed wraps provider rejections and transport failures
	ErrDeliveryFailed = errors.New("message delivery failed")
	// ErrChannelNotConfigured is returned when no sender serves a channel
	ErrChannelNotConfigured = errors.New("messaging channel not configured")
)

// OutboundMessage is what a Sender delivers
type OutboundMessage struct {
	Channel  Channel
	To       string
	Subject  string
	Body     string
	FromName string
}

// DeliveryResult identifies the provider-side message
type DeliveryResult struct {
	Provider  string
	MessageID string
}

// Sender delivers messages on one channel
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, msg OutboundMessage) (DeliveryResult, error)
}
