// Package messaging covers client communications, in-app notifications
// and the templates both are rendered from.
package messaging

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// Channel a message travels on
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// IsValid reports whether c is known
func (c Channel) IsValid() bool {
	return c == ChannelEmail || c == ChannelSMS || c == ChannelWhatsApp
}

// Direction of a communication
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// CommunicationStatus tracks delivery
type CommunicationStatus string

const (
	CommunicationPending CommunicationStatus = "pending"
	CommunicationSent    CommunicationStatus = "sent"
	CommunicationFailed  CommunicationStatus = "failed"
	// CommunicationReceived is used for inbound rows
	CommunicationReceived CommunicationStatus = "received"
)

// MaxSMSLength bounds a single outbound SMS body (10 concatenated segments)
const MaxSMSLength = 1530

var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// Communication is a logged message exchanged with a client
type Communication struct {
	shared.FirmAggregateRoot
	Channel           Channel
	Direction         Direction
	ClientID          *uuid.UUID
	CaseID            *uuid.UUID
	Recipient         string
	Subject           string
	Body              string
	Template          string
	Status            CommunicationStatus
	Provider          string
	ProviderMessageID string
	Error             string
	SentAt            *time.Time
}

// NewOutbound validates a message about to be sent
func NewOutbound(firmID uuid.UUID, channel Channel, recipient, subject, body string) (*Communication, error) {
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown communication channel")
	}
	recipient, err := normalizeRecipient(channel, recipient)
	if err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Message body cannot be empty")
	}
	if channel == ChannelEmail && strings.TrimSpace(subject) == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Email subject cannot be empty")
	}
	if channel == ChannelSMS && len([]rune(body)) > MaxSMSLength {
		return nil, shared.NewDomainError("INVALID_BODY", "SMS body is too long")
	}
	return &Communication{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Channel:           channel,
		Direction:         DirectionOutbound,
		Recipient:         recipient,
		Subject:           strings.TrimSpace(subject),
		Body:              body,
		Status:            CommunicationPending,
	}, nil
}

// NewInbound logs a message received outside the system
func NewInbound(firmID uuid.UUID, channel Channel, sender, subject, body string, receivedAt time.Time) (*Communication, error) {
	if !channel.IsValid() {
		return nil, shared.NewDomainError("INVALID_CHANNEL", "Unknown communication channel")
	}
	if strings.TrimSpace(body) == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Message body cannot be empty")
	}
	return &Communication{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Channel:           channel,
		Direction:         DirectionInbound,
		Recipient:         strings.TrimSpace(sender),
		Subject:           strings.TrimSpace(subject),
		Body:              strings.TrimSpace(body),
		Status:            CommunicationReceived,
		SentAt:            &receivedAt,
	}, nil
}

// Link attaches the communication to a client and/or case
func (c *Communication) Link(clientID, caseID *uuid.UUID) {
	c.ClientID = clientID
	c.CaseID = caseID
}

// MarkSent records a successful delivery
func (c *Communication) MarkSent(provider, messageID string, at time.Time) {
	c.Status = CommunicationSent
	c.Provider = provider
	c.ProviderMessageID = messageID
	c.Error = ""
	c.SentAt = &at
	c.UpdatedAt = time.Now()
}

// MarkFailed records a delivery failure
func (c *Communication) MarkFailed(provider string, cause error) {
	c.Status = CommunicationFailed
	c.Provider = provider
	if cause != nil {
		c.Error = cause.Error()
	}
	c.UpdatedAt = time.Now()
}

func normalizeRecipient(channel Channel, recipient string) (string, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return "", shared.NewDomainError("INVALID_RECIPIENT", "Recipient cannot be empty")
	}
	if channel == ChannelEmail {
		addr, err := mail.ParseAddress(recipient)
		if err != nil {
			return "", shared.NewDomainError("INVALID_RECIPIENT", "Invalid email address")
		}
		return strings.ToLower(addr.Address), nil
	}
	compact := strings.NewReplacer(" ", "", "-", "", ".", "").Replace(recipient)
	if !phonePattern.MatchString(compact) {
		return "", shared.NewDomainError("INVALID_RECIPIENT", "Invalid phone number")
	}
	return compact, nil
}
