package messaging

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/messaging"
)

// =============================================================================
// Communication DTOs
// =============================================================================

// SendMessageRequest sends an email, SMS or WhatsApp message. The recipient
// defaults to the client's email or phone; a template replaces subject and
// body with the rendered text in the firm's language.
type SendMessageRequest struct {
	Channel   string         `json:"channel" binding:"required,oneof=email sms whatsapp"`
	Recipient string         `json:"recipient" binding:"max=200"`
	ClientID  *uuid.UUID     `json:"client_id"`
	CaseID    *uuid.UUID     `json:"case_id"`
	Subject   string         `json:"subject" binding:"max=300"`
	Body      string         `json:"body" binding:"max=10000"`
	Template  string         `json:"template" binding:"max=50"`
	Data      map[string]any `json:"data"`
}

// LogInboundRequest records a message received by phone, mail or in person
type LogInboundRequest struct {
	Channel    string     `json:"channel" binding:"required,oneof=email sms whatsapp"`
	Sender     string     `json:"sender" binding:"required,max=200"`
	Subject    string     `json:"subject" binding:"max=300"`
	Body       string     `json:"body" binding:"required,max=10000"`
	ReceivedAt *time.Time `json:"received_at"`
	ClientID   *uuid.UUID `json:"client_id"`
	CaseID     *uuid.UUID `json:"case_id"`
}

// CommunicationListFilter represents filter options for the communication log
type CommunicationListFilter struct {
	Search    string     `form:"search"`
	Channel   string     `form:"channel" binding:"omitempty,oneof=email sms whatsapp"`
	Direction string     `form:"direction" binding:"omitempty,oneof=outbound inbound"`
	Status    string     `form:"status" binding:"omitempty,oneof=pending sent failed received"`
	ClientID  string     `form:"client_id" binding:"omitempty,uuid"`
	CaseID    string     `form:"case_id" binding:"omitempty,uuid"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CommunicationResponse represents a communication in API responses
type CommunicationResponse struct {
	ID                uuid.UUID  `json:"id"`
	Channel           string     `json:"channel"`
	Direction         string     `json:"direction"`
	ClientID          *uuid.UUID `json:"client_id,omitempty"`
	CaseID            *uuid.UUID `json:"case_id,omitempty"`
	Recipient         string     `json:"recipient"`
	Subject           string     `json:"subject,omitempty"`
	Body              string     `json:"body"`
	Template          string     `json:"template,omitempty"`
	Status            string     `json:"status"`
	Provider          string     `json:"provider,omitempty"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	Error             string     `json:"error,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedBy         *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// ToCommunicationResponse converts a domain communication
func ToCommunicationResponse(c *messaging.Communication) CommunicationResponse {
	return CommunicationResponse{
		ID:                c.ID,
		Channel:           string(c.Channel),
		Direction:         string(c.Direction),
		ClientID:          c.ClientID,
		CaseID:            c.CaseID,
		Recipient:         c.Recipient,
		Subject:           c.Subject,
		Body:              c.Body,
		Template:          c.Template,
		Status:            string(c.Status),
		Provider:          c.Provider,
		ProviderMessageID: c.ProviderMessageID,
		Error:             c.Error,
		SentAt:            c.SentAt,
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
	}
}

// =============================================================================
// Notification DTOs
// =============================================================================

// NotifyInput describes an in-app notification. When a template exists for
// Type, Title and Message are rendered from Data.
type NotifyInput struct {
	FirmID    uuid.UUID
	ProfileID *uuid.UUID
	Type      messaging.NotificationType
	Title     string
	Message   string
	Link      string
	Priority  messaging.Priority
	Data      map[string]any
	// Email also sends the notification by email to the profile, or to the
	// firm's address for firm-wide notices
	Email bool
}

// NotificationListFilter represents filter options for the notification list
type NotificationListFilter struct {
	UnreadOnly bool   `form:"unread"`
	Type       string `form:"type"`
	Page       int    `form:"page" binding:"min=0"`
	PageSize   int    `form:"page_size" binding:"min=0,max=100"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	ProfileID *uuid.UUID `json:"profile_id,omitempty"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link,omitempty"`
	Priority  string     `json:"priority"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ToNotificationResponse converts a domain notification
func ToNotificationResponse(n *messaging.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		ProfileID: n.ProfileID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Priority:  string(n.Priority),
		Read:      n.IsRead(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// UnreadCountResponse carries the unread badge count
type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

// MarkAllReadResponse reports how many notifications were marked
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
