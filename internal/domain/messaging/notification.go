package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// NotificationType identifies what happened and which template renders it
type NotificationType string

const (
	TypeSubscriptionExpiring NotificationType = "subscription_expiring"
	TypeSubscriptionGrace    NotificationType = "subscription_grace"
	TypeSubscriptionExpired  NotificationType = "subscription_expired"
	TypePaymentSucceeded     NotificationType = "payment_succeeded"
	TypePaymentFailed        NotificationType = "payment_failed"
	TypeEventReminder        NotificationType = "event_reminder"
	TypeInvoiceSent          NotificationType = "invoice_sent"
	TypeInvoiceOverdue       NotificationType = "invoice_overdue"
	TypeCaseStatusChanged    NotificationType = "case_status_changed"
	TypeGeneral              NotificationType = "general"
)

// Priority of a notification
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is an in-app message for one profile or the whole firm
type Notification struct {
	shared.BaseEntity
	FirmID    uuid.UUID
	ProfileID *uuid.UUID
	Type      NotificationType
	Title     string
	Message   string
	Link      string
	Priority  Priority
	ReadAt    *time.Time
}

// NewNotification builds an unread notification
func NewNotification(firmID uuid.UUID, profileID *uuid.UUID, typ NotificationType, title, message string) (*Notification, error) {
	if firmID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FIRM", "Notification must belong to a firm")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}
	if typ == "" {
		typ = TypeGeneral
	}
	return &Notification{
		BaseEntity: shared.NewBaseEntity(),
		FirmID:     firmID,
		ProfileID:  profileID,
		Type:       typ,
		Title:      title,
		Message:    strings.TrimSpace(message),
		Priority:   PriorityNormal,
	}, nil
}

// WithPriority sets the priority, ignoring unknown values
func (n *Notification) WithPriority(p Priority) *Notification {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		n.Priority = p
	}
	return n
}

// IsRead reports whether the notification was read
func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}

// VisibleTo reports whether profileID may see the notification
func (n *Notification) VisibleTo(profileID uuid.UUID) bool {
	return n.ProfileID == nil || *n.ProfileID == profileID
}

// MarkRead is idempotent
func (n *Notification) MarkRead(at time.Time) {
	if n.ReadAt == nil {
		n.ReadAt = &at
		n.UpdatedAt = at
	}
}
