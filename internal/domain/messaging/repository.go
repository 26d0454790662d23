package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// CommunicationRepository persists communications
type CommunicationRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Communication, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]Communication, int64, error)
	// CountOutboundSince counts sent or pending outbound messages on a channel
	CountOutboundSince(ctx context.Context, firmID uuid.UUID, channel Channel, since time.Time) (int64, error)
	Save(ctx context.Context, c *Communication) error
}

// NotificationRepository persists in-app notifications
type NotificationRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Notification, error)
	// FindForProfile returns firm-wide and profile-targeted notifications
	FindForProfile(ctx context.Context, firmID, profileID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]Notification, int64, error)
	CountUnread(ctx context.Context, firmID, profileID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, firmID, profileID uuid.UUID, at time.Time) (int64, error)
	// ExistsSince guards the sweeper against duplicate notices
	ExistsSince(ctx context.Context, firmID uuid.UUID, typ NotificationType, link string, since time.Time) (bool, error)
	Save(ctx context.Context, n *Notification) error
	DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error
}
