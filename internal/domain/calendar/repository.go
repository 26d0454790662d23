package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// EventRepository persists calendar events
type EventRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Event, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]Event, int64, error)
	// FindInRange returns events overlapping [from, to)
	FindInRange(ctx context.Context, firmID uuid.UUID, from, to time.Time) ([]Event, error)
	// FindPendingReminders returns scheduled events across all firms whose
	// reminder has not fired and that start before horizon
	FindPendingReminders(ctx context.Context, now, horizon time.Time) ([]Event, error)
	CountUpcoming(ctx context.Context, firmID uuid.UUID, from, to time.Time) (int64, error)
	Save(ctx context.Context, e *Event) error
	DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error
}
