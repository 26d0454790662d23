package firm

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// FirmRepository persists firms
type FirmRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Firm, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Firm, int64, error)
	// FindByStatuses returns every firm whose status is one of statuses
	FindByStatuses(ctx context.Context, statuses ...SubscriptionStatus) ([]Firm, error)
	Save(ctx context.Context, f *Firm) error
	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, f *Firm) error
}

// ProfileRepository persists profiles
type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Profile, error)
	// FindByEmail looks across all firms; emails are globally unique
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]Profile, int64, error)
	FindByRole(ctx context.Context, firmID uuid.UUID, role Role) ([]Profile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountActiveForFirm(ctx context.Context, firmID uuid.UUID) (int64, error)
	Save(ctx context.Context, p *Profile) error
}
