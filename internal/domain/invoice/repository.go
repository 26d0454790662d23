package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceRepository persists invoices with their items
type InvoiceRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Invoice, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]Invoice, int64, error)
	// FindOverdueCandidates returns sent or partially paid invoices across
	// all firms due before the given time
	FindOverdueCandidates(ctx context.Context, dueBefore time.Time) ([]Invoice, error)
	CountCreatedSince(ctx context.Context, firmID uuid.UUID, since time.Time) (int64, error)
	CountByClient(ctx context.Context, firmID, clientID uuid.UUID) (int64, error)
	// OutstandingTotal sums total - amount_paid over outstanding invoices
	OutstandingTotal(ctx context.Context, firmID uuid.UUID) (decimal.Decimal, error)
	NextSequence(ctx context.Context, firmID uuid.UUID, year int) (int64, error)
	Save(ctx context.Context, inv *Invoice) error
	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, inv *Invoice) error
	DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error
}
