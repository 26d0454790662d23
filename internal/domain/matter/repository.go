package matter

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// CaseRepository persists cases
type CaseRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Case, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]Case, int64, error)
	// CountForFirm counts cases that are not archived
	CountForFirm(ctx context.Context, firmID uuid.UUID) (int64, error)
	CountByStatus(ctx context.Context, firmID uuid.UUID, statuses ...CaseStatus) (int64, error)
	CountByClient(ctx context.Context, firmID, clientID uuid.UUID) (int64, error)
	ExistsByReference(ctx context.Context, firmID uuid.UUID, reference string) (bool, error)
	// NextSequence returns the next reference number for the firm and year
	NextSequence(ctx context.Context, firmID uuid.UUID, year int) (int64, error)
	Save(ctx context.Context, c *Case) error
	DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error
}

// TimeEntryRepository persists time entries
type TimeEntryRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*TimeEntry, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]TimeEntry, int64, error)
	FindUnbilledByCase(ctx context.Context, firmID, caseID uuid.UUID) ([]TimeEntry, error)
	FindByInvoice(ctx context.Context, firmID, invoiceID uuid.UUID) ([]TimeEntry, error)
	Save(ctx context.Context, e *TimeEntry) error
	SaveBatch(ctx context.Context, entries []TimeEntry) error
	DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error
}
