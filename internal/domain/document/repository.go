package document

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// DocumentRepository persists document metadata
type DocumentRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Document, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]Document, int64, error)
	CountForFirm(ctx context.Context, firmID uuid.UUID) (int64, error)
	// TotalSizeForFirm returns the sum of sizes in bytes
	TotalSizeForFirm(ctx context.Context, firmID uuid.UUID) (int64, error)
	Save(ctx context.Context, d *Document) error
	DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error
}
