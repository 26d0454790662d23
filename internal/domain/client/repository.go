package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// ClientRepository persists clients
type ClientRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Client, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]Client, int64, error)
	// CountForFirm counts clients that are not archived
	CountForFirm(ctx context.Context, firmID uuid.UUID) (int64, error)
	ExistsByEmail(ctx context.Context, firmID uuid.UUID, email string) (bool, error)
	Save(ctx context.Context, c *Client) error
	DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error
}

// ContactRepository persists professional contacts
type ContactRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*ProfessionalContact, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]ProfessionalContact, int64, error)
	Save(ctx context.Context, c *ProfessionalContact) error
	DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error
}
