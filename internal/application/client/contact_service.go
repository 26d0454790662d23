package client

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ContactService handles the firm's directory of professional contacts
type ContactService struct {
	contacts client.ContactRepository
	logger   *zap.Logger
}

// NewContactService creates a new ContactService
func NewContactService(contacts client.ContactRepository, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{contacts: contacts, logger: logger}
}

// Create adds a contact
func (s *ContactService) Create(ctx context.Context, firmID, actorID uuid.UUID, req ContactRequest) (*ContactResponse, error) {
	c, err := client.NewProfessionalContact(firmID, req.Name, client.ContactCategory(req.Category))
	if err != nil {
		return nil, err
	}
	if err := c.Update(c.Name, c.Category, req.Organization, req.Email, req.Phone, req.Address, req.Notes); err != nil {
		return nil, err
	}
	c.SetCreatedBy(actorID)
	if err := s.contacts.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToContactResponse(c)
	return &resp, nil
}

// GetByID retrieves a contact
func (s *ContactService) GetByID(ctx context.Context, firmID, contactID uuid.UUID) (*ContactResponse, error) {
	c, err := s.contacts.FindByIDForFirm(ctx, firmID, contactID)
	if err != nil {
		return nil, err
	}
	resp := ToContactResponse(c)
	return &resp, nil
}

// List retrieves a paginated list of contacts
func (s *ContactService) List(ctx context.Context, firmID uuid.UUID, filter ContactListFilter) ([]ContactResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}

	contacts, total, err := s.contacts.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ContactResponse, len(contacts))
	for i := range contacts {
		out[i] = ToContactResponse(&contacts[i])
	}
	return out, total, nil
}

// Update replaces a contact's fields; an empty category keeps the current one
func (s *ContactService) Update(ctx context.Context, firmID, contactID uuid.UUID, req ContactRequest) (*ContactResponse, error) {
	c, err := s.contacts.FindByIDForFirm(ctx, firmID, contactID)
	if err != nil {
		return nil, err
	}
	category := client.ContactCategory(req.Category)
	if category == "" {
		category = c.Category
	}
	if err := c.Update(req.Name, category, req.Organization, req.Email, req.Phone, req.Address, req.Notes); err != nil {
		return nil, err
	}
	if err := s.contacts.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToContactResponse(c)
	return &resp, nil
}

// Delete removes a contact
func (s *ContactService) Delete(ctx context.Context, firmID, contactID uuid.UUID) error {
	if _, err := s.contacts.FindByIDForFirm(ctx, firmID, contactID); err != nil {
		return err
	}
	return s.contacts.DeleteForFirm(ctx, firmID, contactID)
}
