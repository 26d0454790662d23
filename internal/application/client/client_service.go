// Package client manages a firm's clients and professional contacts.
package client

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// ClientService handles client business operations
type ClientService struct {
	clients client.ClientRepository
	cases   matter.CaseRepository
	gate    subscription.Gate
	logger  *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clients client.ClientRepository,
	cases matter.CaseRepository,
	gate subscription.Gate,
	logger *zap.Logger,
) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{
		clients: clients,
		cases:   cases,
		gate:    gate,
		logger:  logger,
	}
}

// Create creates a client within the plan's client limit
func (s *ClientService) Create(ctx context.Context, firmID, actorID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	if err := s.gate.RequireQuota(ctx, firmID, subscription.ResourceClients, 1); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, firmID, req.Email, ""); err != nil {
		return nil, err
	}

	c, err := client.NewClient(firmID, client.Kind(req.Kind), req.Name)
	if err != nil {
		return nil, err
	}
	if err := c.SetContact(req.Email, req.Phone, req.Address, req.City); err != nil {
		return nil, err
	}
	c.SetIdentity(req.IDNumber, req.RegistrationNumber, req.Profession)
	c.Notes = req.Notes
	c.SetCreatedBy(actorID)

	if err := s.clients.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Client created",
		zap.String("firm_id", firmID.String()),
		zap.String("client_id", c.ID.String()))

	resp := ToClientResponse(c)
	return &resp, nil
}

// GetByID retrieves a client by ID
func (s *ClientService) GetByID(ctx context.Context, firmID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clients.FindByIDForFirm(ctx, firmID, clientID)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// List retrieves a paginated list of clients
func (s *ClientService) List(ctx context.Context, firmID uuid.UUID, filter ClientListFilter) ([]ClientResponse, int64, error) {
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
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Kind != "" {
		domainFilter.Filters["kind"] = filter.Kind
	}
	if filter.City != "" {
		domainFilter.Filters["city"] = filter.City
	}

	clients, total, err := s.clients.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToClientResponses(clients), total, nil
}

// Update replaces a client's editable fields
func (s *ClientService) Update(ctx context.Context, firmID, clientID uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	c, err := s.clients.FindByIDForFirm(ctx, firmID, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, firmID, req.Email, c.Email); err != nil {
		return nil, err
	}
	if err := c.Update(client.Kind(req.Kind), req.Name, req.Notes); err != nil {
		return nil, err
	}
	if err := c.SetContact(req.Email, req.Phone, req.Address, req.City); err != nil {
		return nil, err
	}
	c.SetIdentity(req.IDNumber, req.RegistrationNumber, req.Profession)

	if err := s.clients.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Archive hides a client; archived clients no longer count toward the quota
func (s *ClientService) Archive(ctx context.Context, firmID, clientID uuid.UUID) (*ClientResponse, error) {
	c, err := s.clients.FindByIDForFirm(ctx, firmID, clientID)
	if err != nil {
		return nil, err
	}
	if err := c.Archive(); err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Client archived",
		zap.String("firm_id", firmID.String()),
		zap.String("client_id", c.ID.String()))
	resp := ToClientResponse(c)
	return &resp, nil
}

// SetStatus changes the status. Restoring an archived client counts
// against the plan's client limit again.
func (s *ClientService) SetStatus(ctx context.Context, firmID, clientID uuid.UUID, req UpdateClientStatusRequest) (*ClientResponse, error) {
	c, err := s.clients.FindByIDForFirm(ctx, firmID, clientID)
	if err != nil {
		return nil, err
	}
	status := client.Status(req.Status)
	if c.Status == client.StatusArchived && status != client.StatusArchived {
		if err := s.gate.RequireQuota(ctx, firmID, subscription.ResourceClients, 1); err != nil {
			return nil, err
		}
	}
	if err := c.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.clients.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToClientResponse(c)
	return &resp, nil
}

// Delete removes a client that has no cases
func (s *ClientService) Delete(ctx context.Context, firmID, clientID uuid.UUID) error {
	if _, err := s.clients.FindByIDForFirm(ctx, firmID, clientID); err != nil {
		return err
	}
	count, err := s.cases.CountByClient(ctx, firmID, clientID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("CLIENT_HAS_CASES", "Client has cases; archive it instead")
	}
	if err := s.clients.DeleteForFirm(ctx, firmID, clientID); err != nil {
		return err
	}
	s.logger.Info("Client deleted",
		zap.String("firm_id", firmID.String()),
		zap.String("client_id", clientID.String()))
	return nil
}

// ensureEmailFree refuses an email already used by another client of the firm
func (s *ClientService) ensureEmailFree(ctx context.Context, firmID uuid.UUID, email, current string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || email == current {
		return nil
	}
	exists, err := s.clients.ExistsByEmail(ctx, firmID, email)
	if err != nil {
		return err
	}
	if exists {
		return shared.NewDomainError("ALREADY_EXISTS", "Another client already uses this email")
	}
	return nil
}
