// Package matter handles cases and the time recorded against them.
package matter

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// maxReferenceAttempts bounds retries when a generated reference collides
// with one entered by hand
const maxReferenceAttempts = 5

// CaseService handles case business operations
type CaseService struct {
	cases     matter.CaseRepository
	clients   client.ClientRepository
	firms     firm.FirmRepository
	profiles  firm.ProfileRepository
	entries   matter.TimeEntryRepository
	gate      subscription.Gate
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewCaseService creates a new CaseService
func NewCaseService(
	cases matter.CaseRepository,
	clients client.ClientRepository,
	firms firm.FirmRepository,
	profiles firm.ProfileRepository,
	entries matter.TimeEntryRepository,
	gate subscription.Gate,
	logger *zap.Logger,
) *CaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaseService{
		cases:    cases,
		clients:  clients,
		firms:    firms,
		profiles: profiles,
		entries:  entries,
		gate:     gate,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *CaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Create opens a case for a client of the same firm
func (s *CaseService) Create(ctx context.Context, firmID, actorID uuid.UUID, req CreateCaseRequest) (*CaseResponse, error) {
	if err := s.gate.RequireQuota(ctx, firmID, subscription.ResourceCases, 1); err != nil {
		return nil, err
	}
	if err := s.ensureClient(ctx, firmID, req.ClientID); err != nil {
		return nil, err
	}
	if req.AssignedTo != nil {
		if err := s.ensureAssignee(ctx, firmID, *req.AssignedTo); err != nil {
			return nil, err
		}
	}
	reference, err := s.reference(ctx, firmID, req.Reference)
	if err != nil {
		return nil, err
	}

	c, err := matter.NewCase(firmID, req.ClientID, reference, req.Title, matter.CaseType(req.Type))
	if err != nil {
		return nil, err
	}
	if err := c.UpdateDetails(c.Title, req.Description, "", matter.Priority(req.Priority)); err != nil {
		return nil, err
	}
	c.SetCourt(req.Court, req.Judge, req.OpposingParty, req.OpposingCounsel)
	if req.AssignedTo != nil {
		c.Assign(req.AssignedTo)
	}
	c.OpenedAt = s.now()
	c.SetCreatedBy(actorID)

	if err := s.cases.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Case opened",
		zap.String("firm_id", firmID.String()),
		zap.String("case_id", c.ID.String()),
		zap.String("reference", c.Reference))

	resp := ToCaseResponse(c)
	return &resp, nil
}

// GetByID retrieves a case by ID
func (s *CaseService) GetByID(ctx context.Context, firmID, caseID uuid.UUID) (*CaseResponse, error) {
	c, err := s.cases.FindByIDForFirm(ctx, firmID, caseID)
	if err != nil {
		return nil, err
	}
	resp := ToCaseResponse(c)
	return &resp, nil
}

// List retrieves a paginated list of cases
func (s *CaseService) List(ctx context.Context, firmID uuid.UUID, filter CaseListFilter) ([]CaseResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "opened_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
		From:     filter.StartDate,
		To:       filter.EndDate,
	}
	if filter.ClientID != "" {
		domainFilter.Filters["client_id"] = filter.ClientID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Priority != "" {
		domainFilter.Filters["priority"] = filter.Priority
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.AssignedTo != "" {
		domainFilter.Filters["assigned_to"] = filter.AssignedTo
	}

	cases, total, err := s.cases.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]CaseResponse, len(cases))
	for i := range cases {
		out[i] = ToCaseResponse(&cases[i])
	}
	return out, total, nil
}

// Update replaces a case's descriptive fields
func (s *CaseService) Update(ctx context.Context, firmID, caseID uuid.UUID, req UpdateCaseRequest) (*CaseResponse, error) {
	c, err := s.cases.FindByIDForFirm(ctx, firmID, caseID)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateDetails(req.Title, req.Description, matter.CaseType(req.Type), matter.Priority(req.Priority)); err != nil {
		return nil, err
	}
	c.SetCourt(req.Court, req.Judge, req.OpposingParty, req.OpposingCounsel)
	if err := s.cases.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCaseResponse(c)
	return &resp, nil
}

// Assign sets or clears the responsible profile
func (s *CaseService) Assign(ctx context.Context, firmID, caseID uuid.UUID, req AssignCaseRequest) (*CaseResponse, error) {
	c, err := s.cases.FindByIDForFirm(ctx, firmID, caseID)
	if err != nil {
		return nil, err
	}
	if req.ProfileID != nil {
		if err := s.ensureAssignee(ctx, firmID, *req.ProfileID); err != nil {
			return nil, err
		}
	}
	c.Assign(req.ProfileID)
	if err := s.cases.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCaseResponse(c)
	return &resp, nil
}

// ChangeStatus moves a case to a new status and publishes CaseStatusChanged
func (s *CaseService) ChangeStatus(ctx context.Context, firmID, caseID uuid.UUID, req ChangeCaseStatusRequest) (*CaseResponse, error) {
	c, err := s.cases.FindByIDForFirm(ctx, firmID, caseID)
	if err != nil {
		return nil, err
	}
	from := c.Status
	if err := c.ChangeStatus(matter.CaseStatus(req.Status), s.now()); err != nil {
		return nil, err
	}
	if from == c.Status {
		resp := ToCaseResponse(c)
		return &resp, nil
	}
	if err := s.cases.Save(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Info("Case status changed",
		zap.String("case_id", c.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(c.Status)))
	s.publish(ctx, c)

	resp := ToCaseResponse(c)
	return &resp, nil
}

// Delete removes a case that has no billed time
func (s *CaseService) Delete(ctx context.Context, firmID, caseID uuid.UUID) error {
	if _, err := s.cases.FindByIDForFirm(ctx, firmID, caseID); err != nil {
		return err
	}
	_, billed, err := s.entries.FindAllForFirm(ctx, firmID, shared.Filter{
		Page:     1,
		PageSize: 1,
		Filters:  map[string]any{"case_id": caseID.String(), "billed": "true"},
	})
	if err != nil {
		return err
	}
	if billed > 0 {
		return shared.NewDomainError("CASE_HAS_BILLED_TIME", "Case has invoiced time entries; archive it instead")
	}
	return s.cases.DeleteForFirm(ctx, firmID, caseID)
}

// reference returns the requested reference when free, or the next
// generated one
func (s *CaseService) reference(ctx context.Context, firmID uuid.UUID, requested string) (string, error) {
	if requested != "" {
		exists, err := s.cases.ExistsByReference(ctx, firmID, requested)
		if err != nil {
			return "", err
		}
		if exists {
			return "", shared.NewDomainError("ALREADY_EXISTS", "Case reference is already used")
		}
		return requested, nil
	}

	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return "", err
	}
	year := s.now().Year()
	for range maxReferenceAttempts {
		seq, err := s.cases.NextSequence(ctx, firmID, year)
		if err != nil {
			return "", err
		}
		ref := matter.FormatReference(f.CaseReferencePrefix, year, seq)
		exists, err := s.cases.ExistsByReference(ctx, firmID, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
	}
	return "", shared.NewDomainError("REFERENCE_EXHAUSTED", "Could not generate a free case reference")
}

func (s *CaseService) ensureClient(ctx context.Context, firmID, clientID uuid.UUID) error {
	c, err := s.clients.FindByIDForFirm(ctx, firmID, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CLIENT", "Client does not exist")
		}
		return err
	}
	if c.Status == client.StatusArchived {
		return shared.NewDomainError("INVALID_CLIENT", "Client is archived")
	}
	return nil
}

func (s *CaseService) ensureAssignee(ctx context.Context, firmID, profileID uuid.UUID) error {
	p, err := s.profiles.FindByIDForFirm(ctx, firmID, profileID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_ASSIGNEE", "Assignee is not a member of this firm")
		}
		return err
	}
	if !p.Active {
		return shared.NewDomainError("INVALID_ASSIGNEE", "Assignee is deactivated")
	}
	return nil
}

func (s *CaseService) publish(ctx context.Context, c *matter.Case) {
	events := c.GetDomainEvents()
	c.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish case events", zap.Error(err))
	}
}
