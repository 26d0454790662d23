package matter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TimeEntryService records billable work on cases. Every operation needs
// the time_tracking feature.
type TimeEntryService struct {
	entries matter.TimeEntryRepository
	cases   matter.CaseRepository
	gate    subscription.Gate
	logger  *zap.Logger
	now     func() time.Time
}

// NewTimeEntryService creates a new TimeEntryService
func NewTimeEntryService(
	entries matter.TimeEntryRepository,
	cases matter.CaseRepository,
	gate subscription.Gate,
	logger *zap.Logger,
) *TimeEntryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeEntryService{
		entries: entries,
		cases:   cases,
		gate:    gate,
		logger:  logger,
		now:     time.Now,
	}
}

// Create records work by profileID on an active case
func (s *TimeEntryService) Create(ctx context.Context, firmID, profileID, caseID uuid.UUID, req TimeEntryRequest) (*TimeEntryResponse, error) {
	if err := s.gate.RequireFeature(ctx, firmID, subscription.FeatureTimeTracking); err != nil {
		return nil, err
	}
	c, err := s.cases.FindByIDForFirm(ctx, firmID, caseID)
	if err != nil {
		return nil, err
	}
	if !c.AcceptsTimeEntries() {
		return nil, shared.NewDomainError("CASE_CLOSED", "Time cannot be recorded on a closed case")
	}
	if err := s.checkWorkDate(req.WorkDate); err != nil {
		return nil, err
	}

	e, err := matter.NewTimeEntry(firmID, caseID, profileID, req.Description, req.WorkDate, req.Minutes, rate(req.HourlyRate), billable(req.Billable))
	if err != nil {
		return nil, err
	}
	e.SetCreatedBy(profileID)
	if err := s.entries.Save(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Debug("Time recorded",
		zap.String("case_id", caseID.String()),
		zap.Int("minutes", e.Minutes))

	resp := ToTimeEntryResponse(e)
	return &resp, nil
}

// GetByID retrieves a time entry
func (s *TimeEntryService) GetByID(ctx context.Context, firmID, entryID uuid.UUID) (*TimeEntryResponse, error) {
	e, err := s.entries.FindByIDForFirm(ctx, firmID, entryID)
	if err != nil {
		return nil, err
	}
	resp := ToTimeEntryResponse(e)
	return &resp, nil
}

// List retrieves a paginated list of time entries
func (s *TimeEntryService) List(ctx context.Context, firmID uuid.UUID, filter TimeEntryListFilter) ([]TimeEntryResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "work_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]any),
		From:     filter.StartDate,
		To:       filter.EndDate,
	}
	if filter.CaseID != "" {
		domainFilter.Filters["case_id"] = filter.CaseID
	}
	if filter.ProfileID != "" {
		domainFilter.Filters["profile_id"] = filter.ProfileID
	}
	if filter.Billed != "" {
		domainFilter.Filters["billed"] = filter.Billed
	}

	entries, total, err := s.entries.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]TimeEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToTimeEntryResponse(&entries[i])
	}
	return out, total, nil
}

// Update replaces an unbilled entry
func (s *TimeEntryService) Update(ctx context.Context, firmID, entryID uuid.UUID, req TimeEntryRequest) (*TimeEntryResponse, error) {
	if err := s.gate.RequireFeature(ctx, firmID, subscription.FeatureTimeTracking); err != nil {
		return nil, err
	}
	e, err := s.entries.FindByIDForFirm(ctx, firmID, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.checkWorkDate(req.WorkDate); err != nil {
		return nil, err
	}
	hourly := e.HourlyRate
	if req.HourlyRate != nil {
		hourly = *req.HourlyRate
	}
	isBillable := e.Billable
	if req.Billable != nil {
		isBillable = *req.Billable
	}
	if err := e.Update(req.Description, req.WorkDate, req.Minutes, hourly, isBillable); err != nil {
		return nil, err
	}
	if err := s.entries.Save(ctx, e); err != nil {
		return nil, err
	}
	resp := ToTimeEntryResponse(e)
	return &resp, nil
}

// Delete removes an unbilled entry
func (s *TimeEntryService) Delete(ctx context.Context, firmID, entryID uuid.UUID) error {
	e, err := s.entries.FindByIDForFirm(ctx, firmID, entryID)
	if err != nil {
		return err
	}
	if e.IsBilled() {
		return shared.NewDomainError("TIME_ENTRY_BILLED", "Billed time entries cannot be deleted")
	}
	return s.entries.DeleteForFirm(ctx, firmID, entryID)
}

// UnbilledSummary totals the billable work not yet invoiced on a case
func (s *TimeEntryService) UnbilledSummary(ctx context.Context, firmID, caseID uuid.UUID) (*TimeSummary, error) {
	if _, err := s.cases.FindByIDForFirm(ctx, firmID, caseID); err != nil {
		return nil, err
	}
	entries, err := s.entries.FindUnbilledByCase(ctx, firmID, caseID)
	if err != nil {
		return nil, err
	}
	summary := &TimeSummary{Amount: decimal.Zero}
	for i := range entries {
		summary.Minutes += entries[i].Minutes
		if entries[i].Billable {
			summary.BillableMinutes += entries[i].Minutes
			summary.Amount = summary.Amount.Add(entries[i].Amount())
		}
	}
	return summary, nil
}

func (s *TimeEntryService) checkWorkDate(d time.Time) error {
	if d.After(s.now().Add(24 * time.Hour)) {
		return shared.NewDomainError("INVALID_WORK_DATE", "Work date cannot be in the future")
	}
	return nil
}

func rate(r *decimal.Decimal) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	return *r
}

func billable(b *bool) bool {
	return b == nil || *b
}
