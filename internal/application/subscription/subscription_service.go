// Package subscription exposes the subscription rules to the rest of the
// application: access evaluation with caching, plan quotas and features,
// plan changes and the periodic expiry sweep.
package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"go.uber.org/zap"
)

// AccessStateCache caches evaluated access states per firm
type AccessStateCache interface {
	Get(ctx context.Context, firmID uuid.UUID) (*subscription.AccessState, error)
	Set(ctx context.Context, firmID uuid.UUID, state subscription.AccessState, ttl time.Duration) error
	Invalidate(ctx context.Context, firmID uuid.UUID) error
}

// ServiceConfig holds the date rules and cache settings
type ServiceConfig struct {
	Policy       subscription.Policy
	ReminderDays []int
	Currency     string
	CacheTTL     time.Duration
}

// SubscriptionService evaluates and changes firm subscriptions
type SubscriptionService struct {
	firmRepo  firm.FirmRepository
	catalog   *subscription.Catalog
	usage     subscription.UsageCounter
	cache     AccessStateCache
	publisher shared.EventPublisher
	notifier  Notifier
	cfg       ServiceConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewSubscriptionService creates a SubscriptionService. cache, publisher
// and notifier may be nil.
func NewSubscriptionService(
	firmRepo firm.FirmRepository,
	catalog *subscription.Catalog,
	usage subscription.UsageCounter,
	cache AccessStateCache,
	cfg ServiceConfig,
	logger *zap.Logger,
) *SubscriptionService {
	if catalog == nil {
		catalog = subscription.DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.Currency == "" {
		cfg.Currency = firm.DefaultCurrency
	}
	if len(cfg.ReminderDays) == 0 {
		cfg.ReminderDays = []int{cfg.Policy.ReminderDays}
	}
	return &SubscriptionService{
		firmRepo: firmRepo,
		catalog:  catalog,
		usage:    usage,
		cache:    cache,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the publisher for firm events
func (s *SubscriptionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetNotifier sets the notifier used by the sweep
func (s *SubscriptionService) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// Catalog returns the plan table
func (s *SubscriptionService) Catalog() *subscription.Catalog {
	return s.catalog
}

// Policy returns the date rules in force
func (s *SubscriptionService) Policy() subscription.Policy {
	return s.cfg.Policy
}

// AccessState returns the access state of a firm, served from the cache
// when possible. Cache failures fall back to evaluating from the database.
func (s *SubscriptionService) AccessState(ctx context.Context, firmID uuid.UUID) (subscription.AccessState, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, firmID)
		if err != nil {
			s.logger.Warn("Access state cache read failed",
				zap.String("firm_id", firmID.String()),
				zap.Error(err))
		}
		if cached != nil {
			return *cached, nil
		}
	}

	f, err := s.firmRepo.FindByID(ctx, firmID)
	if err != nil {
		return subscription.AccessState{}, err
	}
	state := subscription.Evaluate(f, s.now(), s.cfg.Policy)

	if s.cache != nil {
		ttl := s.cacheTTL(state)
		if err := s.cache.Set(ctx, firmID, state, ttl); err != nil {
			s.logger.Warn("Access state cache write failed",
				zap.String("firm_id", firmID.String()),
				zap.Error(err))
		}
	}
	return state, nil
}

// cacheTTL never lets a cached state outlive the next boundary
func (s *SubscriptionService) cacheTTL(state subscription.AccessState) time.Duration {
	ttl := s.cfg.CacheTTL
	var boundary *time.Time
	switch {
	case state.InGracePeriod:
		boundary = state.GraceEndsAt
	case !state.IsExpired:
		boundary = state.ExpiresAt
	}
	if boundary != nil {
		if until := boundary.Sub(state.EvaluatedAt); until > 0 && until < ttl {
			ttl = until
		}
	}
	return ttl
}

// Invalidate drops the cached access state of a firm
func (s *SubscriptionService) Invalidate(ctx context.Context, firmID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, firmID); err != nil {
		s.logger.Warn("Access state cache invalidation failed",
			zap.String("firm_id", firmID.String()),
			zap.Error(err))
	}
}

// GetStatus returns the plan, access state and usage of a firm
func (s *SubscriptionService) GetStatus(ctx context.Context, firmID uuid.UUID) (*StatusResponse, error) {
	f, err := s.firmRepo.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	def, err := s.catalog.Get(f.Plan)
	if err != nil {
		return nil, err
	}

	state := subscription.Evaluate(f, s.now(), s.cfg.Policy)
	usage := make([]subscription.QuotaCheck, 0, len(subscription.AllResources()))
	for _, r := range subscription.AllResources() {
		used, err := s.usage.CountUsage(ctx, firmID, r)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s usage: %w", r, err)
		}
		usage = append(usage, subscription.Check(r, used, def.Limit(r)))
	}

	return &StatusResponse{
		FirmID:                f.ID,
		Plan:                  string(f.Plan),
		PlanName:              def.Name,
		Status:                string(f.Status),
		TrialEndsAt:           f.TrialEndsAt,
		SubscriptionStartedAt: f.SubscriptionStartedAt,
		SubscriptionExpiresAt: f.SubscriptionExpiresAt,
		SuspendedReason:       f.SuspendedReason,
		Access:                ToAccessStateResponse(state),
		Usage:                 usage,
		Features:              featureList(def),
	}, nil
}

// CheckQuota reports the usage of one resource against the firm's plan
func (s *SubscriptionService) CheckQuota(ctx context.Context, firmID uuid.UUID, resource subscription.Resource) (*subscription.QuotaCheck, error) {
	if !resource.IsValid() {
		return nil, shared.NewDomainError("INVALID_RESOURCE", "Unknown resource: "+string(resource))
	}
	def, err := s.planFor(ctx, firmID)
	if err != nil {
		return nil, err
	}
	used, err := s.usage.CountUsage(ctx, firmID, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s usage: %w", resource, err)
	}
	check := subscription.Check(resource, used, def.Limit(resource))
	return &check, nil
}

// RequireQuota fails with QUOTA_EXCEEDED unless n more units fit
func (s *SubscriptionService) RequireQuota(ctx context.Context, firmID uuid.UUID, resource subscription.Resource, n int64) error {
	def, err := s.planFor(ctx, firmID)
	if err != nil {
		return err
	}
	limit := def.Limit(resource)
	if limit < 0 {
		return nil
	}
	used, err := s.usage.CountUsage(ctx, firmID, resource)
	if err != nil {
		return fmt.Errorf("failed to count %s usage: %w", resource, err)
	}
	if n <= 0 {
		n = 1
	}
	if !subscription.CanAddN(used, n, limit) {
		return shared.NewDomainError(shared.ErrQuotaExceeded.Code,
			fmt.Sprintf("Plan limit reached for %s (%d/%d)", resource, used, limit))
	}
	return nil
}

// RequireFeature fails with FEATURE_NOT_AVAILABLE when the plan lacks f
func (s *SubscriptionService) RequireFeature(ctx context.Context, firmID uuid.UUID, f subscription.Feature) error {
	def, err := s.planFor(ctx, firmID)
	if err != nil {
		return err
	}
	if !def.HasFeature(f) {
		return shared.NewDomainError(shared.ErrFeatureNotAvailable.Code,
			fmt.Sprintf("The %s plan does not include %s", def.Name, f))
	}
	return nil
}

func (s *SubscriptionService) planFor(ctx context.Context, firmID uuid.UUID) (subscription.PlanDefinition, error) {
	state, err := s.AccessState(ctx, firmID)
	if err != nil {
		return subscription.PlanDefinition{}, err
	}
	return s.catalog.Get(state.Plan)
}

// ListPlans returns the plan table ordered by price
func (s *SubscriptionService) ListPlans() []PlanResponse {
	defs := s.catalog.All()
	out := make([]PlanResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, ToPlanResponse(d, s.cfg.Currency))
	}
	return out
}

// ChangePlan switches an active firm to another plan, keeping the paid
// period. A downgrade is refused while usage exceeds the target limits.
func (s *SubscriptionService) ChangePlan(ctx context.Context, firmID uuid.UUID, req ChangePlanRequest) (*StatusResponse, error) {
	f, err := s.firmRepo.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	if f.Status != firm.StatusActive {
		return nil, shared.NewDomainError("INVALID_STATE", "Only active subscriptions can change plan; pay for a plan instead")
	}
	target, err := s.catalog.Get(planOf(req.Plan))
	if err != nil {
		return nil, err
	}
	if !target.Purchasable() {
		return nil, shared.NewDomainError("INVALID_PLAN", "Plan cannot be selected")
	}

	for _, r := range subscription.AllResources() {
		limit := target.Limit(r)
		if limit < 0 {
			continue
		}
		used, err := s.usage.CountUsage(ctx, firmID, r)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s usage: %w", r, err)
		}
		if used > int64(limit) {
			return nil, shared.NewDomainError(shared.ErrQuotaExceeded.Code,
				fmt.Sprintf("Current %s usage (%d) exceeds the %s plan limit (%d)", r, used, target.Name, limit))
		}
	}

	if err := f.ChangePlan(target.Plan); err != nil {
		return nil, err
	}
	if err := s.save(ctx, f); err != nil {
		return nil, err
	}
	return s.GetStatus(ctx, firmID)
}

// Activate applies a paid period to a firm
func (s *SubscriptionService) Activate(ctx context.Context, firmID uuid.UUID, req ActivateRequest) (*ActivateResponse, error) {
	if !subscription.IsAllowedPeriod(req.Months) {
		return nil, shared.NewDomainError("INVALID_PERIOD",
			fmt.Sprintf("Billing period must be one of %v months", subscription.AllowedPeriods))
	}
	f, err := s.firmRepo.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	start, end, err := f.ActivateSubscription(planOf(req.Plan), req.Months, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, f); err != nil {
		return nil, err
	}
	s.logger.Info("Subscription activated",
		zap.String("firm_id", firmID.String()),
		zap.String("plan", req.Plan),
		zap.Int("months", req.Months),
		zap.Time("period_end", end))
	return &ActivateResponse{Plan: string(f.Plan), PeriodStart: start, PeriodEnd: end}, nil
}

// Suspend blocks a firm until reactivated
func (s *SubscriptionService) Suspend(ctx context.Context, firmID uuid.UUID, req SuspendRequest) error {
	f, err := s.firmRepo.FindByID(ctx, firmID)
	if err != nil {
		return err
	}
	if err := f.Suspend(req.Reason); err != nil {
		return err
	}
	return s.save(ctx, f)
}

// Reactivate lifts a suspension
func (s *SubscriptionService) Reactivate(ctx context.Context, firmID uuid.UUID) error {
	f, err := s.firmRepo.FindByID(ctx, firmID)
	if err != nil {
		return err
	}
	if err := f.Reactivate(s.now()); err != nil {
		return err
	}
	return s.save(ctx, f)
}

// Cancel ends a firm's subscription for good
func (s *SubscriptionService) Cancel(ctx context.Context, firmID uuid.UUID) error {
	f, err := s.firmRepo.FindByID(ctx, firmID)
	if err != nil {
		return err
	}
	if err := f.Cancel(); err != nil {
		return err
	}
	return s.save(ctx, f)
}

// save persists f, drops its cached state and publishes its events
func (s *SubscriptionService) save(ctx context.Context, f *firm.Firm) error {
	if err := s.firmRepo.Save(ctx, f); err != nil {
		return err
	}
	s.Invalidate(ctx, f.ID)
	s.publish(ctx, f)
	return nil
}

func (s *SubscriptionService) publish(ctx context.Context, f *firm.Firm) {
	events := f.GetDomainEvents()
	f.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish firm events",
			zap.String("firm_id", f.ID.String()),
			zap.Error(err))
	}
}

var _ subscription.Gate = (*SubscriptionService)(nil)
