// Package firm registers firms and manages their profiles and sessions.
package firm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// SessionRevoker invalidates every token issued to a profile before now
type SessionRevoker interface {
	InvalidateProfile(ctx context.Context, profileID string, ttl time.Duration) error
}

// FirmService handles firm sign-up, settings and members
type FirmService struct {
	firms      firm.FirmRepository
	profiles   firm.ProfileRepository
	hasher     *auth.PasswordHasher
	gate       subscription.Gate
	sessions   SessionRevoker
	sessionTTL time.Duration
	trialDays  int
	publisher  shared.EventPublisher
	logger     *zap.Logger
}

// FirmServiceConfig holds sign-up settings
type FirmServiceConfig struct {
	TrialDays int
	// SessionTTL is how long a profile invalidation marker is kept; it
	// should cover the refresh token lifetime
	SessionTTL time.Duration
}

// NewFirmService creates a FirmService
func NewFirmService(
	firms firm.FirmRepository,
	profiles firm.ProfileRepository,
	hasher *auth.PasswordHasher,
	gate subscription.Gate,
	cfg FirmServiceConfig,
	logger *zap.Logger,
) *FirmService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = auth.NewPasswordHasher(0)
	}
	if cfg.TrialDays <= 0 {
		cfg.TrialDays = 14
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	return &FirmService{
		firms:      firms,
		profiles:   profiles,
		hasher:     hasher,
		gate:       gate,
		sessionTTL: cfg.SessionTTL,
		trialDays:  cfg.TrialDays,
		logger:     logger,
	}
}

// SetEventPublisher sets the event publisher
func (s *FirmService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// SetSessionRevoker sets where deactivations and password changes revoke tokens
func (s *FirmService) SetSessionRevoker(sessions SessionRevoker) {
	s.sessions = sessions
}

// RegisterFirm creates a firm on a trial with its owner profile
func (s *FirmService) RegisterFirm(ctx context.Context, req RegisterFirmRequest) (*RegisterResponse, error) {
	exists, err := s.profiles.ExistsByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account already uses this email")
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, shared.NewDomainError("WEAK_PASSWORD", err.Error())
	}

	f, err := firm.NewTrialFirm(req.FirmName, req.Email, s.trialDays)
	if err != nil {
		return nil, err
	}
	if err := f.Update(f.Name, f.Email, req.Phone, "", req.City, "Cameroun", ""); err != nil {
		return nil, err
	}
	owner, err := firm.NewProfile(f.ID, req.FullName, req.Email, firm.RoleOwner, hash)
	if err != nil {
		return nil, err
	}
	owner.Phone = req.Phone

	if err := s.firms.Save(ctx, f); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, owner); err != nil {
		return nil, err
	}

	s.logger.Info("Firm registered",
		zap.String("firm_id", f.ID.String()),
		zap.String("profile_id", owner.ID.String()),
		zap.Timep("trial_ends_at", f.TrialEndsAt))
	s.publish(ctx, f)

	return &RegisterResponse{
		Firm:    ToFirmResponse(f),
		Profile: ToProfileResponse(owner),
	}, nil
}

// GetFirm returns the firm
func (s *FirmService) GetFirm(ctx context.Context, firmID uuid.UUID) (*FirmResponse, error) {
	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	resp := ToFirmResponse(f)
	return &resp, nil
}

// UpdateFirm replaces the firm's settings
func (s *FirmService) UpdateFirm(ctx context.Context, firmID uuid.UUID, req UpdateFirmRequest) (*FirmResponse, error) {
	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	if err := f.Update(req.Name, req.Email, req.Phone, req.Address, req.City, req.Country, req.BarNumber); err != nil {
		return nil, err
	}
	if err := f.SetPreferences(firm.Locale(req.Locale), req.Currency, req.CaseReferencePrefix); err != nil {
		return nil, err
	}
	if err := s.firms.Save(ctx, f); err != nil {
		return nil, err
	}
	resp := ToFirmResponse(f)
	return &resp, nil
}

// ListProfiles lists the firm's members
func (s *FirmService) ListProfiles(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]ProfileResponse, int64, error) {
	profiles, total, err := s.profiles.FindAllForFirm(ctx, firmID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToProfileResponses(profiles), total, nil
}

// GetProfile returns one member
func (s *FirmService) GetProfile(ctx context.Context, firmID, profileID uuid.UUID) (*ProfileResponse, error) {
	p, err := s.profiles.FindByIDForFirm(ctx, firmID, profileID)
	if err != nil {
		return nil, err
	}
	resp := ToProfileResponse(p)
	return &resp, nil
}

// AddProfile creates a member, within the plan's user limit
func (s *FirmService) AddProfile(ctx context.Context, firmID uuid.UUID, req CreateProfileRequest) (*ProfileResponse, error) {
	if err := s.gate.RequireQuota(ctx, firmID, subscription.ResourceUsers, 1); err != nil {
		return nil, err
	}
	exists, err := s.profiles.ExistsByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account already uses this email")
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, shared.NewDomainError("WEAK_PASSWORD", err.Error())
	}
	p, err := firm.NewProfile(firmID, req.FullName, req.Email, firm.Role(req.Role), hash)
	if err != nil {
		return nil, err
	}
	p.Phone = req.Phone
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("Profile added",
		zap.String("firm_id", firmID.String()),
		zap.String("profile_id", p.ID.String()),
		zap.String("role", req.Role))
	resp := ToProfileResponse(p)
	return &resp, nil
}

// UpdateProfile changes a member. The last owner keeps the owner role.
func (s *FirmService) UpdateProfile(ctx context.Context, firmID, profileID uuid.UUID, req UpdateProfileRequest) (*ProfileResponse, error) {
	p, err := s.profiles.FindByIDForFirm(ctx, firmID, profileID)
	if err != nil {
		return nil, err
	}
	role := firm.Role(req.Role)
	if p.Role == firm.RoleOwner && role != "" && role != firm.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, firmID, p.ID); err != nil {
			return nil, err
		}
	}
	if err := p.Update(req.FullName, req.Phone, role); err != nil {
		return nil, err
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		return nil, err
	}
	resp := ToProfileResponse(p)
	return &resp, nil
}

// DeactivateProfile disables a member and revokes their sessions
func (s *FirmService) DeactivateProfile(ctx context.Context, firmID, actorID, profileID uuid.UUID) error {
	if actorID == profileID {
		return shared.NewDomainError("INVALID_OPERATION", "You cannot deactivate your own profile")
	}
	p, err := s.profiles.FindByIDForFirm(ctx, firmID, profileID)
	if err != nil {
		return err
	}
	if p.Role == firm.RoleOwner {
		if err := s.ensureAnotherOwner(ctx, firmID, p.ID); err != nil {
			return err
		}
	}
	if err := p.Deactivate(); err != nil {
		return err
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		return err
	}
	s.revokeSessions(ctx, p.ID)
	s.logger.Info("Profile deactivated",
		zap.String("firm_id", firmID.String()),
		zap.String("profile_id", p.ID.String()))
	return nil
}

// ReactivateProfile re-enables a member, within the plan's user limit
func (s *FirmService) ReactivateProfile(ctx context.Context, firmID, profileID uuid.UUID) (*ProfileResponse, error) {
	p, err := s.profiles.FindByIDForFirm(ctx, firmID, profileID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		if err := s.gate.RequireQuota(ctx, firmID, subscription.ResourceUsers, 1); err != nil {
			return nil, err
		}
		p.Activate()
		if err := s.profiles.Save(ctx, p); err != nil {
			return nil, err
		}
	}
	resp := ToProfileResponse(p)
	return &resp, nil
}

// ChangePassword replaces the password after checking the current one
func (s *FirmService) ChangePassword(ctx context.Context, firmID, profileID uuid.UUID, req ChangePasswordRequest) error {
	p, err := s.profiles.FindByIDForFirm(ctx, firmID, profileID)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(p.PasswordHash, req.CurrentPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return shared.NewDomainError("WEAK_PASSWORD", err.Error())
	}
	if err := p.SetPasswordHash(hash); err != nil {
		return err
	}
	if err := s.profiles.Save(ctx, p); err != nil {
		return err
	}
	s.revokeSessions(ctx, p.ID)
	return nil
}

func (s *FirmService) ensureAnotherOwner(ctx context.Context, firmID, profileID uuid.UUID) error {
	owners, err := s.profiles.FindByRole(ctx, firmID, firm.RoleOwner)
	if err != nil {
		return err
	}
	for _, o := range owners {
		if o.ID != profileID && o.Active {
			return nil
		}
	}
	return shared.NewDomainError("LAST_OWNER", "The firm must keep at least one active owner")
}

func (s *FirmService) revokeSessions(ctx context.Context, profileID uuid.UUID) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.InvalidateProfile(ctx, profileID.String(), s.sessionTTL); err != nil {
		s.logger.Warn("Failed to revoke sessions",
			zap.String("profile_id", profileID.String()),
			zap.Error(err))
	}
}

func (s *FirmService) publish(ctx context.Context, f *firm.Firm) {
	events := f.GetDomainEvents()
	f.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish firm events", zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// isNotFound reports whether err is a missing-record error
func isNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}
