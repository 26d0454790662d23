package firm

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthService handles login, token rotation and logout
type AuthService struct {
	profiles  firm.ProfileRepository
	firms     firm.FirmRepository
	jwt       *auth.JWTService
	hasher    *auth.PasswordHasher
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates an AuthService
func NewAuthService(
	profiles firm.ProfileRepository,
	firms firm.FirmRepository,
	jwtService *auth.JWTService,
	hasher *auth.PasswordHasher,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hasher == nil {
		hasher = auth.NewPasswordHasher(0)
	}
	return &AuthService{
		profiles:  profiles,
		firms:     firms,
		jwt:       jwtService,
		hasher:    hasher,
		blacklist: blacklist,
		logger:    logger,
		now:       time.Now,
	}
}

// Login verifies credentials and issues a token pair. Firms whose
// subscription lapsed can still log in so they can pay.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	p, err := s.profiles.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if isNotFound(err) {
			s.logger.Warn("Login for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(p.PasswordHash, req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("profile_id", p.ID.String()))
		return nil, errInvalidCredentials
	}
	if !p.Active {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	f, err := s.firms.FindByID(ctx, p.FirmID)
	if err != nil {
		return nil, err
	}
	if f.Status == firm.StatusCancelled {
		return nil, shared.NewDomainError("FIRM_CANCELLED", "This firm account has been closed")
	}

	pair, err := s.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		FirmID:    p.FirmID,
		ProfileID: p.ID,
		Email:     p.Email,
		Role:      string(p.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	p.RecordLogin(s.now())
	if err := s.profiles.Save(ctx, p); err != nil {
		s.logger.Error("Failed to record login", zap.Error(err))
	}

	s.logger.Info("Profile logged in",
		zap.String("firm_id", p.FirmID.String()),
		zap.String("profile_id", p.ID.String()))

	return &LoginResponse{
		TokenResponse: toTokenResponse(pair),
		Profile:       ToProfileResponse(p),
		Firm:          ToFirmResponse(f),
	}, nil
}

// Refresh rotates a refresh token. The old token is revoked and the new
// pair carries the profile's current role.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if !revoked {
			revoked, err = s.blacklist.IsProfileInvalidated(ctx, claims.ProfileID, claims.GetIssuedAtTime())
			if err != nil {
				return nil, err
			}
		}
		if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Refresh token has been revoked")
		}
	}

	profileID, err := claims.GetProfileUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	p, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
		return nil, err
	}
	if !p.Active {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	pair, err := s.jwt.RefreshTokenPair(req.RefreshToken, p.Email, string(p.Role))
	if err != nil {
		return nil, tokenError(err)
	}
	if s.blacklist != nil {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			s.logger.Warn("Failed to revoke rotated refresh token", zap.Error(err))
		}
	}
	resp := toTokenResponse(pair)
	return &resp, nil
}

// Logout revokes the access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims, req LogoutRequest) error {
	if s.blacklist == nil {
		return nil
	}
	if claims != nil && claims.ID != "" {
		if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
			return err
		}
	}
	if req.RefreshToken != "" {
		refresh, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
		if err == nil && (claims == nil || refresh.ProfileID == claims.ProfileID) {
			if err := s.blacklist.AddToBlacklist(ctx, refresh.ID, refresh.GetRemainingTTL()); err != nil {
				return err
			}
		}
	}
	if claims != nil {
		s.logger.Info("Profile logged out", zap.String("profile_id", claims.ProfileID))
	}
	return nil
}

// Me returns the authenticated profile and its firm
func (s *AuthService) Me(ctx context.Context, firmID, profileID uuid.UUID) (*MeResponse, error) {
	p, err := s.profiles.FindByIDForFirm(ctx, firmID, profileID)
	if err != nil {
		return nil, err
	}
	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	return &MeResponse{
		Profile: ToProfileResponse(p),
		Firm:    ToFirmResponse(f),
	}, nil
}

func toTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
