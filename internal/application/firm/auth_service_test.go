package firm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	svc       *AuthService
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	profiles  *MockProfileRepository
	firms     *MockFirmRepository
	firm      *firm.Firm
	profile   *firm.Profile
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f, err := firm.NewTrialFirm("Cabinet Ngo", "contact@ngo.cm", 14)
	require.NoError(t, err)
	fx := &authFixture{
		jwt:       testJWT(),
		blacklist: auth.NewInMemoryTokenBlacklist(),
		profiles:  new(MockProfileRepository),
		firms:     new(MockFirmRepository),
		firm:      f,
		profile:   newProfile(t, f.ID, "avocat@ngo.cm", firm.RoleLawyer),
	}
	fx.svc = NewAuthService(fx.profiles, fx.firms, fx.jwt, testHasher(), fx.blacklist, nil)
	fx.firms.On("FindByID", mock.Anything, f.ID).Return(f, nil).Maybe()
	fx.profiles.On("FindByID", mock.Anything, fx.profile.ID).Return(fx.profile, nil).Maybe()
	fx.profiles.On("Save", mock.Anything, fx.profile).Return(nil).Maybe()
	return fx
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	return domainErr.Code
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues tokens carrying firm and role", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.profiles.On("FindByEmail", ctx, "avocat@ngo.cm").Return(fx.profile, nil)

		resp, err := fx.svc.Login(ctx, LoginRequest{Email: " Avocat@NGO.cm", Password: testPassword})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, fx.firm.ID, resp.Firm.ID)
		assert.NotNil(t, fx.profile.LastLoginAt)

		claims, err := fx.jwt.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, fx.firm.ID.String(), claims.FirmID)
		assert.Equal(t, "lawyer", claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.profiles.On("FindByEmail", ctx, "avocat@ngo.cm").Return(fx.profile, nil)

		_, err := fx.svc.Login(ctx, LoginRequest{Email: "avocat@ngo.cm", Password: "Wrong1234"})
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	})

	t.Run("unknown email looks like a wrong password", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.profiles.On("FindByEmail", ctx, "nobody@ngo.cm").Return(nil, shared.ErrNotFound)

		_, err := fx.svc.Login(ctx, LoginRequest{Email: "nobody@ngo.cm", Password: testPassword})
		assert.Equal(t, "INVALID_CREDENTIALS", domainCode(t, err))
	})

	t.Run("deactivated profile", func(t *testing.T) {
		fx := newAuthFixture(t)
		require.NoError(t, fx.profile.Deactivate())
		fx.profiles.On("FindByEmail", ctx, "avocat@ngo.cm").Return(fx.profile, nil)

		_, err := fx.svc.Login(ctx, LoginRequest{Email: "avocat@ngo.cm", Password: testPassword})
		assert.Equal(t, "ACCOUNT_DEACTIVATED", domainCode(t, err))
	})

	t.Run("cancelled firm", func(t *testing.T) {
		fx := newAuthFixture(t)
		require.NoError(t, fx.firm.Cancel())
		fx.profiles.On("FindByEmail", ctx, "avocat@ngo.cm").Return(fx.profile, nil)

		_, err := fx.svc.Login(ctx, LoginRequest{Email: "avocat@ngo.cm", Password: testPassword})
		assert.Equal(t, "FIRM_CANCELLED", domainCode(t, err))
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)
	pair, err := fx.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		FirmID: fx.firm.ID, ProfileID: fx.profile.ID, Email: fx.profile.Email, Role: "lawyer",
	})
	require.NoError(t, err)

	// a promotion shows up in the rotated access token
	fx.profile.Role = firm.RoleAdmin

	resp, err := fx.svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	claims, err := fx.jwt.ValidateAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	_, err = fx.svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, "TOKEN_REVOKED", domainCode(t, err))

	_, err = fx.svc.Refresh(ctx, RefreshRequest{RefreshToken: "garbage"})
	assert.Equal(t, "TOKEN_INVALID", domainCode(t, err))
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)
	pair, err := fx.jwt.GenerateTokenPair(auth.GenerateTokenInput{
		FirmID: fx.firm.ID, ProfileID: fx.profile.ID, Email: fx.profile.Email, Role: "lawyer",
	})
	require.NoError(t, err)
	access, err := fx.jwt.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, fx.svc.Logout(ctx, access, LogoutRequest{RefreshToken: pair.RefreshToken}))

	revoked, err := fx.blacklist.IsBlacklisted(ctx, access.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	_, err = fx.svc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, "TOKEN_REVOKED", domainCode(t, err))
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	fx := newAuthFixture(t)
	fx.profiles.On("FindByIDForFirm", ctx, fx.firm.ID, fx.profile.ID).Return(fx.profile, nil)

	resp, err := fx.svc.Me(ctx, fx.firm.ID, fx.profile.ID)
	require.NoError(t, err)
	assert.Equal(t, fx.profile.Email, resp.Profile.Email)
	assert.Equal(t, "Cabinet Ngo", resp.Firm.Name)

	fx.profiles.On("FindByIDForFirm", ctx, fx.firm.ID, mock.Anything).Return(nil, shared.ErrNotFound)
	_, err = fx.svc.Me(ctx, fx.firm.ID, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
