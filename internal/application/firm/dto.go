package firm

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
)

// RegisterFirmRequest creates a firm, its owner profile and a trial
type RegisterFirmRequest struct {
	FirmName string `json:"firm_name" binding:"required,min=2,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	City     string `json:"city" binding:"omitempty,max=100"`
	FullName string `json:"full_name" binding:"required,min=2,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UpdateFirmRequest replaces the firm's identity and preferences
type UpdateFirmRequest struct {
	Name                string `json:"name" binding:"required,min=2,max=200"`
	Email               string `json:"email" binding:"required,email"`
	Phone               string `json:"phone" binding:"omitempty,max=20"`
	Address             string `json:"address" binding:"max=500"`
	City                string `json:"city" binding:"max=100"`
	Country             string `json:"country" binding:"max=100"`
	BarNumber           string `json:"bar_number" binding:"max=50"`
	Locale              string `json:"locale" binding:"omitempty,oneof=fr en"`
	Currency            string `json:"currency" binding:"omitempty,len=3"`
	CaseReferencePrefix string `json:"case_reference_prefix" binding:"omitempty,alphanum,max=10"`
}

// FirmResponse is a firm in API responses
type FirmResponse struct {
	ID                    uuid.UUID  `json:"id"`
	Name                  string     `json:"name"`
	Email                 string     `json:"email"`
	Phone                 string     `json:"phone,omitempty"`
	Address               string     `json:"address,omitempty"`
	City                  string     `json:"city,omitempty"`
	Country               string     `json:"country,omitempty"`
	BarNumber             string     `json:"bar_number,omitempty"`
	LogoURL               string     `json:"logo_url,omitempty"`
	Locale                string     `json:"locale"`
	Currency              string     `json:"currency"`
	CaseReferencePrefix   string     `json:"case_reference_prefix"`
	Plan                  string     `json:"plan"`
	Status                string     `json:"status"`
	TrialEndsAt           *time.Time `json:"trial_ends_at,omitempty"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// ToFirmResponse converts a domain firm
func ToFirmResponse(f *firm.Firm) FirmResponse {
	return FirmResponse{
		ID:                    f.ID,
		Name:                  f.Name,
		Email:                 f.Email,
		Phone:                 f.Phone,
		Address:               f.Address,
		City:                  f.City,
		Country:               f.Country,
		BarNumber:             f.BarNumber,
		LogoURL:               f.LogoURL,
		Locale:                string(f.Locale),
		Currency:              f.Currency,
		CaseReferencePrefix:   f.CaseReferencePrefix,
		Plan:                  string(f.Plan),
		Status:                string(f.Status),
		TrialEndsAt:           f.TrialEndsAt,
		SubscriptionExpiresAt: f.SubscriptionExpiresAt,
		CreatedAt:             f.CreatedAt,
	}
}

// ProfileResponse is a profile in API responses; the password hash never leaves
type ProfileResponse struct {
	ID          uuid.UUID  `json:"id"`
	FirmID      uuid.UUID  `json:"firm_id"`
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Active      bool       `json:"active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToProfileResponse converts a domain profile
func ToProfileResponse(p *firm.Profile) ProfileResponse {
	return ProfileResponse{
		ID:          p.ID,
		FirmID:      p.FirmID,
		FullName:    p.FullName,
		Email:       p.Email,
		Phone:       p.Phone,
		Role:        string(p.Role),
		Active:      p.Active,
		LastLoginAt: p.LastLoginAt,
		CreatedAt:   p.CreatedAt,
	}
}

// ToProfileResponses converts a slice of profiles
func ToProfileResponses(profiles []firm.Profile) []ProfileResponse {
	out := make([]ProfileResponse, len(profiles))
	for i := range profiles {
		out[i] = ToProfileResponse(&profiles[i])
	}
	return out
}

// CreateProfileRequest adds a member to the firm
type CreateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=200"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Role     string `json:"role" binding:"required,oneof=admin lawyer assistant"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// UpdateProfileRequest changes a member; an empty role keeps the current one
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=200"`
	Phone    string `json:"phone" binding:"omitempty,max=20"`
	Role     string `json:"role" binding:"omitempty,oneof=owner admin lawyer assistant"`
}

// ChangePasswordRequest replaces the caller's password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8,max=72"`
}

// RegisterResponse is returned after sign-up
type RegisterResponse struct {
	Firm    FirmResponse    `json:"firm"`
	Profile ProfileResponse `json:"profile"`
}

// LoginRequest authenticates a profile by email
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest rotates a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token to revoke with the
// access token
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries a token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse is returned after a successful login
type LoginResponse struct {
	TokenResponse
	Profile ProfileResponse `json:"profile"`
	Firm    FirmResponse    `json:"firm"`
}

// MeResponse describes the authenticated profile and its firm
type MeResponse struct {
	Profile ProfileResponse `json:"profile"`
	Firm    FirmResponse    `json:"firm"`
}
