package firm

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// Role of a profile inside its firm
type Role string

const (
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
	RoleLawyer    Role = "lawyer"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleLawyer, RoleAssistant:
		return true
	}
	return false
}

// CanManageFirm reports whether the role may change firm settings,
// profiles and the subscription
func (r Role) CanManageFirm() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Profile is a user account belonging to a firm
type Profile struct {
	shared.FirmAggregateRoot
	FullName     string
	Email        string
	Phone        string
	Role         Role
	PasswordHash string
	Active       bool
	LastLoginAt  *time.Time
}

// NewProfile creates a profile. The password hash is produced by the caller.
func NewProfile(firmID uuid.UUID, fullName, email string, role Role, passwordHash string) (*Profile, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Invalid role")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password is required")
	}
	return &Profile{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		FullName:          fullName,
		Email:             email,
		Role:              role,
		PasswordHash:      passwordHash,
		Active:            true,
	}, nil
}

// Update changes name, phone and role. The last owner cannot be demoted
// here; that check needs the repository and lives in the service.
func (p *Profile) Update(fullName, phone string, role Role) error {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return shared.NewDomainError("INVALID_NAME", "Full name cannot be empty")
	}
	if role != "" {
		if !role.IsValid() {
			return shared.NewDomainError("INVALID_ROLE", "Invalid role")
		}
		p.Role = role
	}
	p.FullName = fullName
	p.Phone = strings.TrimSpace(phone)
	p.touch()
	return nil
}

// SetPasswordHash replaces the stored password hash
func (p *Profile) SetPasswordHash(hash string) error {
	if hash == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password is required")
	}
	p.PasswordHash = hash
	p.touch()
	return nil
}

// RecordLogin stores the login time
func (p *Profile) RecordLogin(at time.Time) {
	p.LastLoginAt = &at
	p.UpdatedAt = time.Now()
}

// Deactivate disables the profile
func (p *Profile) Deactivate() error {
	if !p.Active {
		return shared.NewDomainError("INVALID_STATE", "Profile is already inactive")
	}
	p.Active = false
	p.touch()
	return nil
}

// Activate re-enables the profile
func (p *Profile) Activate() {
	p.Active = true
	p.touch()
}

func (p *Profile) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	return email, nil
}
