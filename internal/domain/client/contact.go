package client

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// ContactCategory classifies a professional contact
type ContactCategory string

const (
	CategoryLawyer     ContactCategory = "lawyer"
	CategoryBailiff    ContactCategory = "bailiff"
	CategoryNotary     ContactCategory = "notary"
	CategoryExpert     ContactCategory = "expert"
	CategoryJudge      ContactCategory = "judge"
	CategoryCourtClerk ContactCategory = "court_clerk"
	CategoryOther      ContactCategory = "other"
)

// IsValid reports whether c is known
func (c ContactCategory) IsValid() bool {
	switch c {
	case CategoryLawyer, CategoryBailiff, CategoryNotary, CategoryExpert,
		CategoryJudge, CategoryCourtClerk, CategoryOther:
		return true
	}
	return false
}

// ProfessionalContact is someone the firm works with who is not a client
type ProfessionalContact struct {
	shared.FirmAggregateRoot
	Name         string
	Category     ContactCategory
	Organization string
	Email        string
	Phone        string
	Address      string
	Notes        string
}

// NewProfessionalContact creates a contact
func NewProfessionalContact(firmID uuid.UUID, name string, category ContactCategory) (*ProfessionalContact, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Invalid contact category")
	}
	return &ProfessionalContact{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Name:              name,
		Category:          category,
	}, nil
}

// Update replaces all editable fields
func (p *ProfessionalContact) Update(name string, category ContactCategory, organization, email, phone, address, notes string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Invalid contact category")
	}
	p.Name = name
	p.Category = category
	p.Organization = organization
	p.Email = strings.ToLower(strings.TrimSpace(email))
	p.Phone = strings.TrimSpace(phone)
	p.Address = address
	p.Notes = notes
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}
