package models

import (
	"time"

	"github.com/lexdesk/backend/internal/domain/firm"
)

// FirmModel is the persistence model for the Firm aggregate
type FirmModel struct {
	AggregateModel
	Name                  string                  `gorm:"type:varchar(200);not null"`
	Email                 string                  `gorm:"type:varchar(200);index"`
	Phone                 string                  `gorm:"type:varchar(50)"`
	Address               string                  `gorm:"type:text"`
	City                  string                  `gorm:"type:varchar(100)"`
	Country               string                  `gorm:"type:varchar(100)"`
	BarNumber             string                  `gorm:"type:varchar(100)"`
	LogoURL               string                  `gorm:"type:varchar(500)"`
	Locale                firm.Locale             `gorm:"type:varchar(5);not null;default:'fr'"`
	Currency              string                  `gorm:"type:varchar(3);not null;default:'XAF'"`
	CaseReferencePrefix   string                  `gorm:"type:varchar(10);not null;default:'DOS'"`
	Plan                  firm.Plan               `gorm:"type:varchar(20);not null;index"`
	Status                firm.SubscriptionStatus `gorm:"type:varchar(20);not null;index"`
	TrialEndsAt           *time.Time
	SubscriptionStartedAt *time.Time
	SubscriptionExpiresAt *time.Time `gorm:"index"`
	SuspendedReason       string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (FirmModel) TableName() string {
	return "firms"
}

// ToDomain converts the persistence model to a domain Firm
func (m *FirmModel) ToDomain() *firm.Firm {
	f := &firm.Firm{
		Name:                  m.Name,
		Email:                 m.Email,
		Phone:                 m.Phone,
		Address:               m.Address,
		City:                  m.City,
		Country:               m.Country,
		BarNumber:             m.BarNumber,
		LogoURL:               m.LogoURL,
		Locale:                m.Locale,
		Currency:              m.Currency,
		CaseReferencePrefix:   m.CaseReferencePrefix,
		Plan:                  m.Plan,
		Status:                m.Status,
		TrialEndsAt:           m.TrialEndsAt,
		SubscriptionStartedAt: m.SubscriptionStartedAt,
		SubscriptionExpiresAt: m.SubscriptionExpiresAt,
		SuspendedReason:       m.SuspendedReason,
	}
	m.PopulateAggregateRoot(&f.BaseAggregateRoot)
	return f
}

// FromDomain populates the model from a domain Firm
func (m *FirmModel) FromDomain(f *firm.Firm) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.Name = f.Name
	m.Email = f.Email
	m.Phone = f.Phone
	m.Address = f.Address
	m.City = f.City
	m.Country = f.Country
	m.BarNumber = f.BarNumber
	m.LogoURL = f.LogoURL
	m.Locale = f.Locale
	m.Currency = f.Currency
	m.CaseReferencePrefix = f.CaseReferencePrefix
	m.Plan = f.Plan
	m.Status = f.Status
	m.TrialEndsAt = f.TrialEndsAt
	m.SubscriptionStartedAt = f.SubscriptionStartedAt
	m.SubscriptionExpiresAt = f.SubscriptionExpiresAt
	m.SuspendedReason = f.SuspendedReason
}

// FirmModelFromDomain creates a new persistence model from a domain Firm
func FirmModelFromDomain(f *firm.Firm) *FirmModel {
	m := &FirmModel{}
	m.FromDomain(f)
	return m
}

// ProfileModel is the persistence model for a firm user
type ProfileModel struct {
	FirmAggregateModel
	FullName     string    `gorm:"type:varchar(200);not null"`
	Email        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Phone        string    `gorm:"type:varchar(50)"`
	Role         firm.Role `gorm:"type:varchar(20);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Active       bool      `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (ProfileModel) TableName() string {
	return "profiles"
}

// ToDomain converts the persistence model to a domain Profile
func (m *ProfileModel) ToDomain() *firm.Profile {
	return &firm.Profile{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		FullName:          m.FullName,
		Email:             m.Email,
		Phone:             m.Phone,
		Role:              m.Role,
		PasswordHash:      m.PasswordHash,
		Active:            m.Active,
		LastLoginAt:       m.LastLoginAt,
	}
}

// ProfileModelFromDomain creates a new persistence model from a domain Profile
func ProfileModelFromDomain(p *firm.Profile) *ProfileModel {
	m := &ProfileModel{
		FullName:     p.FullName,
		Email:        p.Email,
		Phone:        p.Phone,
		Role:         p.Role,
		PasswordHash: p.PasswordHash,
		Active:       p.Active,
		LastLoginAt:  p.LastLoginAt,
	}
	m.FromDomainFirmAggregateRoot(p.FirmAggregateRoot)
	return m
}
