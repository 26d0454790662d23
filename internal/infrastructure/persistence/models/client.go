package models

import (
	"github.com/lexdesk/backend/internal/domain/client"
)

// ClientModel is the persistence model for a firm's client
type ClientModel struct {
	FirmAggregateModel
	Kind               client.Kind   `gorm:"type:varchar(20);not null"`
	Name               string        `gorm:"type:varchar(200);not null;index"`
	Email              string        `gorm:"type:varchar(200);index"`
	Phone              string        `gorm:"type:varchar(50)"`
	Address            string        `gorm:"type:text"`
	City               string        `gorm:"type:varchar(100)"`
	IDNumber           string        `gorm:"type:varchar(100)"`
	RegistrationNumber string        `gorm:"type:varchar(100)"`
	Profession         string        `gorm:"type:varchar(200)"`
	Notes              string        `gorm:"type:text"`
	Status             client.Status `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *client.Client {
	return &client.Client{
		FirmAggregateRoot:  m.ToDomainFirmAggregateRoot(),
		Kind:               m.Kind,
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Address:            m.Address,
		City:               m.City,
		IDNumber:           m.IDNumber,
		RegistrationNumber: m.RegistrationNumber,
		Profession:         m.Profession,
		Notes:              m.Notes,
		Status:             m.Status,
	}
}

// ClientModelFromDomain creates a new persistence model from a domain Client
func ClientModelFromDomain(c *client.Client) *ClientModel {
	m := &ClientModel{
		Kind:               c.Kind,
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		Address:            c.Address,
		City:               c.City,
		IDNumber:           c.IDNumber,
		RegistrationNumber: c.RegistrationNumber,
		Profession:         c.Profession,
		Notes:              c.Notes,
		Status:             c.Status,
	}
	m.FromDomainFirmAggregateRoot(c.FirmAggregateRoot)
	return m
}

// ContactModel is the persistence model for a professional contact
type ContactModel struct {
	FirmAggregateModel
	Name         string                 `gorm:"type:varchar(200);not null;index"`
	Category     client.ContactCategory `gorm:"type:varchar(20);not null"`
	Organization string                 `gorm:"type:varchar(200)"`
	Email        string                 `gorm:"type:varchar(200)"`
	Phone        string                 `gorm:"type:varchar(50)"`
	Address      string                 `gorm:"type:text"`
	Notes        string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ContactModel) TableName() string {
	return "professional_contacts"
}

// ToDomain converts the persistence model to a domain ProfessionalContact
func (m *ContactModel) ToDomain() *client.ProfessionalContact {
	return &client.ProfessionalContact{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		Name:              m.Name,
		Category:          m.Category,
		Organization:      m.Organization,
		Email:             m.Email,
		Phone:             m.Phone,
		Address:           m.Address,
		Notes:             m.Notes,
	}
}

// ContactModelFromDomain creates a new persistence model from a domain contact
func ContactModelFromDomain(c *client.ProfessionalContact) *ContactModel {
	m := &ContactModel{
		Name:         c.Name,
		Category:     c.Category,
		Organization: c.Organization,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		Notes:        c.Notes,
	}
	m.FromDomainFirmAggregateRoot(c.FirmAggregateRoot)
	return m
}
