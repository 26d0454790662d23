// Package client holds the firm's clients and its professional contacts
// (other lawyers, bailiffs, notaries, experts).
package client

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// Kind distinguishes natural persons from companies
type Kind string

const (
	KindIndividual Kind = "individual"
	KindCompany    Kind = "company"
)

// IsValid reports whether k is known
func (k Kind) IsValid() bool {
	return k == KindIndividual || k == KindCompany
}

// Status of a client record
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusArchived Status = "archived"
)

// IsValid reports whether s is known
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	}
	return false
}

// Client is a person or company the firm represents
type Client struct {
	shared.FirmAggregateRoot
	Kind               Kind
	Name               string
	Email              string
	Phone              string
	Address            string
	City               string
	IDNumber           string
	RegistrationNumber string
	Profession         string
	Notes              string
	Status             Status
}

// NewClient creates an active client
func NewClient(firmID uuid.UUID, kind Kind, name string) (*Client, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Client kind must be individual or company")
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Client{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Kind:              kind,
		Name:              name,
		Status:            StatusActive,
	}, nil
}

// SetContact sets email, phone and address
func (c *Client) SetContact(email, phone, address, city string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
		}
	}
	c.Email = email
	c.Phone = strings.TrimSpace(phone)
	c.Address = address
	c.City = city
	c.touch()
	return nil
}

// SetIdentity sets identification numbers and profession
func (c *Client) SetIdentity(idNumber, registrationNumber, profession string) {
	c.IDNumber = strings.TrimSpace(idNumber)
	c.RegistrationNumber = strings.TrimSpace(registrationNumber)
	c.Profession = profession
	c.touch()
}

// Update changes the name, kind and notes
func (c *Client) Update(kind Kind, name, notes string) error {
	if kind != "" {
		if !kind.IsValid() {
			return shared.NewDomainError("INVALID_KIND", "Client kind must be individual or company")
		}
		c.Kind = kind
	}
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = name
	c.Notes = notes
	c.touch()
	return nil
}

// Archive hides the client from active lists
func (c *Client) Archive() error {
	if c.Status == StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Client is already archived")
	}
	c.Status = StatusArchived
	c.touch()
	return nil
}

// SetStatus changes the status to active or inactive
func (c *Client) SetStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid client status")
	}
	c.Status = status
	c.touch()
	return nil
}

// HasReachableEmail reports whether outbound email can be sent
func (c *Client) HasReachableEmail() bool {
	return c.Email != ""
}

func (c *Client) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}
