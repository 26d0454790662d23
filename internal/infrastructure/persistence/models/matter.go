package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/shopspring/decimal"
)

// CaseModel is the persistence model for a case (matter)
type CaseModel struct {
	FirmAggregateModel
	Reference       string            `gorm:"type:varchar(50);not null;index"`
	Title           string            `gorm:"type:varchar(300);not null"`
	Description     string            `gorm:"type:text"`
	ClientID        uuid.UUID         `gorm:"type:uuid;not null;index"`
	Type            matter.CaseType   `gorm:"type:varchar(20);not null"`
	Status          matter.CaseStatus `gorm:"type:varchar(20);not null;index"`
	Priority        matter.Priority   `gorm:"type:varchar(10);not null;default:'medium'"`
	Court           string            `gorm:"type:varchar(200)"`
	Judge           string            `gorm:"type:varchar(200)"`
	OpposingParty   string            `gorm:"type:varchar(200)"`
	OpposingCounsel string            `gorm:"type:varchar(200)"`
	AssignedTo      *uuid.UUID        `gorm:"type:uuid;index"`
	OpenedAt        time.Time         `gorm:"not null"`
	ClosedAt        *time.Time
}

// TableName returns the table name for GORM
func (CaseModel) TableName() string {
	return "cases"
}

// ToDomain converts the persistence model to a domain Case
func (m *CaseModel) ToDomain() *matter.Case {
	return &matter.Case{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		Reference:         m.Reference,
		Title:             m.Title,
		Description:       m.Description,
		ClientID:          m.ClientID,
		Type:              m.Type,
		Status:            m.Status,
		Priority:          m.Priority,
		Court:             m.Court,
		Judge:             m.Judge,
		OpposingParty:     m.OpposingParty,
		OpposingCounsel:   m.OpposingCounsel,
		AssignedTo:        m.AssignedTo,
		OpenedAt:          m.OpenedAt,
		ClosedAt:          m.ClosedAt,
	}
}

// CaseModelFromDomain creates a new persistence model from a domain Case
func CaseModelFromDomain(c *matter.Case) *CaseModel {
	m := &CaseModel{
		Reference:       c.Reference,
		Title:           c.Title,
		Description:     c.Description,
		ClientID:        c.ClientID,
		Type:            c.Type,
		Status:          c.Status,
		Priority:        c.Priority,
		Court:           c.Court,
		Judge:           c.Judge,
		OpposingParty:   c.OpposingParty,
		OpposingCounsel: c.OpposingCounsel,
		AssignedTo:      c.AssignedTo,
		OpenedAt:        c.OpenedAt,
		ClosedAt:        c.ClosedAt,
	}
	m.FromDomainFirmAggregateRoot(c.FirmAggregateRoot)
	return m
}

// TimeEntryModel is the persistence model for billable work on a case
type TimeEntryModel struct {
	FirmAggregateModel
	CaseID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProfileID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:text;not null"`
	WorkDate    time.Time       `gorm:"not null"`
	Minutes     int             `gorm:"not null"`
	HourlyRate  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Billable    bool            `gorm:"not null;default:true"`
	InvoiceID   *uuid.UUID      `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (TimeEntryModel) TableName() string {
	return "time_entries"
}

// ToDomain converts the persistence model to a domain TimeEntry
func (m *TimeEntryModel) ToDomain() *matter.TimeEntry {
	return &matter.TimeEntry{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		CaseID:            m.CaseID,
		ProfileID:         m.ProfileID,
		Description:       m.Description,
		WorkDate:          m.WorkDate,
		Minutes:           m.Minutes,
		HourlyRate:        m.HourlyRate,
		Billable:          m.Billable,
		InvoiceID:         m.InvoiceID,
	}
}

// TimeEntryModelFromDomain creates a new persistence model from a domain TimeEntry
func TimeEntryModelFromDomain(e *matter.TimeEntry) *TimeEntryModel {
	m := &TimeEntryModel{
		CaseID:      e.CaseID,
		ProfileID:   e.ProfileID,
		Description: e.Description,
		WorkDate:    e.WorkDate,
		Minutes:     e.Minutes,
		HourlyRate:  e.HourlyRate,
		Billable:    e.Billable,
		InvoiceID:   e.InvoiceID,
	}
	m.FromDomainFirmAggregateRoot(e.FirmAggregateRoot)
	return m
}
