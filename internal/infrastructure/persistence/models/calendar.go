package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/calendar"
)

// CalendarEventModel is the persistence model for hearings, meetings and deadlines
type CalendarEventModel struct {
	FirmAggregateModel
	Title           string             `gorm:"type:varchar(300);not null"`
	Description     string             `gorm:"type:text"`
	Type            calendar.EventType `gorm:"type:varchar(20);not null"`
	StartAt         time.Time          `gorm:"not null;index"`
	EndAt           time.Time          `gorm:"not null"`
	AllDay          bool               `gorm:"not null;default:false"`
	Location        string             `gorm:"type:varchar(300)"`
	CaseID          *uuid.UUID         `gorm:"type:uuid;index"`
	ClientID        *uuid.UUID         `gorm:"type:uuid"`
	ProfileID       *uuid.UUID         `gorm:"type:uuid"`
	ReminderMinutes int                `gorm:"not null;default:1440"`
	ReminderSentAt  *time.Time
	Status          calendar.Status `gorm:"type:varchar(20);not null;index"`
}

// TableName returns the table name for GORM
func (CalendarEventModel) TableName() string {
	return "calendar_events"
}

// ToDomain converts the persistence model to a domain Event
func (m *CalendarEventModel) ToDomain() *calendar.Event {
	return &calendar.Event{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		Title:             m.Title,
		Description:       m.Description,
		Type:              m.Type,
		StartAt:           m.StartAt,
		EndAt:             m.EndAt,
		AllDay:            m.AllDay,
		Location:          m.Location,
		CaseID:            m.CaseID,
		ClientID:          m.ClientID,
		ProfileID:         m.ProfileID,
		ReminderMinutes:   m.ReminderMinutes,
		ReminderSentAt:    m.ReminderSentAt,
		Status:            m.Status,
	}
}

// CalendarEventModelFromDomain creates a new persistence model from a domain Event
func CalendarEventModelFromDomain(e *calendar.Event) *CalendarEventModel {
	m := &CalendarEventModel{
		Title:           e.Title,
		Description:     e.Description,
		Type:            e.Type,
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		AllDay:          e.AllDay,
		Location:        e.Location,
		CaseID:          e.CaseID,
		ClientID:        e.ClientID,
		ProfileID:       e.ProfileID,
		ReminderMinutes: e.ReminderMinutes,
		ReminderSentAt:  e.ReminderSentAt,
		Status:          e.Status,
	}
	m.FromDomainFirmAggregateRoot(e.FirmAggregateRoot)
	return m
}
