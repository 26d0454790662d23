// Package calendar holds hearings, meetings and deadlines.
package calendar

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// EventType classifies a calendar entry
type EventType string

const (
	TypeHearing      EventType = "hearing"
	TypeMeeting      EventType = "meeting"
	TypeDeadline     EventType = "deadline"
	TypeConsultation EventType = "consultation"
	TypeOther        EventType = "other"
)

// IsValid reports whether t is known
func (t EventType) IsValid() bool {
	switch t {
	case TypeHearing, TypeMeeting, TypeDeadline, TypeConsultation, TypeOther:
		return true
	}
	return false
}

// Status of a calendar event
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Event is a dated entry in the firm's calendar
type Event struct {
	shared.FirmAggregateRoot
	Title           string
	Description     string
	Type            EventType
	StartAt         time.Time
	EndAt           time.Time
	AllDay          bool
	Location        string
	CaseID          *uuid.UUID
	ClientID        *uuid.UUID
	ProfileID       *uuid.UUID
	ReminderMinutes int
	ReminderSentAt  *time.Time
	Status          Status
}

// DefaultReminderMinutes is one day
const DefaultReminderMinutes = 24 * 60

// NewEvent schedules an event
func NewEvent(firmID uuid.UUID, title string, eventType EventType, startAt, endAt time.Time) (*Event, error) {
	e := &Event{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		ReminderMinutes:   DefaultReminderMinutes,
		Status:            StatusScheduled,
	}
	if err := e.Reschedule(title, eventType, startAt, endAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Reschedule changes title, type and time window. Moving the start time
// re-arms the reminder.
func (e *Event) Reschedule(title string, eventType EventType, startAt, endAt time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Event title cannot be empty")
	}
	if eventType == "" {
		eventType = TypeOther
	}
	if !eventType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Invalid event type")
	}
	if startAt.IsZero() {
		return shared.NewDomainError("INVALID_START", "Start time is required")
	}
	if endAt.IsZero() {
		endAt = startAt
	}
	if endAt.Before(startAt) {
		return shared.NewDomainError("INVALID_RANGE", "End time cannot be before start time")
	}
	if e.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cancelled events cannot be changed")
	}
	if !e.StartAt.IsZero() && !e.StartAt.Equal(startAt) {
		e.ReminderSentAt = nil
	}
	e.Title = title
	e.Type = eventType
	e.StartAt = startAt
	e.EndAt = endAt
	e.touch()
	return nil
}

// SetReminder sets minutes before start for the reminder; 0 disables it
func (e *Event) SetReminder(minutes int) error {
	if minutes < 0 {
		return shared.NewDomainError("INVALID_REMINDER", "Reminder cannot be negative")
	}
	e.ReminderMinutes = minutes
	e.ReminderSentAt = nil
	e.touch()
	return nil
}

// ReminderDue reports whether the reminder should fire at now
func (e *Event) ReminderDue(now time.Time) bool {
	if e.Status != StatusScheduled || e.ReminderMinutes == 0 || e.ReminderSentAt != nil {
		return false
	}
	if !now.Before(e.StartAt) {
		return false
	}
	remindAt := e.StartAt.Add(-time.Duration(e.ReminderMinutes) * time.Minute)
	return !now.Before(remindAt)
}

// MarkReminderSent records the reminder
func (e *Event) MarkReminderSent(at time.Time) {
	e.ReminderSentAt = &at
	e.UpdatedAt = time.Now()
}

// Complete marks the event as held
func (e *Event) Complete() error {
	if e.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled events can be completed")
	}
	e.Status = StatusCompleted
	e.touch()
	return nil
}

// Cancel cancels the event
func (e *Event) Cancel() error {
	if e.Status != StatusScheduled {
		return shared.NewDomainError("INVALID_STATE", "Only scheduled events can be cancelled")
	}
	e.Status = StatusCancelled
	e.touch()
	return nil
}

func (e *Event) touch() {
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}
