package calendar

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/calendar"
)

// EventRequest creates or reschedules a calendar event. ReminderMinutes
// nil keeps the current reminder (one day for new events); 0 disables it.
type EventRequest struct {
	Title           string     `json:"title" binding:"required,min=2,max=300"`
	Description     string     `json:"description"`
	Type            string     `json:"type" binding:"omitempty,oneof=hearing meeting deadline consultation other"`
	StartAt         time.Time  `json:"start_at" binding:"required"`
	EndAt           time.Time  `json:"end_at"`
	AllDay          bool       `json:"all_day"`
	Location        string     `json:"location" binding:"max=300"`
	CaseID          *uuid.UUID `json:"case_id"`
	ClientID        *uuid.UUID `json:"client_id"`
	ProfileID       *uuid.UUID `json:"profile_id"`
	ReminderMinutes *int       `json:"reminder_minutes" binding:"omitempty,min=0,max=43200"`
}

// EventListFilter represents filter options for the event list
type EventListFilter struct {
	Search    string     `form:"search"`
	CaseID    string     `form:"case_id" binding:"omitempty,uuid"`
	ClientID  string     `form:"client_id" binding:"omitempty,uuid"`
	Type      string     `form:"type" binding:"omitempty,oneof=hearing meeting deadline consultation other"`
	Status    string     `form:"status" binding:"omitempty,oneof=scheduled completed cancelled"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=200"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// RangeQuery selects events overlapping [From, To)
type RangeQuery struct {
	From time.Time `form:"from" binding:"required"`
	To   time.Time `form:"to" binding:"required"`
}

// EventResponse represents a calendar event in API responses
type EventResponse struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Type            string     `json:"type"`
	StartAt         time.Time  `json:"start_at"`
	EndAt           time.Time  `json:"end_at"`
	AllDay          bool       `json:"all_day"`
	Location        string     `json:"location,omitempty"`
	CaseID          *uuid.UUID `json:"case_id,omitempty"`
	ClientID        *uuid.UUID `json:"client_id,omitempty"`
	ProfileID       *uuid.UUID `json:"profile_id,omitempty"`
	ReminderMinutes int        `json:"reminder_minutes"`
	ReminderSentAt  *time.Time `json:"reminder_sent_at,omitempty"`
	Status          string     `json:"status"`
	CreatedBy       *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToEventResponse converts a domain event
func ToEventResponse(e *calendar.Event) EventResponse {
	return EventResponse{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		Type:            string(e.Type),
		StartAt:         e.StartAt,
		EndAt:           e.EndAt,
		AllDay:          e.AllDay,
		Location:        e.Location,
		CaseID:          e.CaseID,
		ClientID:        e.ClientID,
		ProfileID:       e.ProfileID,
		ReminderMinutes: e.ReminderMinutes,
		ReminderSentAt:  e.ReminderSentAt,
		Status:          string(e.Status),
		CreatedBy:       e.CreatedBy,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// ToEventResponses converts a slice of domain events
func ToEventResponses(events []calendar.Event) []EventResponse {
	out := make([]EventResponse, len(events))
	for i := range events {
		out[i] = ToEventResponse(&events[i])
	}
	return out
}

// ReminderRun reports one pass of the reminder job
type ReminderRun struct {
	Checked int
	Sent    int
	Failed  int
}
