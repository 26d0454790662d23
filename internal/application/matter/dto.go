package matter

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Case DTOs
// =============================================================================

// CreateCaseRequest opens a case. An empty reference is generated from the
// firm's prefix and the yearly sequence.
type CreateCaseRequest struct {
	ClientID        uuid.UUID  `json:"client_id" binding:"required"`
	Reference       string     `json:"reference" binding:"max=50"`
	Title           string     `json:"title" binding:"required,min=2,max=300"`
	Description     string     `json:"description"`
	Type            string     `json:"type" binding:"omitempty,oneof=civil criminal commercial labor family administrative other"`
	Priority        string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Court           string     `json:"court" binding:"max=200"`
	Judge           string     `json:"judge" binding:"max=200"`
	OpposingParty   string     `json:"opposing_party" binding:"max=200"`
	OpposingCounsel string     `json:"opposing_counsel" binding:"max=200"`
	AssignedTo      *uuid.UUID `json:"assigned_to"`
}

// UpdateCaseRequest replaces a case's descriptive fields
type UpdateCaseRequest struct {
	Title           string `json:"title" binding:"required,min=2,max=300"`
	Description     string `json:"description"`
	Type            string `json:"type" binding:"omitempty,oneof=civil criminal commercial labor family administrative other"`
	Priority        string `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Court           string `json:"court" binding:"max=200"`
	Judge           string `json:"judge" binding:"max=200"`
	OpposingParty   string `json:"opposing_party" binding:"max=200"`
	OpposingCounsel string `json:"opposing_counsel" binding:"max=200"`
}

// AssignCaseRequest sets the responsible profile; null unassigns
type AssignCaseRequest struct {
	ProfileID *uuid.UUID `json:"profile_id"`
}

// ChangeCaseStatusRequest moves a case through its lifecycle
type ChangeCaseStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=open in_progress pending closed archived"`
}

// CaseListFilter represents filter options for the case list
type CaseListFilter struct {
	Search     string     `form:"search"`
	ClientID   string     `form:"client_id" binding:"omitempty,uuid"`
	Status     string     `form:"status" binding:"omitempty,oneof=open in_progress pending closed archived"`
	Priority   string     `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	Type       string     `form:"type"`
	AssignedTo string     `form:"assigned_to" binding:"omitempty,uuid"`
	StartDate  *time.Time `form:"start_date"`
	EndDate    *time.Time `form:"end_date"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// CaseResponse represents a case in API responses
type CaseResponse struct {
	ID              uuid.UUID  `json:"id"`
	FirmID          uuid.UUID  `json:"firm_id"`
	Reference       string     `json:"reference"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	ClientID        uuid.UUID  `json:"client_id"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	Priority        string     `json:"priority"`
	Court           string     `json:"court,omitempty"`
	Judge           string     `json:"judge,omitempty"`
	OpposingParty   string     `json:"opposing_party,omitempty"`
	OpposingCounsel string     `json:"opposing_counsel,omitempty"`
	AssignedTo      *uuid.UUID `json:"assigned_to,omitempty"`
	OpenedAt        time.Time  `json:"opened_at"`
	ClosedAt        *time.Time `json:"closed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ToCaseResponse converts a domain case to a response DTO
func ToCaseResponse(c *matter.Case) CaseResponse {
	return CaseResponse{
		ID:              c.ID,
		FirmID:          c.FirmID,
		Reference:       c.Reference,
		Title:           c.Title,
		Description:     c.Description,
		ClientID:        c.ClientID,
		Type:            string(c.Type),
		Status:          string(c.Status),
		Priority:        string(c.Priority),
		Court:           c.Court,
		Judge:           c.Judge,
		OpposingParty:   c.OpposingParty,
		OpposingCounsel: c.OpposingCounsel,
		AssignedTo:      c.AssignedTo,
		OpenedAt:        c.OpenedAt,
		ClosedAt:        c.ClosedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// =============================================================================
// Time entry DTOs
// =============================================================================

// TimeEntryRequest records or replaces work on a case
type TimeEntryRequest struct {
	Description string           `json:"description" binding:"required,max=1000"`
	WorkDate    time.Time        `json:"work_date" binding:"required"`
	Minutes     int              `json:"minutes" binding:"required,min=1,max=1440"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	Billable    *bool            `json:"billable"`
}

// TimeEntryListFilter represents filter options for the time entry list
type TimeEntryListFilter struct {
	CaseID    string     `form:"case_id" binding:"omitempty,uuid"`
	ProfileID string     `form:"profile_id" binding:"omitempty,uuid"`
	Billed    string     `form:"billed" binding:"omitempty,oneof=true false"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string     `form:"order_by"`
	OrderDir  string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TimeEntryResponse represents a time entry in API responses
type TimeEntryResponse struct {
	ID          uuid.UUID       `json:"id"`
	CaseID      uuid.UUID       `json:"case_id"`
	ProfileID   uuid.UUID       `json:"profile_id"`
	Description string          `json:"description"`
	WorkDate    time.Time       `json:"work_date"`
	Minutes     int             `json:"minutes"`
	Hours       decimal.Decimal `json:"hours"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Amount      decimal.Decimal `json:"amount"`
	Billable    bool            `json:"billable"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToTimeEntryResponse converts a domain time entry to a response DTO
func ToTimeEntryResponse(e *matter.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:          e.ID,
		CaseID:      e.CaseID,
		ProfileID:   e.ProfileID,
		Description: e.Description,
		WorkDate:    e.WorkDate,
		Minutes:     e.Minutes,
		Hours:       e.Hours(),
		HourlyRate:  e.HourlyRate,
		Amount:      e.Amount(),
		Billable:    e.Billable,
		InvoiceID:   e.InvoiceID,
		CreatedAt:   e.CreatedAt,
	}
}

// TimeSummary totals the unbilled work on a case
type TimeSummary struct {
	Minutes         int             `json:"minutes"`
	BillableMinutes int             `json:"billable_minutes"`
	Amount          decimal.Decimal `json:"amount"`
}
