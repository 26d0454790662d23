package matter

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TimeEntry is work recorded by a profile on a case
type TimeEntry struct {
	shared.FirmAggregateRoot
	CaseID      uuid.UUID
	ProfileID   uuid.UUID
	Description string
	WorkDate    time.Time
	Minutes     int
	HourlyRate  decimal.Decimal
	Billable    bool
	InvoiceID   *uuid.UUID
}

// NewTimeEntry records minutes of work at hourlyRate
func NewTimeEntry(firmID, caseID, profileID uuid.UUID, description string, workDate time.Time, minutes int, hourlyRate decimal.Decimal, billable bool) (*TimeEntry, error) {
	if caseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CASE", "Time entry must reference a case")
	}
	if err := validateWork(description, minutes, hourlyRate); err != nil {
		return nil, err
	}
	return &TimeEntry{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		CaseID:            caseID,
		ProfileID:         profileID,
		Description:       strings.TrimSpace(description),
		WorkDate:          workDate,
		Minutes:           minutes,
		HourlyRate:        hourlyRate,
		Billable:          billable,
	}, nil
}

// Amount is minutes/60 x hourly rate, rounded to 2 decimals
func (e *TimeEntry) Amount() decimal.Decimal {
	hours := decimal.NewFromInt(int64(e.Minutes)).Div(decimal.NewFromInt(60))
	return hours.Mul(e.HourlyRate).Round(2)
}

// Hours returns the duration in hours
func (e *TimeEntry) Hours() decimal.Decimal {
	return decimal.NewFromInt(int64(e.Minutes)).Div(decimal.NewFromInt(60)).Round(2)
}

// IsBilled reports whether the entry is already on an invoice
func (e *TimeEntry) IsBilled() bool {
	return e.InvoiceID != nil
}

// Update changes the work record; billed entries are immutable
func (e *TimeEntry) Update(description string, workDate time.Time, minutes int, hourlyRate decimal.Decimal, billable bool) error {
	if e.IsBilled() {
		return shared.NewDomainError("TIME_ENTRY_BILLED", "Billed time entries cannot be modified")
	}
	if err := validateWork(description, minutes, hourlyRate); err != nil {
		return err
	}
	e.Description = strings.TrimSpace(description)
	e.WorkDate = workDate
	e.Minutes = minutes
	e.HourlyRate = hourlyRate
	e.Billable = billable
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// MarkBilled links the entry to an invoice
func (e *TimeEntry) MarkBilled(invoiceID uuid.UUID) error {
	if e.IsBilled() {
		return shared.NewDomainError("TIME_ENTRY_BILLED", "Time entry is already billed")
	}
	if !e.Billable {
		return shared.NewDomainError("TIME_ENTRY_NOT_BILLABLE", "Time entry is not billable")
	}
	e.InvoiceID = &invoiceID
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
	return nil
}

// ReleaseBilling unlinks the entry from a cancelled invoice
func (e *TimeEntry) ReleaseBilling() {
	e.InvoiceID = nil
	e.UpdatedAt = time.Now()
	e.IncrementVersion()
}

func validateWork(description string, minutes int, hourlyRate decimal.Decimal) error {
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if minutes <= 0 {
		return shared.NewDomainError("INVALID_DURATION", "Duration must be positive")
	}
	if minutes > 24*60 {
		return shared.NewDomainError("INVALID_DURATION", "Duration cannot exceed 24 hours")
	}
	if hourlyRate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Hourly rate cannot be negative")
	}
	return nil
}
