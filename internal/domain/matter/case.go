// Package matter holds legal cases and the time recorded against them.
package matter

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// CaseType is the area of law of a case
type CaseType string

const (
	TypeCivil          CaseType = "civil"
	TypeCriminal       CaseType = "criminal"
	TypeCommercial     CaseType = "commercial"
	TypeLabor          CaseType = "labor"
	TypeFamily         CaseType = "family"
	TypeAdministrative CaseType = "administrative"
	TypeOther          CaseType = "other"
)

// IsValid reports whether t is known
func (t CaseType) IsValid() bool {
	switch t {
	case TypeCivil, TypeCriminal, TypeCommercial, TypeLabor, TypeFamily, TypeAdministrative, TypeOther:
		return true
	}
	return false
}

// CaseStatus is the lifecycle state of a case
type CaseStatus string

const (
	StatusOpen       CaseStatus = "open"
	StatusInProgress CaseStatus = "in_progress"
	StatusPending    CaseStatus = "pending"
	StatusClosed     CaseStatus = "closed"
	StatusArchived   CaseStatus = "archived"
)

// IsValid reports whether s is known
func (s CaseStatus) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusPending, StatusClosed, StatusArchived:
		return true
	}
	return false
}

// IsActive reports whether work can still be recorded
func (s CaseStatus) IsActive() bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusPending
}

// Priority of a case
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsValid reports whether p is known
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Case is a legal matter handled for a client
type Case struct {
	shared.FirmAggregateRoot
	Reference       string
	Title           string
	Description     string
	ClientID        uuid.UUID
	Type            CaseType
	Status          CaseStatus
	Priority        Priority
	Court           string
	Judge           string
	OpposingParty   string
	OpposingCounsel string
	AssignedTo      *uuid.UUID
	OpenedAt        time.Time
	ClosedAt        *time.Time
}

// NewCase opens a case for clientID
func NewCase(firmID, clientID uuid.UUID, reference, title string, caseType CaseType) (*Case, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "A case must belong to a client")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Case title cannot be empty")
	}
	if len(title) > 300 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Case title cannot exceed 300 characters")
	}
	if caseType == "" {
		caseType = TypeOther
	}
	if !caseType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Invalid case type")
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Case reference cannot be empty")
	}

	c := &Case{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Reference:         reference,
		Title:             title,
		ClientID:          clientID,
		Type:              caseType,
		Status:            StatusOpen,
		Priority:          PriorityMedium,
		OpenedAt:          time.Now(),
	}
	return c, nil
}

// FormatReference builds "<prefix>-<year>-<seq>" with a 4-digit sequence
func FormatReference(prefix string, year int, seq int64) string {
	if prefix == "" {
		prefix = "DOS"
	}
	return fmt.Sprintf("%s-%d-%04d", strings.ToUpper(prefix), year, seq)
}

// UpdateDetails changes descriptive fields
func (c *Case) UpdateDetails(title, description string, caseType CaseType, priority Priority) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Case title cannot be empty")
	}
	if caseType != "" && !caseType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Invalid case type")
	}
	if priority != "" && !priority.IsValid() {
		return shared.NewDomainError("INVALID_PRIORITY", "Invalid priority")
	}
	if c.Status == StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived cases cannot be modified")
	}
	c.Title = title
	c.Description = description
	if caseType != "" {
		c.Type = caseType
	}
	if priority != "" {
		c.Priority = priority
	}
	c.touch()
	return nil
}

// SetCourt records court, judge and the opposing side
func (c *Case) SetCourt(court, judge, opposingParty, opposingCounsel string) {
	c.Court = court
	c.Judge = judge
	c.OpposingParty = opposingParty
	c.OpposingCounsel = opposingCounsel
	c.touch()
}

// Assign sets the responsible profile; nil unassigns
func (c *Case) Assign(profileID *uuid.UUID) {
	c.AssignedTo = profileID
	c.touch()
}

// ChangeStatus moves the case to status. Closing stamps closed_at,
// reopening clears it, archived is terminal.
func (c *Case) ChangeStatus(status CaseStatus, now time.Time) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Invalid case status")
	}
	if c.Status == status {
		return nil
	}
	if c.Status == StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived cases cannot change status")
	}

	old := c.Status
	switch status {
	case StatusClosed:
		c.ClosedAt = &now
	case StatusArchived:
		if c.ClosedAt == nil {
			c.ClosedAt = &now
		}
	default:
		c.ClosedAt = nil
	}
	c.Status = status
	c.touch()
	c.AddDomainEvent(NewCaseStatusChangedEvent(c, old))
	return nil
}

// AcceptsTimeEntries reports whether time can be logged on the case
func (c *Case) AcceptsTimeEntries() bool {
	return c.Status.IsActive()
}

func (c *Case) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Event types
const (
	EventTypeCaseStatusChanged = "CaseStatusChanged"
	AggregateTypeCase          = "Case"
)

// CaseStatusChangedEvent is raised on every status transition
type CaseStatusChangedEvent struct {
	shared.BaseDomainEvent
	Reference  string     `json:"reference"`
	Title      string     `json:"title"`
	From       CaseStatus `json:"from"`
	To         CaseStatus `json:"to"`
	AssignedTo *uuid.UUID `json:"assigned_to,omitempty"`
}

// NewCaseStatusChangedEvent builds the event
func NewCaseStatusChangedEvent(c *Case, from CaseStatus) *CaseStatusChangedEvent {
	return &CaseStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCaseStatusChanged, AggregateTypeCase, c.ID, c.FirmID),
		Reference:       c.Reference,
		Title:           c.Title,
		From:            from,
		To:              c.Status,
		AssignedTo:      c.AssignedTo,
	}
}
