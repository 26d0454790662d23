package shared

import (
	"github.com/google/uuid"
)

// AggregateRoot is the base interface for all aggregate roots
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides versioning and pending domain events
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent queues a domain event for publishing
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents drops the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// FirmAggregateRoot is an aggregate owned by a single firm (tenant).
// Every firm-scoped table carries firm_id.
type FirmAggregateRoot struct {
	BaseAggregateRoot
	FirmID    uuid.UUID
	CreatedBy *uuid.UUID
}

// NewFirmAggregateRoot creates a new firm-scoped aggregate root
func NewFirmAggregateRoot(firmID uuid.UUID) FirmAggregateRoot {
	return FirmAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		FirmID:            firmID,
	}
}

// SetCreatedBy records the profile that created the aggregate
func (f *FirmAggregateRoot) SetCreatedBy(profileID uuid.UUID) {
	if profileID == uuid.Nil {
		return
	}
	f.CreatedBy = &profileID
}

// BelongsTo reports whether the aggregate is owned by firmID
func (f *FirmAggregateRoot) BelongsTo(firmID uuid.UUID) bool {
	return f.FirmID == firmID
}
