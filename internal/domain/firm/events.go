package firm

import (
	"github.com/lexdesk/backend/internal/domain/shared"
)

// Event types published by the firm aggregate
const (
	EventTypeFirmRegistered        = "FirmRegistered"
	EventTypeSubscriptionActivated = "SubscriptionActivated"
	EventTypeSubscriptionExpired   = "SubscriptionExpired"
	EventTypePlanChanged           = "PlanChanged"

	AggregateTypeFirm = "Firm"
)

// FirmRegisteredEvent is raised when a firm signs up
type FirmRegisteredEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewFirmRegisteredEvent builds a FirmRegisteredEvent
func NewFirmRegisteredEvent(f *Firm) *FirmRegisteredEvent {
	return &FirmRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFirmRegistered, AggregateTypeFirm, f.ID, f.ID),
		Name:            f.Name,
	}
}

// SubscriptionActivatedEvent is raised after a paid period is applied
type SubscriptionActivatedEvent struct {
	shared.BaseDomainEvent
	Plan   Plan `json:"plan"`
	Months int  `json:"months"`
}

// NewSubscriptionActivatedEvent builds a SubscriptionActivatedEvent
func NewSubscriptionActivatedEvent(f *Firm, months int) *SubscriptionActivatedEvent {
	return &SubscriptionActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionActivated, AggregateTypeFirm, f.ID, f.ID),
		Plan:            f.Plan,
		Months:          months,
	}
}

// SubscriptionExpiredEvent is raised when the sweeper expires a firm
type SubscriptionExpiredEvent struct {
	shared.BaseDomainEvent
	Plan Plan `json:"plan"`
}

// NewSubscriptionExpiredEvent builds a SubscriptionExpiredEvent
func NewSubscriptionExpiredEvent(f *Firm) *SubscriptionExpiredEvent {
	return &SubscriptionExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSubscriptionExpired, AggregateTypeFirm, f.ID, f.ID),
		Plan:            f.Plan,
	}
}

// PlanChangedEvent is raised on an upgrade or downgrade
type PlanChangedEvent struct {
	shared.BaseDomainEvent
	From Plan `json:"from"`
	To   Plan `json:"to"`
}

// NewPlanChangedEvent builds a PlanChangedEvent
func NewPlanChangedEvent(f *Firm, from Plan) *PlanChangedEvent {
	return &PlanChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanChanged, AggregateTypeFirm, f.ID, f.ID),
		From:            from,
		To:              f.Plan,
	}
}
