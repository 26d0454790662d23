// Package firm holds the tenant aggregate (a law firm) and the profiles
// (users) that belong to it.
package firm

import (
	"strings"
	"time"

	"github.com/lexdesk/backend/internal/domain/shared"
)

// Plan identifies a subscription tier
type Plan string

const (
	PlanTrial        Plan = "trial"
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

// IsValid reports whether p is a known plan
func (p Plan) IsValid() bool {
	switch p {
	case PlanTrial, PlanStarter, PlanProfessional, PlanEnterprise:
		return true
	}
	return false
}

// String returns the plan identifier
func (p Plan) String() string {
	return string(p)
}

// SubscriptionStatus is the stored subscription status of a firm
type SubscriptionStatus string

const (
	StatusTrial     SubscriptionStatus = "trial"
	StatusActive    SubscriptionStatus = "active"
	StatusExpired   SubscriptionStatus = "expired"
	StatusSuspended SubscriptionStatus = "suspended"
	StatusCancelled SubscriptionStatus = "cancelled"
)

// IsValid reports whether s is a known status
func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case StatusTrial, StatusActive, StatusExpired, StatusSuspended, StatusCancelled:
		return true
	}
	return false
}

// Locale of generated messages and documents
type Locale string

const (
	LocaleFR Locale = "fr"
	LocaleEN Locale = "en"
)

// DefaultCurrency is used when a firm does not set one
const DefaultCurrency = "XAF"

// Firm is the tenant aggregate root. All other records carry its ID as firm_id.
type Firm struct {
	shared.BaseAggregateRoot
	Name                  string
	Email                 string
	Phone                 string
	Address               string
	City                  string
	Country               string
	BarNumber             string
	LogoURL               string
	Locale                Locale
	Currency              string
	CaseReferencePrefix   string
	Plan                  Plan
	Status                SubscriptionStatus
	TrialEndsAt           *time.Time
	SubscriptionStartedAt *time.Time
	SubscriptionExpiresAt *time.Time
	SuspendedReason       string
}

// NewTrialFirm creates a firm on the trial plan ending trialDays from now
func NewTrialFirm(name, email string, trialDays int) (*Firm, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Firm name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Firm name cannot exceed 200 characters")
	}
	if trialDays <= 0 {
		return nil, shared.NewDomainError("INVALID_TRIAL", "Trial length must be positive")
	}

	trialEnd := time.Now().AddDate(0, 0, trialDays)
	f := &Firm{
		BaseAggregateRoot:   shared.NewBaseAggregateRoot(),
		Name:                name,
		Email:               strings.ToLower(strings.TrimSpace(email)),
		Locale:              LocaleFR,
		Currency:            DefaultCurrency,
		CaseReferencePrefix: "DOS",
		Plan:                PlanTrial,
		Status:              StatusTrial,
		TrialEndsAt:         &trialEnd,
	}
	f.AddDomainEvent(NewFirmRegisteredEvent(f))
	return f, nil
}

// IsTrial reports whether the firm is still on its trial
func (f *Firm) IsTrial() bool {
	return f.Status == StatusTrial || f.Plan == PlanTrial
}

// ExpiresAt returns the timestamp that ends current access:
// the trial end for trials, the subscription expiry otherwise.
func (f *Firm) ExpiresAt() *time.Time {
	if f.IsTrial() {
		return f.TrialEndsAt
	}
	return f.SubscriptionExpiresAt
}

// Update changes the firm's profile fields
func (f *Firm) Update(name, email, phone, address, city, country, barNumber string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Firm name cannot be empty")
	}
	f.Name = name
	f.Email = strings.ToLower(strings.TrimSpace(email))
	f.Phone = strings.TrimSpace(phone)
	f.Address = address
	f.City = city
	f.Country = country
	f.BarNumber = barNumber
	f.touch()
	return nil
}

// SetPreferences sets locale, currency and case reference prefix
func (f *Firm) SetPreferences(locale Locale, currency, casePrefix string) error {
	if locale != "" {
		if locale != LocaleFR && locale != LocaleEN {
			return shared.NewDomainError("INVALID_LOCALE", "Locale must be fr or en")
		}
		f.Locale = locale
	}
	if currency != "" {
		if len(currency) != 3 {
			return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
		}
		f.Currency = strings.ToUpper(currency)
	}
	if casePrefix != "" {
		f.CaseReferencePrefix = strings.ToUpper(strings.TrimSpace(casePrefix))
	}
	f.touch()
	return nil
}

// SetLogo sets the firm's logo URL
func (f *Firm) SetLogo(url string) {
	f.LogoURL = url
	f.touch()
}

// ActivateSubscription starts or extends a paid subscription.
// The new period starts at the later of now and the current expiry, so
// renewing early never loses paid days.
func (f *Firm) ActivateSubscription(plan Plan, months int, now time.Time) (start, end time.Time, err error) {
	if !plan.IsValid() || plan == PlanTrial {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_PLAN", "Plan cannot be purchased")
	}
	if months <= 0 {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_PERIOD", "Subscription period must be positive")
	}
	if f.Status == StatusCancelled {
		return time.Time{}, time.Time{}, shared.NewDomainError("FIRM_CANCELLED", "Cancelled firms cannot be renewed")
	}

	start = now
	if f.Status == StatusActive && f.Plan == plan && f.SubscriptionExpiresAt != nil && f.SubscriptionExpiresAt.After(now) {
		start = *f.SubscriptionExpiresAt
	}
	end = start.AddDate(0, months, 0)

	f.Plan = plan
	f.Status = StatusActive
	if f.SubscriptionStartedAt == nil || f.SubscriptionExpiresAt == nil || f.SubscriptionExpiresAt.Before(now) {
		started := start
		f.SubscriptionStartedAt = &started
	}
	f.SubscriptionExpiresAt = &end
	f.SuspendedReason = ""
	f.touch()

	f.AddDomainEvent(NewSubscriptionActivatedEvent(f, months))
	return start, end, nil
}

// ChangePlan switches plan without touching the paid period
func (f *Firm) ChangePlan(plan Plan) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Invalid plan")
	}
	if plan == PlanTrial && !f.IsTrial() {
		return shared.NewDomainError("INVALID_PLAN", "Cannot return to the trial plan")
	}
	if f.Plan == plan {
		return nil
	}
	old := f.Plan
	f.Plan = plan
	f.touch()
	f.AddDomainEvent(NewPlanChangedEvent(f, old))
	return nil
}

// MarkExpired records that the subscription ran out (grace included)
func (f *Firm) MarkExpired() error {
	if f.Status == StatusExpired {
		return nil
	}
	if f.Status != StatusActive && f.Status != StatusTrial {
		return shared.NewDomainError("INVALID_STATE", "Only active or trial subscriptions can expire")
	}
	f.Status = StatusExpired
	f.touch()
	f.AddDomainEvent(NewSubscriptionExpiredEvent(f))
	return nil
}

// Suspend blocks the firm regardless of its paid period
func (f *Firm) Suspend(reason string) error {
	if f.Status == StatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Firm is already suspended")
	}
	if f.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cancelled firms cannot be suspended")
	}
	f.Status = StatusSuspended
	f.SuspendedReason = reason
	f.touch()
	return nil
}

// Reactivate lifts a suspension; the status is derived from the stored dates
func (f *Firm) Reactivate(now time.Time) error {
	if f.Status != StatusSuspended {
		return shared.NewDomainError("INVALID_STATE", "Only suspended firms can be reactivated")
	}
	switch {
	case f.Plan == PlanTrial:
		f.Status = StatusTrial
	case f.SubscriptionExpiresAt != nil && f.SubscriptionExpiresAt.Before(now):
		f.Status = StatusExpired
	default:
		f.Status = StatusActive
	}
	f.SuspendedReason = ""
	f.touch()
	return nil
}

// Cancel ends the relationship with the firm
func (f *Firm) Cancel() error {
	if f.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Firm is already cancelled")
	}
	f.Status = StatusCancelled
	f.touch()
	return nil
}

func (f *Firm) touch() {
	f.UpdatedAt = time.Now()
	f.IncrementVersion()
}
