package subscription

import (
	"math"
	"time"

	"github.com/lexdesk/backend/internal/domain/firm"
)

// Policy holds the configurable date rules
type Policy struct {
	// GraceDays after expiry during which access is still permitted
	GraceDays int
	// ReminderDays before expiry at which a firm counts as expiring soon
	ReminderDays int
}

// DefaultPolicy returns a 7 day grace period and a 7 day reminder window
func DefaultPolicy() Policy {
	return Policy{GraceDays: 7, ReminderDays: 7}
}

// AccessLevel summarizes what a firm may do right now
type AccessLevel string

const (
	AccessFull    AccessLevel = "full"
	AccessGrace   AccessLevel = "grace"
	AccessBlocked AccessLevel = "blocked"
)

// BlockReason explains a blocked state
type BlockReason string

const (
	BlockNone      BlockReason = ""
	BlockExpired   BlockReason = "expired"
	BlockSuspended BlockReason = "suspended"
	BlockCancelled BlockReason = "cancelled"
	BlockNoPeriod  BlockReason = "no_period"
)

// AccessState is derived from a firm's stored timestamps at a given instant
type AccessState struct {
	Plan               firm.Plan
	Status             firm.SubscriptionStatus
	Level              AccessLevel
	Reason             BlockReason
	HasAccess          bool
	IsTrial            bool
	IsExpired          bool
	InGracePeriod      bool
	ExpiringSoon       bool
	ExpiresAt          *time.Time
	GraceEndsAt        *time.Time
	DaysRemaining      int
	GraceDaysRemaining int
	EvaluatedAt        time.Time
}

// IsBlocked reports whether access is denied
func (s AccessState) IsBlocked() bool {
	return s.Level == AccessBlocked
}

// Evaluate computes the access state of f at now.
//
// Expiry is strict: a firm is expired only once now is after expires_at.
// The grace boundary is inclusive: at exactly grace_ends_at access is
// still granted. Trials do not get a grace period.
func Evaluate(f *firm.Firm, now time.Time, policy Policy) AccessState {
	state := AccessState{
		Plan:        f.Plan,
		Status:      f.Status,
		IsTrial:     f.IsTrial(),
		EvaluatedAt: now,
	}

	switch f.Status {
	case firm.StatusSuspended:
		return state.block(BlockSuspended)
	case firm.StatusCancelled:
		return state.block(BlockCancelled)
	}

	expiresAt := f.ExpiresAt()
	if expiresAt == nil {
		if state.IsTrial {
			return state.block(BlockNoPeriod)
		}
		// paid plan without an end date
		state.Level = AccessFull
		state.HasAccess = true
		return state
	}

	exp := *expiresAt
	state.ExpiresAt = &exp
	state.IsExpired = IsExpired(exp, now)

	if !state.IsExpired {
		state.DaysRemaining = daysUntil(now, exp)
		state.ExpiringSoon = state.DaysRemaining <= policy.ReminderDays
		state.Level = AccessFull
		state.HasAccess = true
		return state
	}

	graceDays := policy.GraceDays
	if state.IsTrial || graceDays < 0 {
		graceDays = 0
	}
	graceEnd := GraceEnd(exp, graceDays)
	state.GraceEndsAt = &graceEnd
	if graceDays > 0 && InGracePeriod(exp, now, graceDays) {
		state.InGracePeriod = true
		state.GraceDaysRemaining = daysUntil(now, graceEnd)
		state.Level = AccessGrace
		state.HasAccess = true
		return state
	}
	return state.block(BlockExpired)
}

func (s AccessState) block(reason BlockReason) AccessState {
	s.Level = AccessBlocked
	s.Reason = reason
	s.HasAccess = false
	s.InGracePeriod = false
	s.GraceDaysRemaining = 0
	return s
}

// IsExpired reports now > expiresAt
func IsExpired(expiresAt, now time.Time) bool {
	return now.After(expiresAt)
}

// GraceEnd returns the last instant of the grace period
func GraceEnd(expiresAt time.Time, graceDays int) time.Time {
	return expiresAt.AddDate(0, 0, graceDays)
}

// InGracePeriod reports expiresAt < now <= expiresAt + graceDays
func InGracePeriod(expiresAt, now time.Time, graceDays int) bool {
	if graceDays <= 0 || !IsExpired(expiresAt, now) {
		return false
	}
	return !now.After(GraceEnd(expiresAt, graceDays))
}

// daysUntil rounds the remaining time up to whole days, never below zero
func daysUntil(now, t time.Time) int {
	d := t.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
