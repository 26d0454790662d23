package subscription

import (
	"testing"
	"time"

	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidFirm(t *testing.T, plan firm.Plan, expiresAt time.Time) *firm.Firm {
	t.Helper()
	f, err := firm.NewTrialFirm("Cabinet Test", "test@cabinet.cm", 14)
	require.NoError(t, err)
	f.Plan = plan
	f.Status = firm.StatusActive
	f.SubscriptionExpiresAt = &expiresAt
	return f
}

func trialFirm(t *testing.T, endsAt time.Time) *firm.Firm {
	t.Helper()
	f, err := firm.NewTrialFirm("Cabinet Test", "test@cabinet.cm", 14)
	require.NoError(t, err)
	f.TrialEndsAt = &endsAt
	return f
}

func TestIsExpired(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	assert.False(t, IsExpired(exp, exp.Add(-time.Second)))
	assert.False(t, IsExpired(exp, exp), "expiry instant itself is not expired")
	assert.True(t, IsExpired(exp, exp.Add(time.Nanosecond)))
	assert.True(t, IsExpired(exp, exp.AddDate(0, 1, 0)))
}

func TestInGracePeriod(t *testing.T) {
	exp := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	graceEnd := exp.AddDate(0, 0, 7)

	tests := []struct {
		name string
		now  time.Time
		days int
		want bool
	}{
		{"before expiry", exp.Add(-time.Hour), 7, false},
		{"at expiry", exp, 7, false},
		{"just after expiry", exp.Add(time.Second), 7, true},
		{"middle of grace", exp.AddDate(0, 0, 3), 7, true},
		{"exactly at grace end", graceEnd, 7, true},
		{"just after grace end", graceEnd.Add(time.Nanosecond), 7, false},
		{"zero grace days", exp.Add(time.Second), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InGracePeriod(exp, tt.now, tt.days))
		})
	}
}

func TestEvaluate_PaidSubscription(t *testing.T) {
	exp := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	policy := Policy{GraceDays: 7, ReminderDays: 7}

	t.Run("active well before expiry", func(t *testing.T) {
		f := paidFirm(t, firm.PlanProfessional, exp)
		s := Evaluate(f, exp.AddDate(0, 0, -20), policy)

		assert.Equal(t, AccessFull, s.Level)
		assert.True(t, s.HasAccess)
		assert.False(t, s.IsExpired)
		assert.False(t, s.ExpiringSoon)
		assert.Equal(t, 20, s.DaysRemaining)
		assert.Nil(t, s.GraceEndsAt)
	})

	t.Run("expiring soon inside reminder window", func(t *testing.T) {
		f := paidFirm(t, firm.PlanStarter, exp)
		s := Evaluate(f, exp.Add(-36*time.Hour), policy)

		assert.Equal(t, AccessFull, s.Level)
		assert.True(t, s.ExpiringSoon)
		assert.Equal(t, 2, s.DaysRemaining, "partial days round up")
	})

	t.Run("grace period after expiry", func(t *testing.T) {
		f := paidFirm(t, firm.PlanStarter, exp)
		s := Evaluate(f, exp.Add(25*time.Hour), policy)

		assert.Equal(t, AccessGrace, s.Level)
		assert.True(t, s.HasAccess)
		assert.True(t, s.IsExpired)
		assert.True(t, s.InGracePeriod)
		assert.Equal(t, 0, s.DaysRemaining)
		assert.Equal(t, 6, s.GraceDaysRemaining)
		require.NotNil(t, s.GraceEndsAt)
		assert.Equal(t, exp.AddDate(0, 0, 7), *s.GraceEndsAt)
	})

	t.Run("blocked after grace", func(t *testing.T) {
		f := paidFirm(t, firm.PlanStarter, exp)
		s := Evaluate(f, exp.AddDate(0, 0, 7).Add(time.Second), policy)

		assert.Equal(t, AccessBlocked, s.Level)
		assert.Equal(t, BlockExpired, s.Reason)
		assert.False(t, s.HasAccess)
		assert.True(t, s.IsExpired)
		assert.False(t, s.InGracePeriod)
		assert.True(t, s.IsBlocked())
	})

	t.Run("no grace configured blocks right after expiry", func(t *testing.T) {
		f := paidFirm(t, firm.PlanStarter, exp)
		s := Evaluate(f, exp.Add(time.Minute), Policy{GraceDays: 0})
		assert.Equal(t, AccessBlocked, s.Level)
	})

	t.Run("paid plan without expiry has full access", func(t *testing.T) {
		f := paidFirm(t, firm.PlanEnterprise, exp)
		f.SubscriptionExpiresAt = nil
		s := Evaluate(f, exp, policy)
		assert.Equal(t, AccessFull, s.Level)
		assert.Nil(t, s.ExpiresAt)
	})
}

func TestEvaluate_Trial(t *testing.T) {
	end := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	policy := DefaultPolicy()

	t.Run("trial running", func(t *testing.T) {
		s := Evaluate(trialFirm(t, end), end.AddDate(0, 0, -10), policy)
		assert.Equal(t, AccessFull, s.Level)
		assert.True(t, s.IsTrial)
		assert.Equal(t, 10, s.DaysRemaining)
	})

	t.Run("trial has no grace", func(t *testing.T) {
		s := Evaluate(trialFirm(t, end), end.Add(time.Minute), policy)
		assert.Equal(t, AccessBlocked, s.Level)
		assert.Equal(t, BlockExpired, s.Reason)
		assert.False(t, s.InGracePeriod)
	})

	t.Run("trial without end date is blocked", func(t *testing.T) {
		f := trialFirm(t, end)
		f.TrialEndsAt = nil
		s := Evaluate(f, end, policy)
		assert.Equal(t, BlockNoPeriod, s.Reason)
	})
}

func TestEvaluate_SuspendedAndCancelled(t *testing.T) {
	exp := time.Now().AddDate(0, 1, 0)

	f := paidFirm(t, firm.PlanStarter, exp)
	f.Status = firm.StatusSuspended
	s := Evaluate(f, time.Now(), DefaultPolicy())
	assert.Equal(t, AccessBlocked, s.Level)
	assert.Equal(t, BlockSuspended, s.Reason)

	f.Status = firm.StatusCancelled
	s = Evaluate(f, time.Now(), DefaultPolicy())
	assert.Equal(t, BlockCancelled, s.Reason)
}
