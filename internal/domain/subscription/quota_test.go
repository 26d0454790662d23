package subscription

import (
	"errors"
	"testing"

	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanAdd(t *testing.T) {
	tests := []struct {
		name  string
		used  int64
		limit int
		want  bool
	}{
		{"below limit", 4, 5, true},
		{"at limit", 5, 5, false},
		{"above limit", 7, 5, false},
		{"zero limit", 0, 0, false},
		{"unlimited", 1_000_000, Unlimited, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAdd(tt.used, tt.limit))
		})
	}
}

func TestCanAddN(t *testing.T) {
	assert.True(t, CanAddN(3, 2, 5))
	assert.False(t, CanAddN(3, 3, 5))
	assert.True(t, CanAddN(3, 300, Unlimited))
}

func TestRemainingAndPercent(t *testing.T) {
	assert.Equal(t, int64(3), Remaining(7, 10))
	assert.Equal(t, int64(0), Remaining(12, 10))
	assert.Equal(t, int64(Unlimited), Remaining(12, Unlimited))

	assert.InDelta(t, 70.0, UsagePercent(7, 10), 0.001)
	assert.Equal(t, 0.0, UsagePercent(7, Unlimited))
	assert.Equal(t, 100.0, UsagePercent(1, 0))
}

func TestQuotaCheck_Err(t *testing.T) {
	ok := Check(ResourceClients, 9, 10)
	assert.True(t, ok.CanAdd)
	assert.NoError(t, ok.Err())

	full := Check(ResourceClients, 10, 10)
	assert.False(t, full.CanAdd)
	err := full.Err()
	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrQuotaExceeded))
	assert.Contains(t, err.Error(), "clients (10/10)")

	unl := Check(ResourceCases, 5000, Unlimited)
	assert.True(t, unl.Unlimited)
	assert.NoError(t, unl.Err())
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()

	all := c.All()
	require.Len(t, all, 4)
	assert.Equal(t, firm.PlanTrial, all[0].Plan)
	assert.Equal(t, firm.PlanEnterprise, all[3].Plan)

	pro, err := c.Get(firm.PlanProfessional)
	require.NoError(t, err)
	assert.True(t, pro.HasFeature(FeatureWhatsApp))
	assert.Equal(t, 10, pro.Limit(ResourceUsers))
	assert.True(t, pro.Purchasable())

	starter, _ := c.Get(firm.PlanStarter)
	assert.False(t, starter.HasFeature(FeatureWhatsApp))

	trial, _ := c.Get(firm.PlanTrial)
	assert.False(t, trial.Purchasable())

	ent, _ := c.Get(firm.PlanEnterprise)
	assert.Equal(t, Unlimited, ent.Limit(ResourceClients))

	_, err = c.Get(firm.Plan("gold"))
	assert.Error(t, err)
}

func TestPlanDefinition_PriceFor(t *testing.T) {
	d := PlanDefinition{Plan: firm.PlanStarter, MonthlyPrice: decimal.NewFromInt(15000)}

	assert.True(t, decimal.NewFromInt(15000).Equal(d.PriceFor(1)))
	assert.True(t, decimal.NewFromInt(45000).Equal(d.PriceFor(3)))
	assert.True(t, decimal.NewFromInt(150000).Equal(d.PriceFor(12)), "annual billed as ten months")

	assert.True(t, IsAllowedPeriod(6))
	assert.False(t, IsAllowedPeriod(2))
}
