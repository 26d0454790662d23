package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

func TestNewRegistry(t *testing.T) {
	cfg := config.PaymentConfig{
		MTN:      config.MTNMoMoConfig{Enabled: true, SubscriptionKey: "s", APIUser: "u", APIKey: "k"},
		CinetPay: config.CinetPayConfig{Enabled: true, APIKey: "k", SiteID: "1"},
	}
	r, err := NewRegistry(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []domain.Provider{domain.ProviderCinetPay, domain.ProviderMTNMoMo}, r.Providers())
	assert.False(t, r.Has(domain.ProviderOrangeMoney))

	cfg.Stripe = config.StripeConfig{Enabled: true, SecretKey: "sk_test", WebhookSecret: "whsec"}
	r, err = NewRegistry(cfg, nil, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, r.Has(domain.ProviderStripe))

	cfg.Orange.Enabled = true
	_, err = NewRegistry(cfg, nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrOrangeMissingCredentials)
}
