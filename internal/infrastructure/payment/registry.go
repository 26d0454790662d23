package payment

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

// NewRegistry builds adapters for every enabled provider
func NewRegistry(cfg config.PaymentConfig, httpClient *http.Client, logger *zap.Logger) (*domain.GatewayRegistry, error) {
	registry := domain.NewGatewayRegistry()

	if cfg.MTN.Enabled {
		g, err := NewMTNMoMoAdapter(cfg.MTN, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to configure MTN MoMo: %w", err)
		}
		registry.Register(g)
	}
	if cfg.Orange.Enabled {
		g, err := NewOrangeMoneyAdapter(cfg.Orange, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to configure Orange Money: %w", err)
		}
		registry.Register(g)
	}
	if cfg.CinetPay.Enabled {
		g, err := NewCinetPayAdapter(cfg.CinetPay, httpClient)
		if err != nil {
			return nil, fmt.Errorf("failed to configure CinetPay: %w", err)
		}
		if cfg.CinetPay.SecretKey == "" {
			logger.Warn("CinetPay secret key not set; notifications are not signature-checked")
		}
		registry.Register(g)
	}
	if cfg.Stripe.Enabled {
		g, err := NewStripeAdapter(cfg.Stripe, httpClient, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to configure Stripe: %w", err)
		}
		registry.Register(g)
	}

	providers := registry.Providers()
	if len(providers) == 0 {
		logger.Warn("No payment gateway enabled; subscription payments are unavailable")
	} else {
		logger.Info("Payment gateways configured", zap.Any("providers", providers))
	}
	return registry, nil
}
