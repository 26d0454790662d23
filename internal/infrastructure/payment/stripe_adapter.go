package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.uber.org/zap"

	domain "github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
)

var ErrStripeMissingCredentials = errors.New("stripe: missing secret key or webhook secret")

// Stripe charges these currencies in whole units
var stripeZeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// StripeAdapter takes card payments with a hosted Checkout Session. The
// session id is the provider reference; our external id travels as the
// client reference.
type StripeAdapter struct {
	cfg    config.StripeConfig
	api    *client.API
	logger *zap.Logger
	now    func() time.Time
}

// NewStripeAdapter validates cfg and builds a client that does not retry
func NewStripeAdapter(cfg config.StripeConfig, httpClient *http.Client, logger *zap.Logger) (*StripeAdapter, error) {
	if cfg.SecretKey == "" || cfg.WebhookSecret == "" {
		return nil, ErrStripeMissingCredentials
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		LeveledLogger:     logger.Named("stripe").Sugar(),
		MaxNetworkRetries: stripe.Int64(0),
		EnableTelemetry:   stripe.Bool(false),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(strings.TrimRight(cfg.BaseURL, "/"))
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	api := client.New(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &StripeAdapter{cfg: cfg, api: api, logger: logger, now: time.Now}, nil
}

// Provider returns the provider identifier
func (a *StripeAdapter) Provider() domain.Provider {
	return domain.ProviderStripe
}

// InitiatePayment opens a Checkout Session for a single line
func (a *StripeAdapter) InitiatePayment(ctx context.Context, req *domain.InitiateRequest) (*domain.InitiateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	successURL := req.ReturnURL
	if successURL == "" {
		successURL = a.cfg.SuccessURL
	}
	cancelURL := a.cfg.CancelURL
	if cancelURL == "" {
		cancelURL = successURL
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.ExternalID),
		SuccessURL:        stripe.String(successURL),
		CancelURL:         stripe.String(cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Currency)),
				UnitAmount: stripe.Int64(toMinorUnits(req.Amount, req.Currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(truncate(req.Description, 250)),
				},
			},
		}},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.AddMetadata("external_id", req.ExternalID)
	params.Context = ctx
	params.SetIdempotencyKey("checkout-" + req.ExternalID)

	session, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, stripeError(err)
	}
	raw, _ := json.Marshal(session)
	return &domain.InitiateResponse{
		Provider:          domain.ProviderStripe,
		ProviderReference: session.ID,
		PaymentURL:        session.URL,
		Status:            domain.GatewayStatusPending,
		RawResponse:       string(raw),
	}, nil
}

// QueryPayment retrieves the Checkout Session
func (a *StripeAdapter) QueryPayment(ctx context.Context, externalID, providerReference string) (*domain.StatusResponse, error) {
	if providerReference == "" {
		return nil, fmt.Errorf("%w: stripe lookup needs the session id", domain.ErrGatewayRequestFailed)
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	session, err := a.api.CheckoutSessions.Get(providerReference, params)
	if err != nil {
		return nil, stripeError(err)
	}
	out := a.statusOf(session, mapStripeSession(session))
	if out.ExternalID == "" {
		out.ExternalID = externalID
	}
	return out, nil
}

// ParseCallback verifies the Stripe-Signature header and reads the
// checkout.session.* event it carries
func (a *StripeAdapter) ParseCallback(_ context.Context, payload []byte, signature string) (*domain.StatusResponse, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, a.cfg.WebhookSecret,
		webhook.ConstructEventOptions{Tolerance: webhook.DefaultTolerance, IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: stripe: %v", domain.ErrGatewayInvalidCallback, err)
	}
	if event.Data == nil {
		return nil, fmt.Errorf("%w: stripe: event without data", domain.ErrGatewayInvalidCallback)
	}

	var status domain.GatewayStatus
	switch event.Type {
	case stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		status = domain.GatewayStatusSuccessful
	case stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		status = domain.GatewayStatusFailed
	case stripe.EventTypeCheckoutSessionExpired:
		status = domain.GatewayStatusCancelled
	case stripe.EventTypeCheckoutSessionCompleted:
	default:
		return nil, fmt.Errorf("%w: stripe: unsupported event %s", domain.ErrGatewayInvalidCallback, event.Type)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: stripe: %v", domain.ErrGatewayInvalidCallback, err)
	}
	if status == "" {
		status = mapStripeSession(&session)
	}
	a.logger.Debug("Stripe event verified",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("session_id", session.ID))
	return a.statusOf(&session, status), nil
}

func (a *StripeAdapter) statusOf(session *stripe.CheckoutSession, status domain.GatewayStatus) *domain.StatusResponse {
	externalID := session.ClientReferenceID
	if externalID == "" {
		externalID = session.Metadata["external_id"]
	}
	raw, _ := json.Marshal(session)
	currency := strings.ToUpper(string(session.Currency))
	out := &domain.StatusResponse{
		Provider:          domain.ProviderStripe,
		ExternalID:        externalID,
		ProviderReference: session.ID,
		Status:            status,
		Amount:            fromMinorUnits(session.AmountTotal, currency),
		Currency:          currency,
		RawResponse:       string(raw),
	}
	if session.CustomerDetails != nil {
		out.PayerPhone = session.CustomerDetails.Phone
	}
	switch status {
	case domain.GatewayStatusSuccessful:
		paid := a.now()
		out.PaidAt = &paid
	case domain.GatewayStatusCancelled:
		out.Reason = "Checkout session expired"
	case domain.GatewayStatusFailed:
		out.Reason = "Card payment failed"
	}
	return out
}

func mapStripeSession(s *stripe.CheckoutSession) domain.GatewayStatus {
	switch {
	case s.Status == stripe.CheckoutSessionStatusExpired:
		return domain.GatewayStatusCancelled
	case s.Status == stripe.CheckoutSessionStatusComplete &&
		(s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid || s.PaymentStatus == stripe.CheckoutSessionPaymentStatusNoPaymentRequired):
		return domain.GatewayStatusSuccessful
	default:
		return domain.GatewayStatusPending
	}
}

// stripeError sorts Stripe API errors into the gateway sentinels
func stripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode >= 500 || se.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%w: stripe: %s", domain.ErrGatewayUnavailable, se.Msg)
		}
		return fmt.Errorf("%w: stripe: %s %s", domain.ErrGatewayRequestFailed, se.Code, se.Msg)
	}
	return fmt.Errorf("%w: stripe: %v", domain.ErrGatewayUnavailable, err)
}

func toMinorUnits(amount decimal.Decimal, currency string) int64 {
	if stripeZeroDecimal[strings.ToUpper(currency)] {
		return amount.Ceil().IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(amount int64, currency string) decimal.Decimal {
	d := decimal.NewFromInt(amount)
	if stripeZeroDecimal[strings.ToUpper(currency)] {
		return d
	}
	return d.Shift(-2)
}

var _ domain.Gateway = (*StripeAdapter)(nil)
