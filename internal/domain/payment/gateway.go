package payment

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrGatewayNotConfigured   = errors.New("payment: gateway not configured")
	ErrGatewayUnavailable     = errors.New("payment: gateway temporarily unavailable")
	ErrGatewayRequestFailed   = errors.New("payment: gateway request failed")
	ErrGatewayInvalidResponse = errors.New("payment: invalid gateway response")
	ErrGatewayInvalidCallback = errors.New("payment: invalid callback")
)

// GatewayStatus is the provider-agnostic outcome of a payment
type GatewayStatus string

const (
	GatewayStatusPending    GatewayStatus = "PENDING"
	GatewayStatusSuccessful GatewayStatus = "SUCCESSFUL"
	GatewayStatusFailed     GatewayStatus = "FAILED"
	GatewayStatusCancelled  GatewayStatus = "CANCELLED"
)

// ToStatus maps a gateway outcome to a payment status
func (s GatewayStatus) ToStatus() Status {
	switch s {
	case GatewayStatusSuccessful:
		return StatusCompleted
	case GatewayStatusFailed:
		return StatusFailed
	case GatewayStatusCancelled:
		return StatusCancelled
	default:
		return StatusProcessing
	}
}

// InitiateRequest asks a gateway to collect money from a payer
type InitiateRequest struct {
	// ExternalID is our reference, echoed back in callbacks
	ExternalID    string
	Amount        decimal.Decimal
	Currency      string
	PayerPhone    string
	Description   string
	CallbackURL   string
	ReturnURL     string
	CustomerName  string
	CustomerEmail string
}

// Validate checks the fields every gateway needs
func (r *InitiateRequest) Validate() error {
	if r.ExternalID == "" {
		return fmt.Errorf("%w: missing external id", ErrGatewayRequestFailed)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrGatewayRequestFailed)
	}
	if r.Currency == "" {
		return fmt.Errorf("%w: missing currency", ErrGatewayRequestFailed)
	}
	return nil
}

// InitiateResponse is what a gateway returns when collection starts
type InitiateResponse struct {
	Provider          Provider
	ProviderReference string
	// PaymentURL is set by redirect-based gateways
	PaymentURL  string
	Status      GatewayStatus
	RawResponse string
}

// StatusResponse is the result of a status query or a callback
type StatusResponse struct {
	Provider          Provider
	ExternalID        string
	ProviderReference string
	Status            GatewayStatus
	Amount            decimal.Decimal
	Currency          string
	PayerPhone        string
	Reason            string
	PaidAt            *time.Time
	RawResponse       string
}

// Gateway is implemented by each mobile-money provider adapter
type Gateway interface {
	Provider() Provider
	InitiatePayment(ctx context.Context, req *InitiateRequest) (*InitiateResponse, error)
	// QueryPayment looks a payment up by the references the adapter returned
	QueryPayment(ctx context.Context, externalID, providerReference string) (*StatusResponse, error)
	// ParseCallback verifies and decodes a provider notification
	ParseCallback(ctx context.Context, payload []byte, signature string) (*StatusResponse, error)
}

// GatewayRegistry maps providers to configured gateways
type GatewayRegistry struct {
	gateways map[Provider]Gateway
}

// NewGatewayRegistry registers the given gateways
func NewGatewayRegistry(gateways ...Gateway) *GatewayRegistry {
	r := &GatewayRegistry{gateways: make(map[Provider]Gateway, len(gateways))}
	for _, g := range gateways {
		r.Register(g)
	}
	return r
}

// Register adds or replaces a gateway
func (r *GatewayRegistry) Register(g Gateway) {
	if g != nil {
		r.gateways[g.Provider()] = g
	}
}

// Get returns the gateway for provider
func (r *GatewayRegistry) Get(provider Provider) (Gateway, error) {
	g, ok := r.gateways[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGatewayNotConfigured, provider)
	}
	return g, nil
}

// Has reports whether provider is registered
func (r *GatewayRegistry) Has(provider Provider) bool {
	_, ok := r.gateways[provider]
	return ok
}

// Providers lists registered providers in a stable order
func (r *GatewayRegistry) Providers() []Provider {
	out := make([]Provider, 0, len(r.gateways))
	for p := range r.gateways {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
