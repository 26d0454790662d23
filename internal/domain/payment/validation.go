package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/shopspring/decimal"
)

// InFlightChecker reports whether a firm already has an unsettled payment
type InFlightChecker interface {
	HasInFlight(ctx context.Context, firmID uuid.UUID) (bool, error)
}

// SubscriptionPaymentRequest is what a firm submits to pay for a plan
type SubscriptionPaymentRequest struct {
	FirmID   uuid.UUID
	Plan     firm.Plan
	Months   int
	Amount   decimal.Decimal
	Currency string
	Provider Provider
	Phone    string
}

// ValidatedPayment carries the normalized values of an accepted request
type ValidatedPayment struct {
	Plan     subscription.PlanDefinition
	Months   int
	Amount   decimal.Decimal
	Currency string
	Provider Provider
	Phone    string
	Operator Operator
}

// ValidationService checks subscription payment requests before any
// gateway is contacted
type ValidationService struct {
	catalog   *subscription.Catalog
	currency  string
	providers interface{ Has(Provider) bool }
	inFlight  InFlightChecker
}

// NewValidationService creates a validation service
func NewValidationService(catalog *subscription.Catalog, currency string, providers interface{ Has(Provider) bool }, inFlight InFlightChecker) *ValidationService {
	return &ValidationService{
		catalog:   catalog,
		currency:  strings.ToUpper(currency),
		providers: providers,
		inFlight:  inFlight,
	}
}

// ExpectedAmount is the price of plan for months, with the annual discount
func (s *ValidationService) ExpectedAmount(plan firm.Plan, months int) (decimal.Decimal, error) {
	def, err := s.catalog.Get(plan)
	if err != nil {
		return decimal.Zero, err
	}
	return def.PriceFor(months), nil
}

// Validate applies every rule in order and returns the first violation
func (s *ValidationService) Validate(ctx context.Context, req SubscriptionPaymentRequest) (*ValidatedPayment, error) {
	def, err := s.catalog.Get(req.Plan)
	if err != nil {
		return nil, invalid("Unknown plan %q", req.Plan)
	}
	if !def.Purchasable() {
		return nil, invalid("Plan %q cannot be purchased", req.Plan)
	}
	if !subscription.IsAllowedPeriod(req.Months) {
		return nil, invalid("Billing period must be one of %v months", subscription.AllowedPeriods)
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency != s.currency {
		return nil, invalid("Currency must be %s", s.currency)
	}
	expected := def.PriceFor(req.Months)
	if !req.Amount.Equal(expected) {
		return nil, invalid("Amount %s does not match the expected %s %s", req.Amount.String(), expected.String(), s.currency)
	}
	if req.Provider == ProviderManual || s.providers == nil || !s.providers.Has(req.Provider) {
		return nil, invalid("Payment provider %q is not available", req.Provider)
	}
	var (
		phone string
		op    Operator
	)
	if req.Provider.Method() == MethodMobileMoney {
		phone, err = NormalizeMSISDN(req.Phone)
		if err != nil {
			return nil, err
		}
		op = OperatorOf(phone)
		if !req.Provider.SupportsOperator(op) {
			return nil, invalid("Phone number %s cannot be charged through %s", phone, req.Provider)
		}
	}
	if s.inFlight != nil {
		busy, err := s.inFlight.HasInFlight(ctx, req.FirmID)
		if err != nil {
			return nil, fmt.Errorf("failed to check pending payments: %w", err)
		}
		if busy {
			return nil, invalid("Another payment is already in progress")
		}
	}
	return &ValidatedPayment{
		Plan:     def,
		Months:   req.Months,
		Amount:   expected,
		Currency: currency,
		Provider: req.Provider,
		Phone:    phone,
		Operator: op,
	}, nil
}

func invalid(format string, args ...any) error {
	return shared.NewDomainError(shared.ErrPaymentInvalid.Code, fmt.Sprintf(format, args...))
}
