// Package payment models subscription payments, payment transactions and
// the mobile-money gateways that settle them.
package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Provider identifies a payment gateway
type Provider string

const (
	ProviderMTNMoMo     Provider = "mtn_momo"
	ProviderOrangeMoney Provider = "orange_money"
	ProviderCinetPay    Provider = "cinetpay"
	// ProviderStripe takes card payments through Stripe Checkout
	ProviderStripe Provider = "stripe"
	// ProviderManual records payments collected outside any gateway
	ProviderManual Provider = "manual"
)

// Method is how the provider collects money
func (p Provider) Method() Method {
	if p == ProviderStripe {
		return MethodCard
	}
	return MethodMobileMoney
}

// Method of payment
type Method string

const (
	MethodMobileMoney  Method = "mobile_money"
	MethodCash         Method = "cash"
	MethodBankTransfer Method = "bank_transfer"
	MethodCard         Method = "card"
	MethodCheque       Method = "cheque"
)

// IsValid reports whether m is known
func (m Method) IsValid() bool {
	switch m {
	case MethodMobileMoney, MethodCash, MethodBankTransfer, MethodCard, MethodCheque:
		return true
	}
	return false
}

// Status of a payment or transaction
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// IsFinal reports whether no further transition is possible
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// InFlightWindow is how long an unsettled payment blocks a new attempt.
// Payers who abandon the USSD prompt leave payments pending forever.
const InFlightWindow = 30 * time.Minute

// InFlight reports whether the payment still waits on the payer or gateway
func (s Status) InFlight() bool {
	return s == StatusPending || s == StatusProcessing
}

// Purpose of a transaction
type Purpose string

const (
	PurposeSubscription Purpose = "subscription"
	PurposeInvoice      Purpose = "invoice"
)

// SubscriptionPayment is a firm paying for a plan period
type SubscriptionPayment struct {
	shared.FirmAggregateRoot
	Plan          firm.Plan
	Months        int
	Amount        decimal.Decimal
	Currency      string
	Provider      Provider
	Phone         string
	Status        Status
	TransactionID *uuid.UUID
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	PaidAt        *time.Time
	FailureReason string
}

// NewSubscriptionPayment creates a pending payment. Amount and plan rules
// are enforced by ValidationService before this is called.
func NewSubscriptionPayment(firmID uuid.UUID, plan firm.Plan, months int, amount decimal.Decimal, currency string, provider Provider, phone string) *SubscriptionPayment {
	return &SubscriptionPayment{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Plan:              plan,
		Months:            months,
		Amount:            amount,
		Currency:          strings.ToUpper(currency),
		Provider:          provider,
		Phone:             phone,
		Status:            StatusPending,
	}
}

// AttachTransaction links the gateway transaction row
func (p *SubscriptionPayment) AttachTransaction(txID uuid.UUID) {
	p.TransactionID = &txID
	p.touch()
}

// MarkProcessing records that the payer was prompted
func (p *SubscriptionPayment) MarkProcessing() error {
	if p.Status != StatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending payments can move to processing")
	}
	p.Status = StatusProcessing
	p.touch()
	return nil
}

// Complete settles the payment for the given subscription period
func (p *SubscriptionPayment) Complete(periodStart, periodEnd, paidAt time.Time) error {
	if !p.Status.InFlight() {
		return shared.NewDomainError("INVALID_STATE", "Payment is already settled")
	}
	p.Status = StatusCompleted
	p.PeriodStart = &periodStart
	p.PeriodEnd = &periodEnd
	p.PaidAt = &paidAt
	p.FailureReason = ""
	p.touch()
	p.AddDomainEvent(NewSubscriptionPaymentCompletedEvent(p))
	return nil
}

// Fail marks the payment as failed
func (p *SubscriptionPayment) Fail(reason string) error {
	if !p.Status.InFlight() {
		return shared.NewDomainError("INVALID_STATE", "Payment is already settled")
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.touch()
	p.AddDomainEvent(NewSubscriptionPaymentFailedEvent(p))
	return nil
}

// Cancel abandons an in-flight payment
func (p *SubscriptionPayment) Cancel() error {
	if !p.Status.InFlight() {
		return shared.NewDomainError("INVALID_STATE", "Payment is already settled")
	}
	p.Status = StatusCancelled
	p.touch()
	return nil
}

func (p *SubscriptionPayment) touch() {
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Transaction is a single money movement, either through a gateway or
// recorded manually against an invoice
type Transaction struct {
	shared.FirmAggregateRoot
	Purpose               Purpose
	InvoiceID             *uuid.UUID
	SubscriptionPaymentID *uuid.UUID
	Provider              Provider
	Method                Method
	Amount                decimal.Decimal
	Currency              string
	Status                Status
	// ExternalID is the reference we send to the gateway
	ExternalID string
	// ProviderReference is the gateway's own identifier
	ProviderReference string
	PayerPhone        string
	PaymentURL        string
	FailureReason     string
	Notes             string
	CompletedAt       *time.Time
}

// NewTransaction validates and creates a pending transaction
func NewTransaction(firmID uuid.UUID, purpose Purpose, provider Provider, method Method, amount decimal.Decimal, currency string) (*Transaction, error) {
	if purpose != PurposeSubscription && purpose != PurposeInvoice {
		return nil, shared.NewDomainError("INVALID_PURPOSE", "Unknown transaction purpose")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", "Unknown payment method")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Amount cannot be negative")
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	tx := &Transaction{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Purpose:           purpose,
		Provider:          provider,
		Method:            method,
		Amount:            amount,
		Currency:          strings.ToUpper(currency),
		Status:            StatusPending,
	}
	tx.ExternalID = tx.ID.String()
	return tx, nil
}

// ForSubscription links the transaction to a subscription payment
func (t *Transaction) ForSubscription(paymentID uuid.UUID) {
	t.SubscriptionPaymentID = &paymentID
}

// ForInvoice links the transaction to an invoice
func (t *Transaction) ForInvoice(invoiceID uuid.UUID) {
	t.InvoiceID = &invoiceID
}

// Initiated records what the gateway returned on initiation
func (t *Transaction) Initiated(providerRef, paymentURL string) {
	if providerRef != "" {
		t.ProviderReference = providerRef
	}
	t.PaymentURL = paymentURL
	if t.Status == StatusPending {
		t.Status = StatusProcessing
	}
	t.touch()
}

// Complete marks the transaction completed
func (t *Transaction) Complete(at time.Time) error {
	if t.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already settled")
	}
	t.Status = StatusCompleted
	t.CompletedAt = &at
	t.touch()
	return nil
}

// Fail marks the transaction failed
func (t *Transaction) Fail(reason string) error {
	if t.Status.IsFinal() {
		return shared.NewDomainError("INVALID_STATE", "Transaction is already settled")
	}
	t.Status = StatusFailed
	t.FailureReason = reason
	t.touch()
	return nil
}

func (t *Transaction) touch() {
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}
