package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// InitiateSubscriptionPaymentRequest starts a mobile-money payment for a plan
type InitiateSubscriptionPaymentRequest struct {
	Plan     string          `json:"plan" binding:"required,oneof=starter professional enterprise"`
	Months   int             `json:"months" binding:"required,oneof=1 3 6 12"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency string          `json:"currency" binding:"required,len=3"`
	Provider string          `json:"provider" binding:"required,oneof=mtn_momo orange_money cinetpay stripe"`
	Phone    string          `json:"phone" binding:"required_unless=Provider stripe,omitempty,max=20,msisdn"`
}

// RecordInvoicePaymentRequest records money collected outside any gateway
type RecordInvoicePaymentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Method    string          `json:"method" binding:"required,oneof=mobile_money cash bank_transfer card cheque"`
	PaidAt    *time.Time      `json:"paid_at"`
	Reference string          `json:"reference" binding:"max=100"`
	Phone     string          `json:"phone" binding:"omitempty,max=20"`
	Notes     string          `json:"notes" binding:"max=1000"`
}

// SubscriptionPaymentResponse is a subscription payment in API responses
type SubscriptionPaymentResponse struct {
	ID            uuid.UUID       `json:"id"`
	FirmID        uuid.UUID       `json:"firm_id"`
	Plan          string          `json:"plan"`
	Months        int             `json:"months"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Provider      string          `json:"provider"`
	Phone         string          `json:"phone"`
	Status        string          `json:"status"`
	TransactionID *uuid.UUID      `json:"transaction_id,omitempty"`
	PaymentURL    string          `json:"payment_url,omitempty"`
	PeriodStart   *time.Time      `json:"period_start,omitempty"`
	PeriodEnd     *time.Time      `json:"period_end,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToSubscriptionPaymentResponse converts a domain payment; tx may be nil
func ToSubscriptionPaymentResponse(p *payment.SubscriptionPayment, tx *payment.Transaction) SubscriptionPaymentResponse {
	resp := SubscriptionPaymentResponse{
		ID:            p.ID,
		FirmID:        p.FirmID,
		Plan:          string(p.Plan),
		Months:        p.Months,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Provider:      string(p.Provider),
		Phone:         p.Phone,
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		PeriodStart:   p.PeriodStart,
		PeriodEnd:     p.PeriodEnd,
		PaidAt:        p.PaidAt,
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if tx != nil {
		resp.PaymentURL = tx.PaymentURL
	}
	return resp
}

// TransactionResponse is a payment transaction in API responses
type TransactionResponse struct {
	ID                    uuid.UUID       `json:"id"`
	FirmID                uuid.UUID       `json:"firm_id"`
	Purpose               string          `json:"purpose"`
	InvoiceID             *uuid.UUID      `json:"invoice_id,omitempty"`
	SubscriptionPaymentID *uuid.UUID      `json:"subscription_payment_id,omitempty"`
	Provider              string          `json:"provider"`
	Method                string          `json:"method"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Status                string          `json:"status"`
	ExternalID            string          `json:"external_id"`
	ProviderReference     string          `json:"provider_reference,omitempty"`
	PayerPhone            string          `json:"payer_phone,omitempty"`
	PaymentURL            string          `json:"payment_url,omitempty"`
	FailureReason         string          `json:"failure_reason,omitempty"`
	Notes                 string          `json:"notes,omitempty"`
	CompletedAt           *time.Time      `json:"completed_at,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a domain transaction
func ToTransactionResponse(t *payment.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                    t.ID,
		FirmID:                t.FirmID,
		Purpose:               string(t.Purpose),
		InvoiceID:             t.InvoiceID,
		SubscriptionPaymentID: t.SubscriptionPaymentID,
		Provider:              string(t.Provider),
		Method:                string(t.Method),
		Amount:                t.Amount,
		Currency:              t.Currency,
		Status:                string(t.Status),
		ExternalID:            t.ExternalID,
		ProviderReference:     t.ProviderReference,
		PayerPhone:            t.PayerPhone,
		PaymentURL:            t.PaymentURL,
		FailureReason:         t.FailureReason,
		Notes:                 t.Notes,
		CompletedAt:           t.CompletedAt,
		CreatedAt:             t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of transactions
func ToTransactionResponses(txs []payment.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i := range txs {
		out[i] = ToTransactionResponse(&txs[i])
	}
	return out
}

// CallbackResult reports what a gateway callback changed
type CallbackResult struct {
	Provider         string `json:"provider"`
	ExternalID       string `json:"external_id"`
	Status           string `json:"status"`
	AlreadyProcessed bool   `json:"already_processed"`
}

// ProvidersResponse lists the configured gateways
type ProvidersResponse struct {
	Providers []string `json:"providers"`
	Currency  string   `json:"currency"`
}
