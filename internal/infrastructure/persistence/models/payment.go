package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// SubscriptionPaymentModel is a plan purchase attempt
type SubscriptionPaymentModel struct {
	FirmAggregateModel
	Plan          firm.Plan        `gorm:"type:varchar(20);not null"`
	Months        int              `gorm:"not null"`
	Amount        decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Currency      string           `gorm:"type:varchar(3);not null"`
	Provider      payment.Provider `gorm:"type:varchar(20);not null"`
	Phone         string           `gorm:"type:varchar(20)"`
	Status        payment.Status   `gorm:"type:varchar(20);not null;index"`
	TransactionID *uuid.UUID       `gorm:"type:uuid"`
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	PaidAt        *time.Time
	FailureReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (SubscriptionPaymentModel) TableName() string {
	return "subscription_payments"
}

// ToDomain converts the persistence model to a domain SubscriptionPayment
func (m *SubscriptionPaymentModel) ToDomain() *payment.SubscriptionPayment {
	return &payment.SubscriptionPayment{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		Plan:              m.Plan,
		Months:            m.Months,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Provider:          m.Provider,
		Phone:             m.Phone,
		Status:            m.Status,
		TransactionID:     m.TransactionID,
		PeriodStart:       m.PeriodStart,
		PeriodEnd:         m.PeriodEnd,
		PaidAt:            m.PaidAt,
		FailureReason:     m.FailureReason,
	}
}

// SubscriptionPaymentModelFromDomain creates a new persistence model from the domain value
func SubscriptionPaymentModelFromDomain(p *payment.SubscriptionPayment) *SubscriptionPaymentModel {
	m := &SubscriptionPaymentModel{
		Plan:          p.Plan,
		Months:        p.Months,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Provider:      p.Provider,
		Phone:         p.Phone,
		Status:        p.Status,
		TransactionID: p.TransactionID,
		PeriodStart:   p.PeriodStart,
		PeriodEnd:     p.PeriodEnd,
		PaidAt:        p.PaidAt,
		FailureReason: p.FailureReason,
	}
	m.FromDomainFirmAggregateRoot(p.FirmAggregateRoot)
	return m
}

// TransactionModel is a money movement through a provider or recorded by hand
type TransactionModel struct {
	FirmAggregateModel
	Purpose               payment.Purpose  `gorm:"type:varchar(20);not null"`
	InvoiceID             *uuid.UUID       `gorm:"type:uuid;index"`
	SubscriptionPaymentID *uuid.UUID       `gorm:"type:uuid;index"`
	Provider              payment.Provider `gorm:"type:varchar(20);not null;uniqueIndex:idx_transaction_provider_external,priority:1"`
	Method                payment.Method   `gorm:"type:varchar(20);not null"`
	Amount                decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	Currency              string           `gorm:"type:varchar(3);not null"`
	Status                payment.Status   `gorm:"type:varchar(20);not null;index"`
	ExternalID            string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_transaction_provider_external,priority:2"`
	ProviderReference     string           `gorm:"type:varchar(200);index"`
	PayerPhone            string           `gorm:"type:varchar(20)"`
	PaymentURL            string           `gorm:"type:varchar(1000)"`
	FailureReason         string           `gorm:"type:text"`
	Notes                 string           `gorm:"type:text"`
	CompletedAt           *time.Time
}

// TableName returns the table name for GORM
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts the persistence model to a domain Transaction
func (m *TransactionModel) ToDomain() *payment.Transaction {
	return &payment.Transaction{
		FirmAggregateRoot:     m.ToDomainFirmAggregateRoot(),
		Purpose:               m.Purpose,
		InvoiceID:             m.InvoiceID,
		SubscriptionPaymentID: m.SubscriptionPaymentID,
		Provider:              m.Provider,
		Method:                m.Method,
		Amount:                m.Amount,
		Currency:              m.Currency,
		Status:                m.Status,
		ExternalID:            m.ExternalID,
		ProviderReference:     m.ProviderReference,
		PayerPhone:            m.PayerPhone,
		PaymentURL:            m.PaymentURL,
		FailureReason:         m.FailureReason,
		Notes:                 m.Notes,
		CompletedAt:           m.CompletedAt,
	}
}

// TransactionModelFromDomain creates a new persistence model from a domain Transaction
func TransactionModelFromDomain(t *payment.Transaction) *TransactionModel {
	m := &TransactionModel{
		Purpose:               t.Purpose,
		InvoiceID:             t.InvoiceID,
		SubscriptionPaymentID: t.SubscriptionPaymentID,
		Provider:              t.Provider,
		Method:                t.Method,
		Amount:                t.Amount,
		Currency:              t.Currency,
		Status:                t.Status,
		ExternalID:            t.ExternalID,
		ProviderReference:     t.ProviderReference,
		PayerPhone:            t.PayerPhone,
		PaymentURL:            t.PaymentURL,
		FailureReason:         t.FailureReason,
		Notes:                 t.Notes,
		CompletedAt:           t.CompletedAt,
	}
	m.FromDomainFirmAggregateRoot(t.FirmAggregateRoot)
	return m
}
