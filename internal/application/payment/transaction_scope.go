package payment

import (
	"context"

	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/invoice"
	"github.com/lexdesk/backend/internal/domain/payment"
)

// TransactionScope runs payment settlement atomically. A completed payment
// touches the payment, its transaction and the firm; these are committed
// or rolled back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories share one database transaction
type TransactionalRepositories interface {
	Firms() firm.FirmRepository
	SubscriptionPayments() payment.SubscriptionPaymentRepository
	Transactions() payment.TransactionRepository
	Invoices() invoice.InvoiceRepository
}

// NoOpTransactionScope hands out the plain repositories. Used in tests
// and where the store has no transactions.
type NoOpTransactionScope struct {
	firms        firm.FirmRepository
	payments     payment.SubscriptionPaymentRepository
	transactions payment.TransactionRepository
	invoices     invoice.InvoiceRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	firms firm.FirmRepository,
	payments payment.SubscriptionPaymentRepository,
	transactions payment.TransactionRepository,
	invoices invoice.InvoiceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		firms:        firms,
		payments:     payments,
		transactions: transactions,
		invoices:     invoices,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

func (s *NoOpTransactionScope) Firms() firm.FirmRepository { return s.firms }

func (s *NoOpTransactionScope) SubscriptionPayments() payment.SubscriptionPaymentRepository {
	return s.payments
}

func (s *NoOpTransactionScope) Transactions() payment.TransactionRepository { return s.transactions }

func (s *NoOpTransactionScope) Invoices() invoice.InvoiceRepository { return s.invoices }

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
