package persistence

import (
	"context"

	apppay "github.com/lexdesk/backend/internal/application/payment"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/invoice"
	"github.com/lexdesk/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// GormTransactionScope runs payment settlement inside one GORM transaction
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn in a transaction. Any error rolls everything back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos apppay.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Firms() firm.FirmRepository {
	return NewGormFirmRepository(r.tx)
}

func (r *gormTransactionalRepositories) SubscriptionPayments() payment.SubscriptionPaymentRepository {
	return NewGormSubscriptionPaymentRepository(r.tx)
}

func (r *gormTransactionalRepositories) Transactions() payment.TransactionRepository {
	return NewGormTransactionRepository(r.tx)
}

func (r *gormTransactionalRepositories) Invoices() invoice.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

var (
	_ apppay.TransactionScope          = (*GormTransactionScope)(nil)
	_ apppay.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
)
