package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSubscriptionPaymentRepository implements payment.SubscriptionPaymentRepository
type GormSubscriptionPaymentRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormSubscriptionPaymentRepository creates a new GormSubscriptionPaymentRepository
func NewGormSubscriptionPaymentRepository(db *gorm.DB) *GormSubscriptionPaymentRepository {
	return &GormSubscriptionPaymentRepository{db: db, now: time.Now}
}

// FindByID finds a subscription payment across firms; used by callbacks
func (r *GormSubscriptionPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.SubscriptionPayment, error) {
	var model models.SubscriptionPaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForFirm finds a subscription payment within a firm
func (r *GormSubscriptionPaymentRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*payment.SubscriptionPayment, error) {
	var model models.SubscriptionPaymentModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists the plan purchases of a firm, newest first
func (r *GormSubscriptionPaymentRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]payment.SubscriptionPayment, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SubscriptionPaymentModel{}).Where("firm_id = ?", firmID)
	if status, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}

	var rows []models.SubscriptionPaymentModel
	total, err := countAndFind(query, filter, PaymentSortFields, "created_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	payments := make([]payment.SubscriptionPayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, total, nil
}

// HasInFlight reports whether the firm has a pending or processing payment
// younger than payment.InFlightWindow
func (r *GormSubscriptionPaymentRepository) HasInFlight(ctx context.Context, firmID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SubscriptionPaymentModel{}).
		Where("firm_id = ? AND status IN ? AND created_at >= ?", firmID,
			[]payment.Status{payment.StatusPending, payment.StatusProcessing},
			r.now().Add(-payment.InFlightWindow)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a subscription payment
func (r *GormSubscriptionPaymentRepository) Save(ctx context.Context, p *payment.SubscriptionPayment) error {
	return r.db.WithContext(ctx).Save(models.SubscriptionPaymentModelFromDomain(p)).Error
}

var _ payment.SubscriptionPaymentRepository = (*GormSubscriptionPaymentRepository)(nil)

// GormTransactionRepository implements payment.TransactionRepository
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByIDForFirm finds a transaction within a firm
func (r *GormTransactionRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*payment.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByExternalID resolves the reference we sent to a gateway
func (r *GormTransactionRepository) FindByExternalID(ctx context.Context, provider payment.Provider, externalID string) (*payment.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND external_id = ?", provider, externalID).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByProviderReference resolves the gateway's own identifier
func (r *GormTransactionRepository) FindByProviderReference(ctx context.Context, provider payment.Provider, reference string) (*payment.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_reference = ?", provider, reference).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists transactions. Supported filters: purpose, status,
// provider, invoice_id.
func (r *GormTransactionRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]payment.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TransactionModel{}).Where("firm_id = ?", firmID)
	for _, key := range []string{"purpose", "status", "provider", "invoice_id"} {
		if v, ok := stringFilter(filter, key); ok {
			query = query.Where(key+" = ?", v)
		}
	}
	query = dateRange(query, filter, "created_at")

	var rows []models.TransactionModel
	total, err := countAndFind(query, filter, PaymentSortFields, "created_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	return transactionsToDomain(rows), total, nil
}

// FindByInvoice lists the transactions recorded against an invoice
func (r *GormTransactionRepository) FindByInvoice(ctx context.Context, firmID, invoiceID uuid.UUID) ([]payment.Transaction, error) {
	var rows []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND invoice_id = ?", firmID, invoiceID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return transactionsToDomain(rows), nil
}

// Save creates or updates a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, t *payment.Transaction) error {
	return r.db.WithContext(ctx).Save(models.TransactionModelFromDomain(t)).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormTransactionRepository) SaveWithLock(ctx context.Context, t *payment.Transaction) error {
	return updateWithLock(r.db.WithContext(ctx), models.TransactionModelFromDomain(t), t.ID, t.Version)
}

func transactionsToDomain(rows []models.TransactionModel) []payment.Transaction {
	txs := make([]payment.Transaction, len(rows))
	for i := range rows {
		txs[i] = *rows[i].ToDomain()
	}
	return txs
}

var _ payment.TransactionRepository = (*GormTransactionRepository)(nil)
