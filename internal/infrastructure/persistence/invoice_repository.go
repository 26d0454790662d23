package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/invoice"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// outstandingStatuses are the invoice states that still expect money
var outstandingStatuses = []invoice.Status{
	invoice.StatusSent,
	invoice.StatusPartiallyPaid,
	invoice.StatusOverdue,
}

// GormInvoiceRepository implements invoice.InvoiceRepository
type GormInvoiceRepository struct {
	db  *gorm.DB
	seq *SequenceGenerator
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, seq: NewSequenceGenerator(db)}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC")
	})
}

// FindByIDForFirm finds an invoice with its items
func (r *GormInvoiceRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := preloadItems(r.db.WithContext(ctx)).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists invoices. Supported filters: client_id, case_id,
// status, outstanding ("true").
func (r *GormInvoiceRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]invoice.Invoice, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("firm_id = ?", firmID)
	query = search(query, filter.Search, "number", "notes")
	for _, key := range []string{"client_id", "case_id", "status"} {
		if v, ok := stringFilter(filter, key); ok {
			query = query.Where(key+" = ?", v)
		}
	}
	if v, ok := stringFilter(filter, "outstanding"); ok && v == "true" {
		query = query.Where("status IN ?", outstandingStatuses)
	}
	query = dateRange(query, filter, "issue_date")

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.InvoiceModel
	if total > 0 {
		page := paginate(preloadItems(query.Session(&gorm.Session{})), filter, InvoiceSortFields, "issue_date")
		if err := page.Find(&rows).Error; err != nil {
			return nil, 0, err
		}
	}
	return invoicesToDomain(rows), total, nil
}

// FindOverdueCandidates returns sent or partially paid invoices of every
// firm whose due date is before dueBefore
func (r *GormInvoiceRepository) FindOverdueCandidates(ctx context.Context, dueBefore time.Time) ([]invoice.Invoice, error) {
	var rows []models.InvoiceModel
	if err := preloadItems(r.db.WithContext(ctx)).
		Where("status IN ? AND due_date < ?", []invoice.Status{invoice.StatusSent, invoice.StatusPartiallyPaid}, dueBefore).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return invoicesToDomain(rows), nil
}

// CountCreatedSince counts invoices created since; the monthly invoice quota
func (r *GormInvoiceRepository) CountCreatedSince(ctx context.Context, firmID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("firm_id = ? AND created_at >= ?", firmID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByClient counts the invoices of a client
func (r *GormInvoiceRepository) CountByClient(ctx context.Context, firmID, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("firm_id = ? AND client_id = ?", firmID, clientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// OutstandingTotal sums the unpaid balance of outstanding invoices
func (r *GormInvoiceRepository) OutstandingTotal(ctx context.Context, firmID uuid.UUID) (decimal.Decimal, error) {
	var out struct {
		Balance decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Select("COALESCE(SUM(total - amount_paid), 0) AS balance").
		Where("firm_id = ? AND status IN ?", firmID, outstandingStatuses).
		Scan(&out).Error; err != nil {
		return decimal.Zero, err
	}
	return out.Balance, nil
}

// NextSequence returns the next invoice number of year for the firm
func (r *GormInvoiceRepository) NextSequence(ctx context.Context, firmID uuid.UUID, year int) (int64, error) {
	return r.seq.Next(ctx, firmID, SequenceInvoice, year)
}

// Save upserts the invoice and replaces its items
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(model).Error; err != nil {
			return err
		}
		return replaceItems(tx, model)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	model := models.InvoiceModelFromDomain(inv)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateWithLock(tx, model, inv.ID, inv.Version); err != nil {
			return err
		}
		return replaceItems(tx, model)
	})
}

func replaceItems(tx *gorm.DB, model *models.InvoiceModel) error {
	if err := tx.Where("invoice_id = ?", model.ID).Delete(&models.InvoiceItemModel{}).Error; err != nil {
		return err
	}
	if len(model.Items) == 0 {
		return nil
	}
	return tx.Create(&model.Items).Error
}

// DeleteForFirm deletes an invoice and its items
func (r *GormInvoiceRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.InvoiceModel{}, "firm_id = ? AND id = ?", firmID, id)
		if err := deleted(result); err != nil {
			return err
		}
		return tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItemModel{}).Error
	})
}

func invoicesToDomain(rows []models.InvoiceModel) []invoice.Invoice {
	invoices := make([]invoice.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices
}

var _ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)
