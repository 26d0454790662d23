package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCaseRepository implements matter.CaseRepository
type GormCaseRepository struct {
	db  *gorm.DB
	seq *SequenceGenerator
}

// NewGormCaseRepository creates a new GormCaseRepository
func NewGormCaseRepository(db *gorm.DB) *GormCaseRepository {
	return &GormCaseRepository{db: db, seq: NewSequenceGenerator(db)}
}

// FindByIDForFirm finds a case by ID within a firm
func (r *GormCaseRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*matter.Case, error) {
	var model models.CaseModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists cases. Supported filters: client_id, status,
// priority, type, assigned_to.
func (r *GormCaseRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]matter.Case, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CaseModel{}).Where("firm_id = ?", firmID)
	query = search(query, filter.Search, "reference", "title", "opposing_party", "court")
	for _, key := range []string{"client_id", "status", "priority", "type", "assigned_to"} {
		if v, ok := stringFilter(filter, key); ok {
			query = query.Where(key+" = ?", v)
		}
	}
	query = dateRange(query, filter, "opened_at")

	var rows []models.CaseModel
	total, err := countAndFind(query, filter, CaseSortFields, "opened_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	cases := make([]matter.Case, len(rows))
	for i := range rows {
		cases[i] = *rows[i].ToDomain()
	}
	return cases, total, nil
}

// CountForFirm counts cases that are not archived; the cases quota
func (r *GormCaseRepository) CountForFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CaseModel{}).
		Where("firm_id = ? AND status <> ?", firmID, matter.StatusArchived).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts cases of a firm in any of statuses
func (r *GormCaseRepository) CountByStatus(ctx context.Context, firmID uuid.UUID, statuses ...matter.CaseStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CaseModel{}).Where("firm_id = ?", firmID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByClient counts the cases of a client
func (r *GormCaseRepository) CountByClient(ctx context.Context, firmID, clientID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CaseModel{}).
		Where("firm_id = ? AND client_id = ?", firmID, clientID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByReference checks whether a reference is already used in the firm
func (r *GormCaseRepository) ExistsByReference(ctx context.Context, firmID uuid.UUID, reference string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CaseModel{}).
		Where("firm_id = ? AND reference = ?", firmID, reference).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextSequence returns the next case number of year for the firm
func (r *GormCaseRepository) NextSequence(ctx context.Context, firmID uuid.UUID, year int) (int64, error) {
	return r.seq.Next(ctx, firmID, SequenceCase, year)
}

// Save creates or updates a case
func (r *GormCaseRepository) Save(ctx context.Context, c *matter.Case) error {
	return r.db.WithContext(ctx).Save(models.CaseModelFromDomain(c)).Error
}

// DeleteForFirm deletes a case and its time entries
func (r *GormCaseRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("firm_id = ? AND case_id = ?", firmID, id).
			Delete(&models.TimeEntryModel{}).Error; err != nil {
			return err
		}
		return deleted(tx.Delete(&models.CaseModel{}, "firm_id = ? AND id = ?", firmID, id))
	})
}

var _ matter.CaseRepository = (*GormCaseRepository)(nil)

// GormTimeEntryRepository implements matter.TimeEntryRepository
type GormTimeEntryRepository struct {
	db *gorm.DB
}

// NewGormTimeEntryRepository creates a new GormTimeEntryRepository
func NewGormTimeEntryRepository(db *gorm.DB) *GormTimeEntryRepository {
	return &GormTimeEntryRepository{db: db}
}

// FindByIDForFirm finds a time entry by ID within a firm
func (r *GormTimeEntryRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*matter.TimeEntry, error) {
	var model models.TimeEntryModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists time entries. Supported filters: case_id,
// profile_id, billed ("true"/"false").
func (r *GormTimeEntryRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]matter.TimeEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TimeEntryModel{}).Where("firm_id = ?", firmID)
	for _, key := range []string{"case_id", "profile_id"} {
		if v, ok := stringFilter(filter, key); ok {
			query = query.Where(key+" = ?", v)
		}
	}
	if billed, ok := stringFilter(filter, "billed"); ok {
		if billed == "true" {
			query = query.Where("invoice_id IS NOT NULL")
		} else {
			query = query.Where("invoice_id IS NULL")
		}
	}
	query = dateRange(query, filter, "work_date")

	var rows []models.TimeEntryModel
	total, err := countAndFind(query, filter, TimeEntrySortFields, "work_date", &rows)
	if err != nil {
		return nil, 0, err
	}
	return timeEntriesToDomain(rows), total, nil
}

// FindUnbilledByCase returns billable entries of a case not yet invoiced
func (r *GormTimeEntryRepository) FindUnbilledByCase(ctx context.Context, firmID, caseID uuid.UUID) ([]matter.TimeEntry, error) {
	var rows []models.TimeEntryModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND case_id = ? AND billable = ? AND invoice_id IS NULL", firmID, caseID, true).
		Order("work_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return timeEntriesToDomain(rows), nil
}

// FindByInvoice returns the entries billed on an invoice
func (r *GormTimeEntryRepository) FindByInvoice(ctx context.Context, firmID, invoiceID uuid.UUID) ([]matter.TimeEntry, error) {
	var rows []models.TimeEntryModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND invoice_id = ?", firmID, invoiceID).
		Order("work_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return timeEntriesToDomain(rows), nil
}

// Save creates or updates a time entry
func (r *GormTimeEntryRepository) Save(ctx context.Context, e *matter.TimeEntry) error {
	return r.db.WithContext(ctx).Save(models.TimeEntryModelFromDomain(e)).Error
}

// SaveBatch saves several entries in one transaction
func (r *GormTimeEntryRepository) SaveBatch(ctx context.Context, entries []matter.TimeEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]*models.TimeEntryModel, len(entries))
	for i := range entries {
		rows[i] = models.TimeEntryModelFromDomain(&entries[i])
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(rows).Error
	})
}

// DeleteForFirm deletes a time entry within a firm
func (r *GormTimeEntryRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.TimeEntryModel{}, "firm_id = ? AND id = ?", firmID, id))
}

func timeEntriesToDomain(rows []models.TimeEntryModel) []matter.TimeEntry {
	entries := make([]matter.TimeEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

var _ matter.TimeEntryRepository = (*GormTimeEntryRepository)(nil)
