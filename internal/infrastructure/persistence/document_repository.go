package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/document"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.DocumentRepository
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByIDForFirm finds document metadata by ID within a firm
func (r *GormDocumentRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*document.Document, error) {
	var model models.DocumentModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists documents, filterable by case_id, client_id and category
func (r *GormDocumentRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]document.Document, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DocumentModel{}).Where("firm_id = ?", firmID)
	query = search(query, filter.Search, "name", "description")
	for _, key := range []string{"case_id", "client_id", "category"} {
		if v, ok := stringFilter(filter, key); ok {
			query = query.Where(key+" = ?", v)
		}
	}

	var rows []models.DocumentModel
	total, err := countAndFind(query, filter, DocumentSortFields, "created_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	docs := make([]document.Document, len(rows))
	for i := range rows {
		docs[i] = *rows[i].ToDomain()
	}
	return docs, total, nil
}

// CountForFirm counts documents; the documents quota
func (r *GormDocumentRepository) CountForFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("firm_id = ?", firmID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// TotalSizeForFirm sums stored bytes; the storage_mb quota
func (r *GormDocumentRepository) TotalSizeForFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.DocumentModel{}).
		Where("firm_id = ?", firmID).
		Select("COALESCE(SUM(size_bytes), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Save creates or updates document metadata
func (r *GormDocumentRepository) Save(ctx context.Context, d *document.Document) error {
	return r.db.WithContext(ctx).Save(models.DocumentModelFromDomain(d)).Error
}

// DeleteForFirm deletes document metadata within a firm
func (r *GormDocumentRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.DocumentModel{}, "firm_id = ? AND id = ?", firmID, id))
}

var _ document.DocumentRepository = (*GormDocumentRepository)(nil)
