package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormFirmRepository implements firm.FirmRepository
type GormFirmRepository struct {
	db *gorm.DB
}

// NewGormFirmRepository creates a new GormFirmRepository
func NewGormFirmRepository(db *gorm.DB) *GormFirmRepository {
	return &GormFirmRepository{db: db}
}

// FindByID finds a firm by its ID
func (r *GormFirmRepository) FindByID(ctx context.Context, id uuid.UUID) (*firm.Firm, error) {
	var model models.FirmModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll lists firms; used by platform administration
func (r *GormFirmRepository) FindAll(ctx context.Context, filter shared.Filter) ([]firm.Firm, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FirmModel{})
	query = search(query, filter.Search, "name", "email")
	if status, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if plan, ok := stringFilter(filter, "plan"); ok {
		query = query.Where("plan = ?", plan)
	}

	var rows []models.FirmModel
	total, err := countAndFind(query, filter, FirmSortFields, "created_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	firms := make([]firm.Firm, len(rows))
	for i := range rows {
		firms[i] = *rows[i].ToDomain()
	}
	return firms, total, nil
}

// FindByStatuses returns every firm in one of the given statuses
func (r *GormFirmRepository) FindByStatuses(ctx context.Context, statuses ...firm.SubscriptionStatus) ([]firm.Firm, error) {
	if len(statuses) == 0 {
		return []firm.Firm{}, nil
	}
	var rows []models.FirmModel
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	firms := make([]firm.Firm, len(rows))
	for i := range rows {
		firms[i] = *rows[i].ToDomain()
	}
	return firms, nil
}

// Save creates or updates a firm
func (r *GormFirmRepository) Save(ctx context.Context, f *firm.Firm) error {
	return r.db.WithContext(ctx).Save(models.FirmModelFromDomain(f)).Error
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormFirmRepository) SaveWithLock(ctx context.Context, f *firm.Firm) error {
	return updateWithLock(r.db.WithContext(ctx), models.FirmModelFromDomain(f), f.ID, f.Version)
}

var _ firm.FirmRepository = (*GormFirmRepository)(nil)

// GormProfileRepository implements firm.ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByID finds a profile by ID across firms; used after token validation
func (r *GormProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*firm.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForFirm finds a profile by ID within a firm
func (r *GormProfileRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*firm.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByEmail finds a profile by email
func (r *GormProfileRepository) FindByEmail(ctx context.Context, email string) (*firm.Profile, error) {
	var model models.ProfileModel
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists the profiles of a firm
func (r *GormProfileRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]firm.Profile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProfileModel{}).Where("firm_id = ?", firmID)
	query = search(query, filter.Search, "full_name", "email")
	if role, ok := stringFilter(filter, "role"); ok {
		query = query.Where("role = ?", role)
	}
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}

	var rows []models.ProfileModel
	total, err := countAndFind(query, filter, ProfileSortFields, "full_name", &rows)
	if err != nil {
		return nil, 0, err
	}
	profiles := make([]firm.Profile, len(rows))
	for i := range rows {
		profiles[i] = *rows[i].ToDomain()
	}
	return profiles, total, nil
}

// FindByRole lists active profiles of a firm holding role
func (r *GormProfileRepository) FindByRole(ctx context.Context, firmID uuid.UUID, role firm.Role) ([]firm.Profile, error) {
	var rows []models.ProfileModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND role = ? AND active = ?", firmID, role, true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	profiles := make([]firm.Profile, len(rows))
	for i := range rows {
		profiles[i] = *rows[i].ToDomain()
	}
	return profiles, nil
}

// ExistsByEmail checks whether any profile uses email
func (r *GormProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountActiveForFirm counts active profiles; the users quota
func (r *GormProfileRepository) CountActiveForFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ProfileModel{}).
		Where("firm_id = ? AND active = ?", firmID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a profile
func (r *GormProfileRepository) Save(ctx context.Context, p *firm.Profile) error {
	return r.db.WithContext(ctx).Save(models.ProfileModelFromDomain(p)).Error
}

var _ firm.ProfileRepository = (*GormProfileRepository)(nil)
