package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements client.ClientRepository
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByIDForFirm finds a client by ID within a firm
func (r *GormClientRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*client.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists clients with search and status/kind filters
func (r *GormClientRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]client.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ClientModel{}).Where("firm_id = ?", firmID)
	query = search(query, filter.Search, "name", "email", "phone", "id_number")
	if status, ok := stringFilter(filter, "status"); ok {
		query = query.Where("status = ?", status)
	}
	if kind, ok := stringFilter(filter, "kind"); ok {
		query = query.Where("kind = ?", kind)
	}
	if city, ok := stringFilter(filter, "city"); ok {
		query = query.Where("city = ?", city)
	}

	var rows []models.ClientModel
	total, err := countAndFind(query, filter, ClientSortFields, "name", &rows)
	if err != nil {
		return nil, 0, err
	}
	clients := make([]client.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, total, nil
}

// CountForFirm counts clients that are not archived; the clients quota
func (r *GormClientRepository) CountForFirm(ctx context.Context, firmID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("firm_id = ? AND status <> ?", firmID, client.StatusArchived).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByEmail checks whether the firm already has a client with email
func (r *GormClientRepository) ExistsByEmail(ctx context.Context, firmID uuid.UUID, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ClientModel{}).
		Where("firm_id = ? AND email = ?", firmID, email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, c *client.Client) error {
	return r.db.WithContext(ctx).Save(models.ClientModelFromDomain(c)).Error
}

// DeleteForFirm deletes a client within a firm
func (r *GormClientRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.ClientModel{}, "firm_id = ? AND id = ?", firmID, id))
}

var _ client.ClientRepository = (*GormClientRepository)(nil)

// GormContactRepository implements client.ContactRepository
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByIDForFirm finds a professional contact by ID within a firm
func (r *GormContactRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*client.ProfessionalContact, error) {
	var model models.ContactModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists professional contacts
func (r *GormContactRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]client.ProfessionalContact, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ContactModel{}).Where("firm_id = ?", firmID)
	query = search(query, filter.Search, "name", "organization", "email")
	if category, ok := stringFilter(filter, "category"); ok {
		query = query.Where("category = ?", category)
	}

	var rows []models.ContactModel
	total, err := countAndFind(query, filter, ContactSortFields, "name", &rows)
	if err != nil {
		return nil, 0, err
	}
	contacts := make([]client.ProfessionalContact, len(rows))
	for i := range rows {
		contacts[i] = *rows[i].ToDomain()
	}
	return contacts, total, nil
}

// Save creates or updates a professional contact
func (r *GormContactRepository) Save(ctx context.Context, c *client.ProfessionalContact) error {
	return r.db.WithContext(ctx).Save(models.ContactModelFromDomain(c)).Error
}

// DeleteForFirm deletes a professional contact within a firm
func (r *GormContactRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.ContactModel{}, "firm_id = ? AND id = ?", firmID, id))
}

var _ client.ContactRepository = (*GormContactRepository)(nil)
