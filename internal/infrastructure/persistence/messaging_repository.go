package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCommunicationRepository implements messaging.CommunicationRepository
type GormCommunicationRepository struct {
	db *gorm.DB
}

// NewGormCommunicationRepository creates a new GormCommunicationRepository
func NewGormCommunicationRepository(db *gorm.DB) *GormCommunicationRepository {
	return &GormCommunicationRepository{db: db}
}

// FindByIDForFirm finds a communication by ID within a firm
func (r *GormCommunicationRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*messaging.Communication, error) {
	var model models.CommunicationModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists communications. Supported filters: channel,
// direction, status, client_id, case_id.
func (r *GormCommunicationRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]messaging.Communication, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CommunicationModel{}).Where("firm_id = ?", firmID)
	query = search(query, filter.Search, "recipient", "subject", "body")
	for _, key := range []string{"channel", "direction", "status", "client_id", "case_id"} {
		if v, ok := stringFilter(filter, key); ok {
			query = query.Where(key+" = ?", v)
		}
	}
	query = dateRange(query, filter, "created_at")

	var rows []models.CommunicationModel
	total, err := countAndFind(query, filter, CommunicationSortFields, "created_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	comms := make([]messaging.Communication, len(rows))
	for i := range rows {
		comms[i] = *rows[i].ToDomain()
	}
	return comms, total, nil
}

// CountOutboundSince counts outbound messages on channel that were sent or
// are still pending; failed sends do not consume quota
func (r *GormCommunicationRepository) CountOutboundSince(ctx context.Context, firmID uuid.UUID, channel messaging.Channel, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommunicationModel{}).
		Where("firm_id = ? AND channel = ? AND direction = ? AND status IN ? AND created_at >= ?",
			firmID, channel, messaging.DirectionOutbound,
			[]messaging.CommunicationStatus{messaging.CommunicationSent, messaging.CommunicationPending}, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a communication
func (r *GormCommunicationRepository) Save(ctx context.Context, c *messaging.Communication) error {
	return r.db.WithContext(ctx).Save(models.CommunicationModelFromDomain(c)).Error
}

var _ messaging.CommunicationRepository = (*GormCommunicationRepository)(nil)

// GormNotificationRepository implements messaging.NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByIDForFirm finds a notification by ID within a firm
func (r *GormNotificationRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*messaging.Notification, error) {
	var model models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

func (r *GormNotificationRepository) visibleTo(ctx context.Context, firmID, profileID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("firm_id = ? AND (profile_id IS NULL OR profile_id = ?)", firmID, profileID)
}

// FindForProfile lists firm-wide notifications plus those targeted at profileID
func (r *GormNotificationRepository) FindForProfile(ctx context.Context, firmID, profileID uuid.UUID, unreadOnly bool, filter shared.Filter) ([]messaging.Notification, int64, error) {
	query := r.visibleTo(ctx, firmID, profileID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if typ, ok := stringFilter(filter, "type"); ok {
		query = query.Where("type = ?", typ)
	}

	var rows []models.NotificationModel
	total, err := countAndFind(query, filter, NotificationSortFields, "created_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	notifications := make([]messaging.Notification, len(rows))
	for i := range rows {
		notifications[i] = *rows[i].ToDomain()
	}
	return notifications, total, nil
}

// CountUnread counts unread notifications visible to profileID
func (r *GormNotificationRepository) CountUnread(ctx context.Context, firmID, profileID uuid.UUID) (int64, error) {
	var count int64
	if err := r.visibleTo(ctx, firmID, profileID).
		Where("read_at IS NULL").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkAllRead stamps every unread notification visible to profileID
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, firmID, profileID uuid.UUID, at time.Time) (int64, error) {
	result := r.visibleTo(ctx, firmID, profileID).
		Where("read_at IS NULL").
		Updates(map[string]any{"read_at": at, "updated_at": at})
	return result.RowsAffected, result.Error
}

// ExistsSince reports whether a notification of typ with link was created since
func (r *GormNotificationRepository) ExistsSince(ctx context.Context, firmID uuid.UUID, typ messaging.NotificationType, link string, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("firm_id = ? AND type = ? AND link = ? AND created_at >= ?", firmID, typ, link, since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, n *messaging.Notification) error {
	return r.db.WithContext(ctx).Save(models.NotificationModelFromDomain(n)).Error
}

// DeleteForFirm deletes a notification within a firm
func (r *GormNotificationRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.NotificationModel{}, "firm_id = ? AND id = ?", firmID, id))
}

var _ messaging.NotificationRepository = (*GormNotificationRepository)(nil)
