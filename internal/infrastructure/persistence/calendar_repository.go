package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/calendar"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCalendarEventRepository implements calendar.EventRepository
type GormCalendarEventRepository struct {
	db *gorm.DB
}

// NewGormCalendarEventRepository creates a new GormCalendarEventRepository
func NewGormCalendarEventRepository(db *gorm.DB) *GormCalendarEventRepository {
	return &GormCalendarEventRepository{db: db}
}

// FindByIDForFirm finds an event by ID within a firm
func (r *GormCalendarEventRepository) FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*calendar.Event, error) {
	var model models.CalendarEventModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND id = ?", firmID, id).
		First(&model).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAllForFirm lists events; From/To bound start_at
func (r *GormCalendarEventRepository) FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]calendar.Event, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.CalendarEventModel{}).Where("firm_id = ?", firmID)
	query = search(query, filter.Search, "title", "location")
	for _, key := range []string{"case_id", "client_id", "type", "status"} {
		if v, ok := stringFilter(filter, key); ok {
			query = query.Where(key+" = ?", v)
		}
	}
	query = dateRange(query, filter, "start_at")

	if filter.OrderBy == "" {
		filter.OrderBy, filter.OrderDir = "start_at", "asc"
	}
	var rows []models.CalendarEventModel
	total, err := countAndFind(query, filter, CalendarEventSortFields, "start_at", &rows)
	if err != nil {
		return nil, 0, err
	}
	return eventsToDomain(rows), total, nil
}

// FindInRange returns events overlapping [from, to], cancelled ones excluded
func (r *GormCalendarEventRepository) FindInRange(ctx context.Context, firmID uuid.UUID, from, to time.Time) ([]calendar.Event, error) {
	var rows []models.CalendarEventModel
	if err := r.db.WithContext(ctx).
		Where("firm_id = ? AND status <> ? AND start_at <= ? AND end_at >= ?", firmID, calendar.StatusCancelled, to, from).
		Order("start_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// FindPendingReminders returns scheduled events across all firms starting
// in (now, horizon] whose reminder has not been sent. The caller applies
// each event's own reminder window.
func (r *GormCalendarEventRepository) FindPendingReminders(ctx context.Context, now, horizon time.Time) ([]calendar.Event, error) {
	var rows []models.CalendarEventModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND reminder_minutes > 0 AND reminder_sent_at IS NULL AND start_at > ? AND start_at <= ?",
			calendar.StatusScheduled, now, horizon).
		Order("start_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return eventsToDomain(rows), nil
}

// CountUpcoming counts scheduled events starting in [from, to]
func (r *GormCalendarEventRepository) CountUpcoming(ctx context.Context, firmID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CalendarEventModel{}).
		Where("firm_id = ? AND status = ? AND start_at >= ? AND start_at <= ?", firmID, calendar.StatusScheduled, from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an event
func (r *GormCalendarEventRepository) Save(ctx context.Context, e *calendar.Event) error {
	return r.db.WithContext(ctx).Save(models.CalendarEventModelFromDomain(e)).Error
}

// DeleteForFirm deletes an event within a firm
func (r *GormCalendarEventRepository) DeleteForFirm(ctx context.Context, firmID, id uuid.UUID) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.CalendarEventModel{}, "firm_id = ? AND id = ?", firmID, id))
}

func eventsToDomain(rows []models.CalendarEventModel) []calendar.Event {
	events := make([]calendar.Event, len(rows))
	for i := range rows {
		events[i] = *rows[i].ToDomain()
	}
	return events
}

var _ calendar.EventRepository = (*GormCalendarEventRepository)(nil)
