// Package calendar schedules hearings, meetings and deadlines and sends
// their reminders.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/calendar"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Notifier delivers event reminders
type Notifier interface {
	NotifyProfile(ctx context.Context, firmID uuid.UUID, profileID *uuid.UUID, typ messaging.NotificationType, link string, data map[string]any) error
}

// maxRange bounds FindInRange queries
const maxRange = 366 * 24 * time.Hour

// EventService manages calendar events
type EventService struct {
	events   calendar.EventRepository
	cases    matter.CaseRepository
	clients  client.ClientRepository
	profiles firm.ProfileRepository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewEventService creates a new EventService. notifier may be nil when
// reminders are not sent by this process.
func NewEventService(
	events calendar.EventRepository,
	cases matter.CaseRepository,
	clients client.ClientRepository,
	profiles firm.ProfileRepository,
	notifier Notifier,
	logger *zap.Logger,
) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:   events,
		cases:    cases,
		clients:  clients,
		profiles: profiles,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create schedules an event
func (s *EventService) Create(ctx context.Context, firmID, actorID uuid.UUID, req EventRequest) (*EventResponse, error) {
	if err := s.validateLinks(ctx, firmID, req); err != nil {
		return nil, err
	}
	e, err := calendar.NewEvent(firmID, req.Title, calendar.EventType(req.Type), req.StartAt, req.EndAt)
	if err != nil {
		return nil, err
	}
	if err := s.apply(e, req); err != nil {
		return nil, err
	}
	e.SetCreatedBy(actorID)
	if err := s.events.Save(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Info("Event scheduled",
		zap.String("firm_id", firmID.String()),
		zap.String("event_id", e.ID.String()),
		zap.Time("start_at", e.StartAt))
	resp := ToEventResponse(e)
	return &resp, nil
}

// GetByID retrieves an event
func (s *EventService) GetByID(ctx context.Context, firmID, eventID uuid.UUID) (*EventResponse, error) {
	e, err := s.events.FindByIDForFirm(ctx, firmID, eventID)
	if err != nil {
		return nil, err
	}
	resp := ToEventResponse(e)
	return &resp, nil
}

// List retrieves a paginated list of events
func (s *EventService) List(ctx context.Context, firmID uuid.UUID, filter EventListFilter) ([]EventResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "start_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
		From:     filter.StartDate,
		To:       filter.EndDate,
	}
	if filter.CaseID != "" {
		domainFilter.Filters["case_id"] = filter.CaseID
	}
	if filter.ClientID != "" {
		domainFilter.Filters["client_id"] = filter.ClientID
	}
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	events, total, err := s.events.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToEventResponses(events), total, nil
}

// Range returns events overlapping [from, to), for calendar views
func (s *EventService) Range(ctx context.Context, firmID uuid.UUID, q RangeQuery) ([]EventResponse, error) {
	if !q.To.After(q.From) {
		return nil, shared.NewDomainError("INVALID_RANGE", "End of range must be after its start")
	}
	if q.To.Sub(q.From) > maxRange {
		return nil, shared.NewDomainError("INVALID_RANGE", "Range cannot exceed one year")
	}
	events, err := s.events.FindInRange(ctx, firmID, q.From, q.To)
	if err != nil {
		return nil, err
	}
	return ToEventResponses(events), nil
}

// Upcoming returns events starting within the next days
func (s *EventService) Upcoming(ctx context.Context, firmID uuid.UUID, days int) ([]EventResponse, error) {
	if days <= 0 {
		days = 7
	}
	now := s.now()
	events, err := s.events.FindInRange(ctx, firmID, now, now.AddDate(0, 0, days))
	if err != nil {
		return nil, err
	}
	out := make([]EventResponse, 0, len(events))
	for i := range events {
		if events[i].Status == calendar.StatusScheduled && !events[i].StartAt.Before(now) {
			out = append(out, ToEventResponse(&events[i]))
		}
	}
	return out, nil
}

// Update reschedules an event and replaces its details
func (s *EventService) Update(ctx context.Context, firmID, eventID uuid.UUID, req EventRequest) (*EventResponse, error) {
	e, err := s.events.FindByIDForFirm(ctx, firmID, eventID)
	if err != nil {
		return nil, err
	}
	if err := s.validateLinks(ctx, firmID, req); err != nil {
		return nil, err
	}
	if err := e.Reschedule(req.Title, calendar.EventType(req.Type), req.StartAt, req.EndAt); err != nil {
		return nil, err
	}
	if err := s.apply(e, req); err != nil {
		return nil, err
	}
	if err := s.events.Save(ctx, e); err != nil {
		return nil, err
	}
	resp := ToEventResponse(e)
	return &resp, nil
}

// Complete marks a scheduled event as held
func (s *EventService) Complete(ctx context.Context, firmID, eventID uuid.UUID) (*EventResponse, error) {
	return s.transition(ctx, firmID, eventID, (*calendar.Event).Complete)
}

// Cancel cancels a scheduled event
func (s *EventService) Cancel(ctx context.Context, firmID, eventID uuid.UUID) (*EventResponse, error) {
	return s.transition(ctx, firmID, eventID, (*calendar.Event).Cancel)
}

// Delete removes an event
func (s *EventService) Delete(ctx context.Context, firmID, eventID uuid.UUID) error {
	if _, err := s.events.FindByIDForFirm(ctx, firmID, eventID); err != nil {
		return err
	}
	return s.events.DeleteForFirm(ctx, firmID, eventID)
}

// SendReminders notifies the owners of events whose reminder window has
// opened. Events without an owner notify the whole firm. A failed
// notification leaves the reminder pending for the next run.
func (s *EventService) SendReminders(ctx context.Context, horizon time.Duration) (ReminderRun, error) {
	var run ReminderRun
	if s.notifier == nil {
		return run, nil
	}
	now := s.now()
	events, err := s.events.FindPendingReminders(ctx, now, now.Add(horizon))
	if err != nil {
		return run, err
	}
	for i := range events {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		e := &events[i]
		if !e.ReminderDue(now) {
			continue
		}
		run.Checked++
		data := map[string]any{
			"Title":    e.Title,
			"StartAt":  e.StartAt,
			"Location": e.Location,
		}
		link := fmt.Sprintf("/calendar/%s", e.ID)
		if err := s.notifier.NotifyProfile(ctx, e.FirmID, e.ProfileID, messaging.TypeEventReminder, link, data); err != nil {
			run.Failed++
			s.logger.Warn("Event reminder failed",
				zap.String("firm_id", e.FirmID.String()),
				zap.String("event_id", e.ID.String()),
				zap.Error(err))
			continue
		}
		e.MarkReminderSent(now)
		if err := s.events.Save(ctx, e); err != nil {
			run.Failed++
			s.logger.Error("Failed to record reminder",
				zap.String("event_id", e.ID.String()),
				zap.Error(err))
			continue
		}
		run.Sent++
	}
	return run, nil
}

func (s *EventService) transition(ctx context.Context, firmID, eventID uuid.UUID, fn func(*calendar.Event) error) (*EventResponse, error) {
	e, err := s.events.FindByIDForFirm(ctx, firmID, eventID)
	if err != nil {
		return nil, err
	}
	if err := fn(e); err != nil {
		return nil, err
	}
	if err := s.events.Save(ctx, e); err != nil {
		return nil, err
	}
	resp := ToEventResponse(e)
	return &resp, nil
}

// apply copies the fields Reschedule does not cover
func (s *EventService) apply(e *calendar.Event, req EventRequest) error {
	e.Description = req.Description
	e.AllDay = req.AllDay
	e.Location = req.Location
	e.CaseID = req.CaseID
	e.ClientID = req.ClientID
	e.ProfileID = req.ProfileID
	if req.ReminderMinutes != nil && *req.ReminderMinutes != e.ReminderMinutes {
		return e.SetReminder(*req.ReminderMinutes)
	}
	return nil
}

// validateLinks checks that linked records belong to the firm. A case
// linked with a client must be that client's case.
func (s *EventService) validateLinks(ctx context.Context, firmID uuid.UUID, req EventRequest) error {
	if req.CaseID != nil {
		c, err := s.cases.FindByIDForFirm(ctx, firmID, *req.CaseID)
		if err != nil {
			return notFoundAs(err, "INVALID_CASE", "Case does not exist")
		}
		if req.ClientID != nil && c.ClientID != *req.ClientID {
			return shared.NewDomainError("INVALID_CLIENT", "Client does not match the case")
		}
	}
	if req.ClientID != nil {
		if _, err := s.clients.FindByIDForFirm(ctx, firmID, *req.ClientID); err != nil {
			return notFoundAs(err, "INVALID_CLIENT", "Client does not exist")
		}
	}
	if req.ProfileID != nil {
		p, err := s.profiles.FindByIDForFirm(ctx, firmID, *req.ProfileID)
		if err != nil {
			return notFoundAs(err, "INVALID_PROFILE", "Profile does not exist")
		}
		if !p.Active {
			return shared.NewDomainError("INVALID_PROFILE", "Profile is deactivated")
		}
	}
	return nil
}

func notFoundAs(err error, code, message string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewDomainError(code, message)
	}
	return err
}
