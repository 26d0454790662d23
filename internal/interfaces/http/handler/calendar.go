package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	calendarapp "github.com/lexdesk/backend/internal/application/calendar"
)

// Scheduler manages calendar events
type Scheduler interface {
	Create(ctx context.Context, firmID, actorID uuid.UUID, req calendarapp.EventRequest) (*calendarapp.EventResponse, error)
	GetByID(ctx context.Context, firmID, eventID uuid.UUID) (*calendarapp.EventResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter calendarapp.EventListFilter) ([]calendarapp.EventResponse, int64, error)
	Range(ctx context.Context, firmID uuid.UUID, q calendarapp.RangeQuery) ([]calendarapp.EventResponse, error)
	Upcoming(ctx context.Context, firmID uuid.UUID, days int) ([]calendarapp.EventResponse, error)
	Update(ctx context.Context, firmID, eventID uuid.UUID, req calendarapp.EventRequest) (*calendarapp.EventResponse, error)
	Complete(ctx context.Context, firmID, eventID uuid.UUID) (*calendarapp.EventResponse, error)
	Cancel(ctx context.Context, firmID, eventID uuid.UUID) (*calendarapp.EventResponse, error)
	Delete(ctx context.Context, firmID, eventID uuid.UUID) error
}

// UpcomingQuery selects the look-ahead window
type UpcomingQuery struct {
	Days int `form:"days" binding:"min=0,max=90"`
}

// CalendarHandler handles calendar events
type CalendarHandler struct {
	BaseHandler
	events Scheduler
}

// NewCalendarHandler creates a new CalendarHandler
func NewCalendarHandler(events Scheduler) *CalendarHandler {
	return &CalendarHandler{events: events}
}

// Create godoc
// @ID           createEvent
// @Summary      Create an event
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Param        request body calendarapp.EventRequest true "Event"
// @Success      201 {object} APIResponse[calendarapp.EventResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /events [post]
func (h *CalendarHandler) Create(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req calendarapp.EventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.events.Create(c.Request.Context(), firmID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getEvent
// @Summary      Get an event
// @Tags         calendar
// @Produce      json
// @Param        id path string true "Event ID" format(uuid)
// @Success      200 {object} APIResponse[calendarapp.EventResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /events/{id} [get]
func (h *CalendarHandler) GetByID(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	eventID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.events.GetByID(c.Request.Context(), firmID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listEvents
// @Summary      List events
// @Tags         calendar
// @Produce      json
// @Param        search query string false "Title or location"
// @Param        case_id query string false "Case ID" format(uuid)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        type query string false "Type" Enums(hearing, meeting, deadline, consultation, other)
// @Param        status query string false "Status" Enums(scheduled, completed, cancelled)
// @Param        start_date query string false "From (RFC3339)"
// @Param        end_date query string false "To (RFC3339)"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]calendarapp.EventResponse]
// @Security     BearerAuth
// @Router       /events [get]
func (h *CalendarHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var filter calendarapp.EventListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	events, total, err := h.events.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, events, total, page, size)
}

// Range godoc
// @ID           eventRange
// @Summary      Events in a date range
// @Description  Events overlapping [from, to], for calendar views
// @Tags         calendar
// @Produce      json
// @Param        from query string true "From (RFC3339)"
// @Param        to query string true "To (RFC3339)"
// @Success      200 {object} APIResponse[[]calendarapp.EventResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /events/range [get]
func (h *CalendarHandler) Range(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var q calendarapp.RangeQuery
	if !h.bindQuery(c, &q) {
		return
	}

	events, err := h.events.Range(c.Request.Context(), firmID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

// Upcoming godoc
// @ID           upcomingEvents
// @Summary      Upcoming events
// @Tags         calendar
// @Produce      json
// @Param        days query int false "Look-ahead in days" default(7)
// @Success      200 {object} APIResponse[[]calendarapp.EventResponse]
// @Security     BearerAuth
// @Router       /events/upcoming [get]
func (h *CalendarHandler) Upcoming(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var q UpcomingQuery
	if !h.bindQuery(c, &q) {
		return
	}

	events, err := h.events.Upcoming(c.Request.Context(), firmID, q.Days)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, events)
}

// Update godoc
// @ID           updateEvent
// @Summary      Reschedule an event
// @Tags         calendar
// @Accept       json
// @Produce      json
// @Param        id path string true "Event ID" format(uuid)
// @Param        request body calendarapp.EventRequest true "Event"
// @Success      200 {object} APIResponse[calendarapp.EventResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /events/{id} [put]
func (h *CalendarHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	eventID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req calendarapp.EventRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.events.Update(c.Request.Context(), firmID, eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Complete godoc
// @ID           completeEvent
// @Summary      Mark an event completed
// @Tags         calendar
// @Produce      json
// @Param        id path string true "Event ID" format(uuid)
// @Success      200 {object} APIResponse[calendarapp.EventResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /events/{id}/complete [post]
func (h *CalendarHandler) Complete(c *gin.Context) {
	h.transition(c, h.events.Complete)
}

// Cancel godoc
// @ID           cancelEvent
// @Summary      Cancel an event
// @Tags         calendar
// @Produce      json
// @Param        id path string true "Event ID" format(uuid)
// @Success      200 {object} APIResponse[calendarapp.EventResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /events/{id}/cancel [post]
func (h *CalendarHandler) Cancel(c *gin.Context) {
	h.transition(c, h.events.Cancel)
}

func (h *CalendarHandler) transition(c *gin.Context, fn func(ctx context.Context, firmID, eventID uuid.UUID) (*calendarapp.EventResponse, error)) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	eventID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), firmID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteEvent
// @Summary      Delete an event
// @Tags         calendar
// @Param        id path string true "Event ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /events/{id} [delete]
func (h *CalendarHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	eventID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.events.Delete(c.Request.Context(), firmID, eventID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
