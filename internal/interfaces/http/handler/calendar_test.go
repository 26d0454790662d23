package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	calendarapp "github.com/lexdesk/backend/internal/application/calendar"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCalendarRouter(s *session) (*mockScheduler, http.Handler) {
	events := new(mockScheduler)
	h := NewCalendarHandler(events)

	r := newTestRouter(s)
	r.POST("/events", h.Create)
	r.GET("/events", h.List)
	r.GET("/events/range", h.Range)
	r.GET("/events/upcoming", h.Upcoming)
	r.GET("/events/:id", h.GetByID)
	r.POST("/events/:id/complete", h.Complete)
	r.POST("/events/:id/cancel", h.Cancel)
	r.DELETE("/events/:id", h.Delete)
	return events, r
}

func TestCalendarHandler_Create(t *testing.T) {
	s := newSession()
	events, r := setupCalendarRouter(s)
	start := time.Date(2026, 11, 4, 9, 0, 0, 0, time.UTC)
	events.On("Create", mock.Anything, s.firmID, s.profileID, mock.MatchedBy(func(req calendarapp.EventRequest) bool {
		return req.Type == "hearing" && req.StartAt.Equal(start)
	})).Return(&calendarapp.EventResponse{Title: "Audience TGI Wouri", Type: "hearing"}, nil)

	rec := doRequest(r, http.MethodPost, "/events", map[string]any{
		"title":    "Audience TGI Wouri",
		"type":     "hearing",
		"start_at": start,
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	events.AssertExpectations(t)
}

func TestCalendarHandler_RangeRequiresBounds(t *testing.T) {
	events, r := setupCalendarRouter(newSession())

	rec := doRequest(r, http.MethodGet, "/events/range?from=2026-11-01T00:00:00Z", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	events.AssertNotCalled(t, "Range", mock.Anything, mock.Anything, mock.Anything)
}

func TestCalendarHandler_Range(t *testing.T) {
	s := newSession()
	events, r := setupCalendarRouter(s)
	events.On("Range", mock.Anything, s.firmID, mock.MatchedBy(func(q calendarapp.RangeQuery) bool {
		return q.From.Month() == time.November && q.To.Month() == time.December
	})).Return([]calendarapp.EventResponse{{Title: "A"}}, nil)

	rec := doRequest(r, http.MethodGet, "/events/range?from=2026-11-01T00:00:00Z&to=2026-12-01T00:00:00Z", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeResponse[[]calendarapp.EventResponse](t, rec).Data, 1)
}

func TestCalendarHandler_Upcoming(t *testing.T) {
	s := newSession()

	t.Run("default window", func(t *testing.T) {
		events, r := setupCalendarRouter(s)
		events.On("Upcoming", mock.Anything, s.firmID, 0).Return([]calendarapp.EventResponse{}, nil)

		rec := doRequest(r, http.MethodGet, "/events/upcoming", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		events.AssertExpectations(t)
	})

	t.Run("window too wide", func(t *testing.T) {
		events, r := setupCalendarRouter(s)

		rec := doRequest(r, http.MethodGet, "/events/upcoming?days=365", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		events.AssertNotCalled(t, "Upcoming", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestCalendarHandler_Transitions(t *testing.T) {
	s := newSession()
	id := uuid.New()
	events, r := setupCalendarRouter(s)
	events.On("Complete", mock.Anything, s.firmID, id).Return(&calendarapp.EventResponse{ID: id, Status: "completed"}, nil)
	events.On("Cancel", mock.Anything, s.firmID, id).
		Return(nil, shared.NewDomainError("INVALID_STATE", "Completed events cannot be cancelled"))

	rec := doRequest(r, http.MethodPost, "/events/"+id.String()+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decodeResponse[calendarapp.EventResponse](t, rec).Data.Status)

	rec = doRequest(r, http.MethodPost, "/events/"+id.String()+"/cancel", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
