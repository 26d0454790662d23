package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	dashboardapp "github.com/lexdesk/backend/internal/application/dashboard"
)

// SummaryProvider builds the dashboard summary
type SummaryProvider interface {
	Summary(ctx context.Context, firmID, profileID uuid.UUID) (*dashboardapp.SummaryResponse, error)
}

// DashboardHandler serves the firm dashboard
type DashboardHandler struct {
	BaseHandler
	summary SummaryProvider
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(summary SummaryProvider) *DashboardHandler {
	return &DashboardHandler{summary: summary}
}

// Summary godoc
// @ID           dashboardSummary
// @Summary      Dashboard summary
// @Description  Counts, next events, outstanding balance, plan usage and unread notifications for the caller
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[dashboardapp.SummaryResponse]
// @Security     BearerAuth
// @Router       /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}

	result, err := h.summary.Summary(c.Request.Context(), firmID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
