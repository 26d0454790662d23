package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	subapp "github.com/lexdesk/backend/internal/application/subscription"
	"github.com/lexdesk/backend/internal/domain/subscription"
)

// SubscriptionManager exposes plan status and lifecycle operations
type SubscriptionManager interface {
	GetStatus(ctx context.Context, firmID uuid.UUID) (*subapp.StatusResponse, error)
	CheckQuota(ctx context.Context, firmID uuid.UUID, resource subscription.Resource) (*subscription.QuotaCheck, error)
	ListPlans() []subapp.PlanResponse
	ChangePlan(ctx context.Context, firmID uuid.UUID, req subapp.ChangePlanRequest) (*subapp.StatusResponse, error)
	Activate(ctx context.Context, firmID uuid.UUID, req subapp.ActivateRequest) (*subapp.ActivateResponse, error)
	Suspend(ctx context.Context, firmID uuid.UUID, req subapp.SuspendRequest) error
	Reactivate(ctx context.Context, firmID uuid.UUID) error
	Cancel(ctx context.Context, firmID uuid.UUID) error
}

// SubscriptionHandler handles subscription status, plans and the
// back-office lifecycle routes
type SubscriptionHandler struct {
	BaseHandler
	subscriptions SubscriptionManager
}

// NewSubscriptionHandler creates a new subscription handler
func NewSubscriptionHandler(subscriptions SubscriptionManager) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// GetStatus godoc
// @ID           getSubscriptionStatus
// @Summary      Subscription status
// @Description  Access state, plan, usage against limits and enabled features of the firm
// @Tags         subscription
// @Produce      json
// @Success      200 {object} APIResponse[subapp.StatusResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /subscription [get]
func (h *SubscriptionHandler) GetStatus(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	result, err := h.subscriptions.GetStatus(c.Request.Context(), firmID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListPlans godoc
// @ID           listPlans
// @Summary      List plans
// @Description  Plans with their limits, features and prices per billing period
// @Tags         subscription
// @Produce      json
// @Success      200 {object} APIResponse[[]subapp.PlanResponse]
// @Security     BearerAuth
// @Router       /subscription/plans [get]
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	h.Success(c, h.subscriptions.ListPlans())
}

// CheckQuota godoc
// @ID           checkQuota
// @Summary      Check a quota
// @Description  Current usage and limit of one resource
// @Tags         subscription
// @Produce      json
// @Param        resource path string true "Resource" Enums(clients, cases, users, documents, storage_mb, invoices_per_month, sms_per_month)
// @Success      200 {object} APIResponse[subscription.QuotaCheck]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /subscription/quotas/{resource} [get]
func (h *SubscriptionHandler) CheckQuota(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	resource := subscription.Resource(c.Param("resource"))
	if !resource.IsValid() {
		h.BadRequest(c, "Unknown resource")
		return
	}

	result, err := h.subscriptions.CheckQuota(c.Request.Context(), firmID, resource)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ChangePlan godoc
// @ID           changePlan
// @Summary      Change plan
// @Description  Switch plan. Downgrades are refused while usage exceeds the target plan's limits.
// @Tags         subscription
// @Accept       json
// @Produce      json
// @Param        request body subapp.ChangePlanRequest true "Target plan"
// @Success      200 {object} APIResponse[subapp.StatusResponse]
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /subscription/plan [put]
func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var req subapp.ChangePlanRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.subscriptions.ChangePlan(c.Request.Context(), firmID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelSubscription
// @Summary      Cancel the subscription
// @Description  Cancel the firm's subscription. Owners only.
// @Tags         subscription
// @Produce      json
// @Success      200 {object} APIResponse[MessageData]
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /subscription/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	if err := h.subscriptions.Cancel(c.Request.Context(), firmID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Subscription cancelled"})
}

// AdminActivate godoc
// @ID           adminActivateSubscription
// @Summary      Apply a paid period
// @Description  Back-office renewal for payments collected outside the gateways
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Firm ID" format(uuid)
// @Param        request body subapp.ActivateRequest true "Plan and period"
// @Success      200 {object} APIResponse[subapp.ActivateResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     AdminKey
// @Router       /admin/firms/{id}/activate [post]
func (h *SubscriptionHandler) AdminActivate(c *gin.Context) {
	firmID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req subapp.ActivateRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.subscriptions.Activate(c.Request.Context(), firmID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AdminSuspend godoc
// @ID           adminSuspendSubscription
// @Summary      Suspend a firm
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path string true "Firm ID" format(uuid)
// @Param        request body subapp.SuspendRequest true "Reason"
// @Success      200 {object} APIResponse[MessageData]
// @Security     AdminKey
// @Router       /admin/firms/{id}/suspend [post]
func (h *SubscriptionHandler) AdminSuspend(c *gin.Context) {
	firmID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req subapp.SuspendRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.subscriptions.Suspend(c.Request.Context(), firmID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Firm suspended"})
}

// AdminReactivate godoc
// @ID           adminReactivateSubscription
// @Summary      Lift a suspension
// @Tags         admin
// @Produce      json
// @Param        id path string true "Firm ID" format(uuid)
// @Success      200 {object} APIResponse[MessageData]
// @Security     AdminKey
// @Router       /admin/firms/{id}/reactivate [post]
func (h *SubscriptionHandler) AdminReactivate(c *gin.Context) {
	firmID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.subscriptions.Reactivate(c.Request.Context(), firmID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Firm reactivated"})
}
