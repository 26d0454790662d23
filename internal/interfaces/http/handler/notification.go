package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	messagingapp "github.com/lexdesk/backend/internal/application/messaging"
)

// Inbox reads and acknowledges a profile's notifications
type Inbox interface {
	List(ctx context.Context, firmID, profileID uuid.UUID, filter messagingapp.NotificationListFilter) ([]messagingapp.NotificationResponse, int64, error)
	UnreadCount(ctx context.Context, firmID, profileID uuid.UUID) (*messagingapp.UnreadCountResponse, error)
	MarkRead(ctx context.Context, firmID, profileID, id uuid.UUID) (*messagingapp.NotificationResponse, error)
	MarkAllRead(ctx context.Context, firmID, profileID uuid.UUID) (*messagingapp.MarkAllReadResponse, error)
	Delete(ctx context.Context, firmID, profileID, id uuid.UUID) error
}

// NotificationHandler handles in-app notifications. A profile sees its own
// notifications and those addressed to the whole firm.
type NotificationHandler struct {
	BaseHandler
	inbox Inbox
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(inbox Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// List godoc
// @ID           listNotifications
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Param        unread query bool false "Only unread"
// @Param        type query string false "Notification type"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]messagingapp.NotificationResponse]
// @Security     BearerAuth
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}

	var filter messagingapp.NotificationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	items, total, err := h.inbox.List(c.Request.Context(), firmID, profileID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, size)
}

// UnreadCount godoc
// @ID           unreadNotificationCount
// @Summary      Unread notification count
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[messagingapp.UnreadCountResponse]
// @Security     BearerAuth
// @Router       /notifications/unread-count [get]
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}

	result, err := h.inbox.UnreadCount(c.Request.Context(), firmID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkRead godoc
// @ID           markNotificationRead
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Param        id path string true "Notification ID" format(uuid)
// @Success      200 {object} APIResponse[messagingapp.NotificationResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id}/read [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.inbox.MarkRead(c.Request.Context(), firmID, profileID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// MarkAllRead godoc
// @ID           markAllNotificationsRead
// @Summary      Mark all notifications read
// @Tags         notifications
// @Produce      json
// @Success      200 {object} APIResponse[messagingapp.MarkAllReadResponse]
// @Security     BearerAuth
// @Router       /notifications/read-all [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}

	result, err := h.inbox.MarkAllRead(c.Request.Context(), firmID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteNotification
// @Summary      Delete a notification
// @Tags         notifications
// @Param        id path string true "Notification ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Delete(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.inbox.Delete(c.Request.Context(), firmID, profileID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
