package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	messagingapp "github.com/lexdesk/backend/internal/application/messaging"
)

// Messenger sends and logs client communications
type Messenger interface {
	Send(ctx context.Context, firmID, actorID uuid.UUID, req messagingapp.SendMessageRequest) (*messagingapp.CommunicationResponse, error)
	LogInbound(ctx context.Context, firmID, actorID uuid.UUID, req messagingapp.LogInboundRequest) (*messagingapp.CommunicationResponse, error)
	GetByID(ctx context.Context, firmID, id uuid.UUID) (*messagingapp.CommunicationResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter messagingapp.CommunicationListFilter) ([]messagingapp.CommunicationResponse, int64, error)
}

// CommunicationHandler handles the communication log
type CommunicationHandler struct {
	BaseHandler
	messages Messenger
}

// NewCommunicationHandler creates a new CommunicationHandler
func NewCommunicationHandler(messages Messenger) *CommunicationHandler {
	return &CommunicationHandler{messages: messages}
}

// Send godoc
// @ID           sendMessage
// @Summary      Send a message
// @Description  Sends an email, SMS or WhatsApp message and logs it. A delivery failure stays in the log with status failed and answers 502.
// @Tags         communications
// @Accept       json
// @Produce      json
// @Param        request body messagingapp.SendMessageRequest true "Message"
// @Success      201 {object} APIResponse[messagingapp.CommunicationResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /communications [post]
func (h *CommunicationHandler) Send(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req messagingapp.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.messages.Send(c.Request.Context(), firmID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// LogInbound godoc
// @ID           logInboundMessage
// @Summary      Log a received message
// @Tags         communications
// @Accept       json
// @Produce      json
// @Param        request body messagingapp.LogInboundRequest true "Message"
// @Success      201 {object} APIResponse[messagingapp.CommunicationResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /communications/inbound [post]
func (h *CommunicationHandler) LogInbound(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req messagingapp.LogInboundRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.messages.LogInbound(c.Request.Context(), firmID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getCommunication
// @Summary      Get a communication
// @Tags         communications
// @Produce      json
// @Param        id path string true "Communication ID" format(uuid)
// @Success      200 {object} APIResponse[messagingapp.CommunicationResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /communications/{id} [get]
func (h *CommunicationHandler) GetByID(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.messages.GetByID(c.Request.Context(), firmID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listCommunications
// @Summary      List communications
// @Tags         communications
// @Produce      json
// @Param        search query string false "Subject, body or recipient"
// @Param        channel query string false "Channel" Enums(email, sms, whatsapp)
// @Param        direction query string false "Direction" Enums(outbound, inbound)
// @Param        status query string false "Status" Enums(pending, sent, failed, received)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        case_id query string false "Case ID" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]messagingapp.CommunicationResponse]
// @Security     BearerAuth
// @Router       /communications [get]
func (h *CommunicationHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var filter messagingapp.CommunicationListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	comms, total, err := h.messages.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, comms, total, page, size)
}
