package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	clientapp "github.com/lexdesk/backend/internal/application/client"
)

// ClientManager manages the firm's clients
type ClientManager interface {
	Create(ctx context.Context, firmID, actorID uuid.UUID, req clientapp.CreateClientRequest) (*clientapp.ClientResponse, error)
	GetByID(ctx context.Context, firmID, clientID uuid.UUID) (*clientapp.ClientResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter clientapp.ClientListFilter) ([]clientapp.ClientResponse, int64, error)
	Update(ctx context.Context, firmID, clientID uuid.UUID, req clientapp.UpdateClientRequest) (*clientapp.ClientResponse, error)
	Archive(ctx context.Context, firmID, clientID uuid.UUID) (*clientapp.ClientResponse, error)
	SetStatus(ctx context.Context, firmID, clientID uuid.UUID, req clientapp.UpdateClientStatusRequest) (*clientapp.ClientResponse, error)
	Delete(ctx context.Context, firmID, clientID uuid.UUID) error
}

// ClientHandler handles client-related HTTP requests
type ClientHandler struct {
	BaseHandler
	clients ClientManager
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clients ClientManager) *ClientHandler {
	return &ClientHandler{clients: clients}
}

// Create godoc
// @ID           createClient
// @Summary      Create a client
// @Description  Create a client, within the plan's client limit
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body clientapp.CreateClientRequest true "Client"
// @Success      201 {object} APIResponse[clientapp.ClientResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req clientapp.CreateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clients.Create(c.Request.Context(), firmID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, client)
}

// GetByID godoc
// @ID           getClient
// @Summary      Get a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[clientapp.ClientResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	clientID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	client, err := h.clients.GetByID(c.Request.Context(), firmID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// List godoc
// @ID           listClients
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        search query string false "Name, email, phone or ID number"
// @Param        status query string false "Status" Enums(active, inactive, archived)
// @Param        kind query string false "Kind" Enums(individual, company)
// @Param        city query string false "City"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Param        order_by query string false "Sort field" default(name)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]clientapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var filter clientapp.ClientListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	clients, total, err := h.clients.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, clients, total, page, size)
}

// Update godoc
// @ID           updateClient
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body clientapp.UpdateClientRequest true "Client"
// @Success      200 {object} APIResponse[clientapp.ClientResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	clientID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req clientapp.UpdateClientRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clients.Update(c.Request.Context(), firmID, clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Archive godoc
// @ID           archiveClient
// @Summary      Archive a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} APIResponse[clientapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients/{id}/archive [post]
func (h *ClientHandler) Archive(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	clientID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	client, err := h.clients.Archive(c.Request.Context(), firmID, clientID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// SetStatus godoc
// @ID           setClientStatus
// @Summary      Change a client's status
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body clientapp.UpdateClientStatusRequest true "Status"
// @Success      200 {object} APIResponse[clientapp.ClientResponse]
// @Security     BearerAuth
// @Router       /clients/{id}/status [put]
func (h *ClientHandler) SetStatus(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	clientID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req clientapp.UpdateClientStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	client, err := h.clients.SetStatus(c.Request.Context(), firmID, clientID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Delete godoc
// @ID           deleteClient
// @Summary      Delete a client
// @Description  Delete a client without cases. Clients with cases must be archived instead.
// @Tags         clients
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	clientID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.clients.Delete(c.Request.Context(), firmID, clientID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ContactManager manages the firm's professional contacts
type ContactManager interface {
	Create(ctx context.Context, firmID, actorID uuid.UUID, req clientapp.ContactRequest) (*clientapp.ContactResponse, error)
	GetByID(ctx context.Context, firmID, contactID uuid.UUID) (*clientapp.ContactResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter clientapp.ContactListFilter) ([]clientapp.ContactResponse, int64, error)
	Update(ctx context.Context, firmID, contactID uuid.UUID, req clientapp.ContactRequest) (*clientapp.ContactResponse, error)
	Delete(ctx context.Context, firmID, contactID uuid.UUID) error
}

// ContactHandler handles the professional contact directory
type ContactHandler struct {
	BaseHandler
	contacts ContactManager
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contacts ContactManager) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

// Create godoc
// @ID           createContact
// @Summary      Create a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        request body clientapp.ContactRequest true "Contact"
// @Success      201 {object} APIResponse[clientapp.ContactResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts [post]
func (h *ContactHandler) Create(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req clientapp.ContactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	contact, err := h.contacts.Create(c.Request.Context(), firmID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, contact)
}

// GetByID godoc
// @ID           getContact
// @Summary      Get a contact
// @Tags         contacts
// @Produce      json
// @Param        id path string true "Contact ID" format(uuid)
// @Success      200 {object} APIResponse[clientapp.ContactResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /contacts/{id} [get]
func (h *ContactHandler) GetByID(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	contactID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	contact, err := h.contacts.GetByID(c.Request.Context(), firmID, contactID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// List godoc
// @ID           listContacts
// @Summary      List contacts
// @Tags         contacts
// @Produce      json
// @Param        search query string false "Name, organization or email"
// @Param        category query string false "Category" Enums(lawyer, bailiff, notary, expert, judge, court_clerk, other)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]clientapp.ContactResponse]
// @Security     BearerAuth
// @Router       /contacts [get]
func (h *ContactHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var filter clientapp.ContactListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	contacts, total, err := h.contacts.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, contacts, total, page, size)
}

// Update godoc
// @ID           updateContact
// @Summary      Update a contact
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contact ID" format(uuid)
// @Param        request body clientapp.ContactRequest true "Contact"
// @Success      200 {object} APIResponse[clientapp.ContactResponse]
// @Security     BearerAuth
// @Router       /contacts/{id} [put]
func (h *ContactHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	contactID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req clientapp.ContactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	contact, err := h.contacts.Update(c.Request.Context(), firmID, contactID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, contact)
}

// Delete godoc
// @ID           deleteContact
// @Summary      Delete a contact
// @Tags         contacts
// @Param        id path string true "Contact ID" format(uuid)
// @Success      204
// @Security     BearerAuth
// @Router       /contacts/{id} [delete]
func (h *ContactHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	contactID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), firmID, contactID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
