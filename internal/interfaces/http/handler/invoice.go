package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	invoiceapp "github.com/lexdesk/backend/internal/application/invoice"
)

// Biller manages client invoices
type Biller interface {
	Create(ctx context.Context, firmID, actorID uuid.UUID, req invoiceapp.CreateInvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	GetByID(ctx context.Context, firmID, invoiceID uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter invoiceapp.InvoiceListFilter) ([]invoiceapp.InvoiceResponse, int64, error)
	Update(ctx context.Context, firmID, invoiceID uuid.UUID, req invoiceapp.UpdateInvoiceRequest) (*invoiceapp.InvoiceResponse, error)
	AddTimeEntries(ctx context.Context, firmID, invoiceID uuid.UUID, req invoiceapp.AddTimeEntriesRequest) (*invoiceapp.InvoiceResponse, error)
	RemoveItem(ctx context.Context, firmID, invoiceID, itemID uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	Send(ctx context.Context, firmID, actorID, invoiceID uuid.UUID) (*invoiceapp.SendInvoiceResponse, error)
	Cancel(ctx context.Context, firmID, invoiceID uuid.UUID) (*invoiceapp.InvoiceResponse, error)
	Delete(ctx context.Context, firmID, invoiceID uuid.UUID) error
	RenderPDF(ctx context.Context, firmID, invoiceID uuid.UUID) (*invoiceapp.PDFFile, error)
}

// InvoiceHandler handles client invoices
type InvoiceHandler struct {
	BaseHandler
	invoices Biller
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices Biller) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// Create godoc
// @ID           createInvoice
// @Summary      Create a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        request body invoiceapp.CreateInvoiceRequest true "Invoice"
// @Success      201 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req invoiceapp.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.invoices.Create(c.Request.Context(), firmID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getInvoice
// @Summary      Get an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	h.byID(c, h.invoices.GetByID)
}

// List godoc
// @ID           listInvoices
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Param        search query string false "Number"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        case_id query string false "Case ID" format(uuid)
// @Param        status query string false "Status" Enums(draft, sent, partially_paid, paid, overdue, cancelled)
// @Param        outstanding query bool false "Only invoices with a balance"
// @Param        start_date query string false "Issued from (RFC3339)"
// @Param        end_date query string false "Issued until (RFC3339)"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]invoiceapp.InvoiceResponse]
// @Security     BearerAuth
// @Router       /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var filter invoiceapp.InvoiceListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	invoices, total, err := h.invoices.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, invoices, total, page, size)
}

// Update godoc
// @ID           updateInvoice
// @Summary      Update a draft invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.UpdateInvoiceRequest true "Invoice"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoiceapp.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.invoices.Update(c.Request.Context(), firmID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddTimeEntries godoc
// @ID           billTimeEntries
// @Summary      Bill time entries
// @Description  Adds unbilled time of the invoice's case as lines. An empty list bills all of it.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body invoiceapp.AddTimeEntriesRequest true "Entries"
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/time-entries [post]
func (h *InvoiceHandler) AddTimeEntries(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req invoiceapp.AddTimeEntriesRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	result, err := h.invoices.AddTimeEntries(c.Request.Context(), firmID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RemoveItem godoc
// @ID           removeInvoiceItem
// @Summary      Remove an invoice line
// @Description  Removing a billed time line releases the entry
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        item_id path string true "Item ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/items/{item_id} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}

	result, err := h.invoices.RemoveItem(c.Request.Context(), firmID, invoiceID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Send godoc
// @ID           sendInvoice
// @Summary      Send an invoice
// @Description  Marks the draft sent and emails the client when an address is known. A failed email does not undo the send.
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.SendInvoiceResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) Send(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.invoices.Send(c.Request.Context(), firmID, actorID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelInvoice
// @Summary      Cancel an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[invoiceapp.InvoiceResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/cancel [post]
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.byID(c, h.invoices.Cancel)
}

// Delete godoc
// @ID           deleteInvoice
// @Summary      Delete a draft invoice
// @Tags         invoices
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), firmID, invoiceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// PDF godoc
// @ID           invoicePDF
// @Summary      Download an invoice as PDF
// @Tags         invoices
// @Produce      application/pdf
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.ErrorResponse
// @Failure      503 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/pdf [get]
func (h *InvoiceHandler) PDF(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	file, err := h.invoices.RenderPDF(c.Request.Context(), firmID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Filename))
	c.Data(http.StatusOK, "application/pdf", file.Content)
}

func (h *InvoiceHandler) byID(c *gin.Context, fn func(ctx context.Context, firmID, invoiceID uuid.UUID) (*invoiceapp.InvoiceResponse, error)) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), firmID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
