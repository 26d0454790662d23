package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	paymentapp "github.com/lexdesk/backend/internal/application/payment"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/logger"
	"github.com/lexdesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// maxCallbackBody caps gateway notification payloads
const maxCallbackBody = 64 << 10

const (
	// CallbackSignatureHeader carries the HMAC some gateways attach to
	// notifications
	CallbackSignatureHeader = "X-Token"
	// StripeSignatureHeader carries Stripe's timestamped webhook signature
	StripeSignatureHeader = "Stripe-Signature"
)

// PaymentProcessor runs subscription payments and invoice collections
type PaymentProcessor interface {
	Providers() paymentapp.ProvidersResponse
	InitiateSubscriptionPayment(ctx context.Context, firmID uuid.UUID, req paymentapp.InitiateSubscriptionPaymentRequest) (*paymentapp.SubscriptionPaymentResponse, error)
	GetSubscriptionPayment(ctx context.Context, firmID, paymentID uuid.UUID) (*paymentapp.SubscriptionPaymentResponse, error)
	RefreshPaymentStatus(ctx context.Context, firmID, paymentID uuid.UUID) (*paymentapp.SubscriptionPaymentResponse, error)
	HandleCallback(ctx context.Context, provider payment.Provider, payload []byte, signature string) (*paymentapp.CallbackResult, error)
	ListSubscriptionPayments(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]paymentapp.SubscriptionPaymentResponse, int64, error)
	ListTransactions(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]paymentapp.TransactionResponse, int64, error)
	ListInvoiceTransactions(ctx context.Context, firmID, invoiceID uuid.UUID) ([]paymentapp.TransactionResponse, error)
	RecordInvoicePayment(ctx context.Context, firmID, invoiceID uuid.UUID, req paymentapp.RecordInvoicePaymentRequest) (*paymentapp.TransactionResponse, error)
}

// PaymentListQuery filters payment and transaction lists
type PaymentListQuery struct {
	Status    string     `form:"status" binding:"omitempty,oneof=pending processing completed failed cancelled"`
	Purpose   string     `form:"purpose" binding:"omitempty,oneof=subscription invoice"`
	Provider  string     `form:"provider" binding:"omitempty,oneof=mtn_momo orange_money cinetpay manual"`
	InvoiceID string     `form:"invoice_id" binding:"omitempty,uuid"`
	StartDate *time.Time `form:"start_date"`
	EndDate   *time.Time `form:"end_date"`
	Page      int        `form:"page" binding:"min=0"`
	PageSize  int        `form:"page_size" binding:"min=0,max=100"`
}

func (q PaymentListQuery) toFilter() shared.Filter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]any),
		From:     q.StartDate,
		To:       q.EndDate,
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	for key, v := range map[string]string{
		"status":     q.Status,
		"purpose":    q.Purpose,
		"provider":   q.Provider,
		"invoice_id": q.InvoiceID,
	} {
		if v != "" {
			f.Filters[key] = v
		}
	}
	return f
}

// PaymentHandler handles subscription payments, gateway callbacks and
// invoice payments
type PaymentHandler struct {
	BaseHandler
	payments PaymentProcessor
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(payments PaymentProcessor) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Providers godoc
// @ID           listPaymentProviders
// @Summary      Payment providers
// @Description  Gateways configured on this deployment and the billing currency
// @Tags         payments
// @Produce      json
// @Success      200 {object} APIResponse[paymentapp.ProvidersResponse]
// @Security     BearerAuth
// @Router       /payments/providers [get]
func (h *PaymentHandler) Providers(c *gin.Context) {
	h.Success(c, h.payments.Providers())
}

// InitiateSubscriptionPayment godoc
// @ID           initiateSubscriptionPayment
// @Summary      Pay for a plan
// @Description  Validate the amount and payer, then start a mobile-money collection or a card checkout
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body paymentapp.InitiateSubscriptionPaymentRequest true "Plan, period and payer"
// @Success      201 {object} APIResponse[paymentapp.SubscriptionPaymentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      422 {object} dto.ErrorResponse
// @Failure      502 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/subscriptions [post]
func (h *PaymentHandler) InitiateSubscriptionPayment(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var req paymentapp.InitiateSubscriptionPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.payments.InitiateSubscriptionPayment(c.Request.Context(), firmID, req)
	if err != nil {
		h.handleGatewayError(c, err)
		return
	}

	h.Created(c, result)
}

// ListSubscriptionPayments godoc
// @ID           listSubscriptionPayments
// @Summary      List plan payments
// @Tags         payments
// @Produce      json
// @Param        status query string false "Status"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]paymentapp.SubscriptionPaymentResponse]
// @Security     BearerAuth
// @Router       /payments/subscriptions [get]
func (h *PaymentHandler) ListSubscriptionPayments(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var query PaymentListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	filter := query.toFilter()

	payments, total, err := h.payments.ListSubscriptionPayments(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// GetSubscriptionPayment godoc
// @ID           getSubscriptionPayment
// @Summary      Get a plan payment
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[paymentapp.SubscriptionPaymentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/subscriptions/{id} [get]
func (h *PaymentHandler) GetSubscriptionPayment(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.payments.GetSubscriptionPayment(c.Request.Context(), firmID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// RefreshPaymentStatus godoc
// @ID           refreshSubscriptionPayment
// @Summary      Refresh a plan payment
// @Description  Query the gateway once and apply the reported status
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} APIResponse[paymentapp.SubscriptionPaymentResponse]
// @Failure      502 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /payments/subscriptions/{id}/refresh [post]
func (h *PaymentHandler) RefreshPaymentStatus(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.payments.RefreshPaymentStatus(c.Request.Context(), firmID, paymentID)
	if err != nil {
		h.handleGatewayError(c, err)
		return
	}

	h.Success(c, result)
}

// ListTransactions godoc
// @ID           listTransactions
// @Summary      List transactions
// @Tags         payments
// @Produce      json
// @Param        purpose query string false "Purpose" Enums(subscription, invoice)
// @Param        status query string false "Status"
// @Param        provider query string false "Provider"
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Param        start_date query string false "From (RFC3339)"
// @Param        end_date query string false "To (RFC3339)"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]paymentapp.TransactionResponse]
// @Security     BearerAuth
// @Router       /payments/transactions [get]
func (h *PaymentHandler) ListTransactions(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var query PaymentListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	filter := query.toFilter()

	txs, total, err := h.payments.ListTransactions(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, txs, total, filter.Page, filter.PageSize)
}

// ListInvoiceTransactions godoc
// @ID           listInvoicePayments
// @Summary      Payments of an invoice
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} APIResponse[[]paymentapp.TransactionResponse]
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [get]
func (h *PaymentHandler) ListInvoiceTransactions(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	txs, err := h.payments.ListInvoiceTransactions(c.Request.Context(), firmID, invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, txs)
}

// RecordInvoicePayment godoc
// @ID           recordInvoicePayment
// @Summary      Record an invoice payment
// @Description  Record money collected outside the gateways. Amounts above the balance are refused.
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body paymentapp.RecordInvoicePaymentRequest true "Payment"
// @Success      201 {object} APIResponse[paymentapp.TransactionResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /invoices/{id}/payments [post]
func (h *PaymentHandler) RecordInvoicePayment(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	invoiceID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req paymentapp.RecordInvoicePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.payments.RecordInvoicePayment(c.Request.Context(), firmID, invoiceID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Callback godoc
// @ID           paymentCallback
// @Summary      Gateway notification
// @Description  Public endpoint called by the payment gateways. Repeated notifications are acknowledged without being applied twice.
// @Tags         payments
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        provider path string true "Provider" Enums(mtn_momo, orange_money, cinetpay)
// @Success      200 {object} APIResponse[paymentapp.CallbackResult]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      404 {object} dto.ErrorResponse
// @Router       /payments/callbacks/{provider} [post]
func (h *PaymentHandler) Callback(c *gin.Context) {
	provider := payment.Provider(c.Param("provider"))

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		h.BadRequest(c, "Unreadable callback body")
		return
	}

	signature := c.GetHeader(CallbackSignatureHeader)
	if signature == "" {
		signature = c.GetHeader(StripeSignatureHeader)
	}
	result, err := h.payments.HandleCallback(c.Request.Context(), provider, payload, signature)
	if err != nil {
		h.handleGatewayError(c, err)
		return
	}

	h.Success(c, result)
}

// handleGatewayError maps gateway sentinels before falling back to the
// domain error mapping
func (h *PaymentHandler) handleGatewayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Payment provider is not configured")
	case errors.Is(err, payment.ErrGatewayInvalidCallback):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid payment notification")
	case errors.Is(err, payment.ErrGatewayUnavailable):
		logger.GetGinLogger(c).Warn("Payment gateway unavailable", zap.Error(err))
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, "Payment provider is temporarily unavailable")
	case errors.Is(err, payment.ErrGatewayRequestFailed), errors.Is(err, payment.ErrGatewayInvalidResponse):
		logger.GetGinLogger(c).Warn("Payment gateway request failed", zap.Error(err))
		h.Error(c, http.StatusBadGateway, dto.ErrCodeGatewayFailed, "Payment provider rejected the request")
	default:
		h.HandleError(c, err)
	}
}
