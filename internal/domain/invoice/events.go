package invoice

import (
	"time"

	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeInvoiceSent    = "InvoiceSent"
	EventTypeInvoicePaid    = "InvoicePaid"
	EventTypeInvoiceOverdue = "InvoiceOverdue"
	AggregateTypeInvoice    = "Invoice"
)

// InvoiceEvent carries what notifications need about an invoice
type InvoiceEvent struct {
	shared.BaseDomainEvent
	Number   string          `json:"number"`
	ClientID string          `json:"client_id"`
	Total    decimal.Decimal `json:"total"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	DueDate  time.Time       `json:"due_date"`
}

func newInvoiceEvent(eventType string, inv *Invoice) *InvoiceEvent {
	return &InvoiceEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeInvoice, inv.ID, inv.FirmID),
		Number:          inv.Number,
		ClientID:        inv.ClientID.String(),
		Total:           inv.Total,
		Balance:         inv.Balance(),
		Currency:        inv.Currency,
		DueDate:         inv.DueDate,
	}
}

// NewInvoiceSentEvent is raised when a draft is sent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceEvent {
	return newInvoiceEvent(EventTypeInvoiceSent, inv)
}

// NewInvoicePaidEvent is raised when the balance reaches zero
func NewInvoicePaidEvent(inv *Invoice) *InvoiceEvent {
	return newInvoiceEvent(EventTypeInvoicePaid, inv)
}

// NewInvoiceOverdueEvent is raised by the overdue sweep
func NewInvoiceOverdueEvent(inv *Invoice) *InvoiceEvent {
	return newInvoiceEvent(EventTypeInvoiceOverdue, inv)
}
