package invoice

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// ItemRequest is a manual invoice line
type ItemRequest struct {
	Description string          `json:"description" binding:"required,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest creates a draft. The issue date defaults to today,
// the due date to 30 days later and the currency to the firm's.
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID        `json:"client_id" binding:"required"`
	CaseID    *uuid.UUID       `json:"case_id"`
	IssueDate *time.Time       `json:"issue_date"`
	DueDate   *time.Time       `json:"due_date"`
	TaxRate   *decimal.Decimal `json:"tax_rate"`
	Discount  *decimal.Decimal `json:"discount"`
	Currency  string           `json:"currency" binding:"omitempty,len=3"`
	Notes     string           `json:"notes" binding:"max=2000"`
	Items     []ItemRequest    `json:"items" binding:"omitempty,dive"`
}

// UpdateInvoiceRequest changes a draft's terms. Items, when given, replace
// the manual lines; lines billed from time entries are kept.
type UpdateInvoiceRequest struct {
	CaseID    *uuid.UUID       `json:"case_id"`
	IssueDate time.Time        `json:"issue_date" binding:"required"`
	DueDate   time.Time        `json:"due_date" binding:"required"`
	TaxRate   *decimal.Decimal `json:"tax_rate"`
	Discount  *decimal.Decimal `json:"discount"`
	Notes     string           `json:"notes" binding:"max=2000"`
	Items     []ItemRequest    `json:"items" binding:"omitempty,dive"`
}

// AddTimeEntriesRequest bills unbilled time of the invoice's case. An
// empty list bills every unbilled billable entry.
type AddTimeEntriesRequest struct {
	EntryIDs []uuid.UUID `json:"entry_ids"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search      string     `form:"search"`
	ClientID    string     `form:"client_id" binding:"omitempty,uuid"`
	CaseID      string     `form:"case_id" binding:"omitempty,uuid"`
	Status      string     `form:"status" binding:"omitempty,oneof=draft sent partially_paid paid overdue cancelled"`
	Outstanding bool       `form:"outstanding"`
	StartDate   *time.Time `form:"start_date"`
	EndDate     *time.Time `form:"end_date"`
	Page        int        `form:"page" binding:"min=0"`
	PageSize    int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ItemResponse is an invoice line in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	TimeEntryID *uuid.UUID      `json:"time_entry_id,omitempty"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	ClientID   uuid.UUID       `json:"client_id"`
	CaseID     *uuid.UUID      `json:"case_id,omitempty"`
	IssueDate  time.Time       `json:"issue_date"`
	DueDate    time.Time       `json:"due_date"`
	Status     string          `json:"status"`
	Items      []ItemResponse  `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
	Discount   decimal.Decimal `json:"discount"`
	Total      decimal.Decimal `json:"total"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Balance    decimal.Decimal `json:"balance"`
	Currency   string          `json:"currency"`
	Notes      string          `json:"notes,omitempty"`
	SentAt     *time.Time      `json:"sent_at,omitempty"`
	PaidAt     *time.Time      `json:"paid_at,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToInvoiceResponse converts a domain invoice
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	items := make([]ItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = ItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			TimeEntryID: item.TimeEntryID,
		}
	}
	return InvoiceResponse{
		ID:         inv.ID,
		Number:     inv.Number,
		ClientID:   inv.ClientID,
		CaseID:     inv.CaseID,
		IssueDate:  inv.IssueDate,
		DueDate:    inv.DueDate,
		Status:     string(inv.Status),
		Items:      items,
		Subtotal:   inv.Subtotal,
		TaxRate:    inv.TaxRate,
		TaxAmount:  inv.TaxAmount,
		Discount:   inv.Discount,
		Total:      inv.Total,
		AmountPaid: inv.AmountPaid,
		Balance:    inv.Balance(),
		Currency:   inv.Currency,
		Notes:      inv.Notes,
		SentAt:     inv.SentAt,
		PaidAt:     inv.PaidAt,
		CreatedAt:  inv.CreatedAt,
		UpdatedAt:  inv.UpdatedAt,
	}
}

// SendInvoiceResponse reports the sent invoice and whether the client
// was emailed
type SendInvoiceResponse struct {
	Invoice         InvoiceResponse `json:"invoice"`
	Emailed         bool            `json:"emailed"`
	CommunicationID *uuid.UUID      `json:"communication_id,omitempty"`
	EmailError      string          `json:"email_error,omitempty"`
}

// PDFFile is a rendered invoice
type PDFFile struct {
	Filename string
	Content  []byte
}

// OverdueRun reports one pass of the overdue job
type OverdueRun struct {
	Checked int
	Marked  int
	Failed  int
}
