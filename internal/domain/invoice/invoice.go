// Package invoice holds client invoices and their line items.
package invoice

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status of an invoice
type Status string

const (
	StatusDraft         Status = "draft"
	StatusSent          Status = "sent"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusOverdue       Status = "overdue"
	StatusCancelled     Status = "cancelled"
)

// IsValid reports whether s is known
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPartiallyPaid, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// IsOutstanding reports whether money is still expected
func (s Status) IsOutstanding() bool {
	return s == StatusSent || s == StatusPartiallyPaid || s == StatusOverdue
}

var hundred = decimal.NewFromInt(100)

// Item is one invoice line
type Item struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	TimeEntryID *uuid.UUID
	SortOrder   int
}

// NewItem validates and prices a line
func NewItem(description string, quantity, unitPrice decimal.Decimal) (Item, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Item{}, shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return Item{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return Item{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return Item{
		ID:          uuid.New(),
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      quantity.Mul(unitPrice).Round(2),
	}, nil
}

// Invoice is a bill sent to a client
type Invoice struct {
	shared.FirmAggregateRoot
	Number     string
	ClientID   uuid.UUID
	CaseID     *uuid.UUID
	IssueDate  time.Time
	DueDate    time.Time
	Status     Status
	Items      []Item
	Subtotal   decimal.Decimal
	TaxRate    decimal.Decimal
	TaxAmount  decimal.Decimal
	Discount   decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	Currency   string
	Notes      string
	SentAt     *time.Time
	PaidAt     *time.Time
}

// FormatNumber builds "INV-<year>-<seq>"
func FormatNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

// NewInvoice creates a draft invoice
func NewInvoice(firmID, clientID uuid.UUID, number string, issueDate, dueDate time.Time, currency string) (*Invoice, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Invoice must reference a client")
	}
	if strings.TrimSpace(number) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if err := validateDates(issueDate, dueDate); err != nil {
		return nil, err
	}
	if len(currency) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	return &Invoice{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Number:            number,
		ClientID:          clientID,
		IssueDate:         issueDate,
		DueDate:           dueDate,
		Status:            StatusDraft,
		Items:             make([]Item, 0),
		Subtotal:          decimal.Zero,
		TaxRate:           decimal.Zero,
		TaxAmount:         decimal.Zero,
		Discount:          decimal.Zero,
		Total:             decimal.Zero,
		AmountPaid:        decimal.Zero,
		Currency:          strings.ToUpper(currency),
	}, nil
}

// IsEditable reports whether lines and terms may change
func (inv *Invoice) IsEditable() bool {
	return inv.Status == StatusDraft
}

// UpdateTerms changes dates, case, tax, discount and notes of a draft
func (inv *Invoice) UpdateTerms(caseID *uuid.UUID, issueDate, dueDate time.Time, taxRate, discount decimal.Decimal, notes string) error {
	if !inv.IsEditable() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE", "Only draft invoices can be modified")
	}
	if err := validateDates(issueDate, dueDate); err != nil {
		return err
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	inv.CaseID = caseID
	inv.IssueDate = issueDate
	inv.DueDate = dueDate
	inv.TaxRate = taxRate
	inv.Discount = discount
	inv.Notes = notes
	if err := inv.recalculate(); err != nil {
		return err
	}
	inv.touch()
	return nil
}

// AddItem appends a line to a draft
func (inv *Invoice) AddItem(item Item) error {
	if !inv.IsEditable() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE", "Only draft invoices can be modified")
	}
	item.InvoiceID = inv.ID
	item.SortOrder = len(inv.Items)
	inv.Items = append(inv.Items, item)
	if err := inv.recalculate(); err != nil {
		inv.Items = inv.Items[:len(inv.Items)-1]
		return err
	}
	inv.touch()
	return nil
}

// ReplaceItems swaps all lines of a draft
func (inv *Invoice) ReplaceItems(items []Item) error {
	if !inv.IsEditable() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE", "Only draft invoices can be modified")
	}
	old := inv.Items
	inv.Items = make([]Item, 0, len(items))
	for i, item := range items {
		item.InvoiceID = inv.ID
		item.SortOrder = i
		inv.Items = append(inv.Items, item)
	}
	if err := inv.recalculate(); err != nil {
		inv.Items = old
		_ = inv.recalculate()
		return err
	}
	inv.touch()
	return nil
}

// RemoveItem drops a line from a draft
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if !inv.IsEditable() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE", "Only draft invoices can be modified")
	}
	for i, item := range inv.Items {
		if item.ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			if err := inv.recalculate(); err != nil {
				return err
			}
			inv.touch()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// TimeEntryIDs returns the time entries billed on this invoice
func (inv *Invoice) TimeEntryIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0)
	for _, item := range inv.Items {
		if item.TimeEntryID != nil {
			ids = append(ids, *item.TimeEntryID)
		}
	}
	return ids
}

// Balance is the amount still due
func (inv *Invoice) Balance() decimal.Decimal {
	b := inv.Total.Sub(inv.AmountPaid)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// Send issues the draft to the client
func (inv *Invoice) Send(now time.Time) error {
	if inv.Status != StatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be sent")
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("INVOICE_EMPTY", "Cannot send an invoice without items")
	}
	inv.Status = StatusSent
	inv.SentAt = &now
	inv.touch()
	inv.AddDomainEvent(NewInvoiceSentEvent(inv))
	return nil
}

// RecordPayment applies amount to the balance. Overpayment is refused.
func (inv *Invoice) RecordPayment(amount decimal.Decimal, now time.Time) error {
	if !inv.Status.IsOutstanding() {
		return shared.NewDomainError("INVALID_STATE", "Invoice does not accept payments in its current state")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if amount.GreaterThan(inv.Balance()) {
		return shared.NewDomainError("OVERPAYMENT", fmt.Sprintf("Payment exceeds the balance of %s %s", inv.Balance().StringFixed(2), inv.Currency))
	}
	inv.AmountPaid = inv.AmountPaid.Add(amount)
	if inv.Balance().IsZero() {
		inv.Status = StatusPaid
		inv.PaidAt = &now
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	} else {
		inv.Status = StatusPartiallyPaid
	}
	inv.touch()
	return nil
}

// MarkOverdue flags an unpaid invoice past its due date. It returns false
// when nothing changed.
func (inv *Invoice) MarkOverdue(now time.Time) bool {
	if inv.Status != StatusSent && inv.Status != StatusPartiallyPaid {
		return false
	}
	if !now.After(endOfDay(inv.DueDate)) {
		return false
	}
	inv.Status = StatusOverdue
	inv.touch()
	inv.AddDomainEvent(NewInvoiceOverdueEvent(inv))
	return true
}

// Cancel voids the invoice. Paid or partially paid invoices cannot be cancelled.
func (inv *Invoice) Cancel() error {
	switch inv.Status {
	case StatusCancelled:
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	case StatusPaid, StatusPartiallyPaid:
		return shared.NewDomainError("INVALID_STATE", "Invoices with payments cannot be cancelled")
	}
	if inv.AmountPaid.IsPositive() {
		return shared.NewDomainError("INVALID_STATE", "Invoices with payments cannot be cancelled")
	}
	inv.Status = StatusCancelled
	inv.touch()
	return nil
}

func (inv *Invoice) recalculate() error {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	if inv.Discount.GreaterThan(subtotal) && len(inv.Items) > 0 {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the subtotal")
	}
	discount := inv.Discount
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	taxable := subtotal.Sub(discount)
	inv.Subtotal = subtotal
	inv.TaxAmount = taxable.Mul(inv.TaxRate).Div(hundred).Round(2)
	inv.Total = taxable.Add(inv.TaxAmount)
	return nil
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

func validateDates(issueDate, dueDate time.Time) error {
	if issueDate.IsZero() || dueDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Issue and due dates are required")
	}
	if dueDate.Before(issueDate) {
		return shared.NewDomainError("INVALID_DATE", "Due date cannot be before the issue date")
	}
	return nil
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
