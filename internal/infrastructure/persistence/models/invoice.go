package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/invoice"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate
type InvoiceModel struct {
	FirmAggregateModel
	Number     string          `gorm:"type:varchar(30);not null;index"`
	ClientID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CaseID     *uuid.UUID      `gorm:"type:uuid;index"`
	IssueDate  time.Time       `gorm:"not null"`
	DueDate    time.Time       `gorm:"not null;index"`
	Status     invoice.Status  `gorm:"type:varchar(20);not null;index"`
	Subtotal   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Discount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	AmountPaid decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency   string          `gorm:"type:varchar(3);not null"`
	Notes      string          `gorm:"type:text"`
	SentAt     *time.Time
	PaidAt     *time.Time
	Items      []InvoiceItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// InvoiceItemModel is one line of an invoice
type InvoiceItemModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TimeEntryID *uuid.UUID      `gorm:"type:uuid"`
	SortOrder   int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoice.Invoice {
	inv := &invoice.Invoice{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		Number:            m.Number,
		ClientID:          m.ClientID,
		CaseID:            m.CaseID,
		IssueDate:         m.IssueDate,
		DueDate:           m.DueDate,
		Status:            m.Status,
		Subtotal:          m.Subtotal,
		TaxRate:           m.TaxRate,
		TaxAmount:         m.TaxAmount,
		Discount:          m.Discount,
		Total:             m.Total,
		AmountPaid:        m.AmountPaid,
		Currency:          m.Currency,
		Notes:             m.Notes,
		SentAt:            m.SentAt,
		PaidAt:            m.PaidAt,
		Items:             make([]invoice.Item, len(m.Items)),
	}
	for i, item := range m.Items {
		inv.Items[i] = invoice.Item{
			ID:          item.ID,
			InvoiceID:   item.InvoiceID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			TimeEntryID: item.TimeEntryID,
			SortOrder:   item.SortOrder,
		}
	}
	return inv
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoice.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		Number:     inv.Number,
		ClientID:   inv.ClientID,
		CaseID:     inv.CaseID,
		IssueDate:  inv.IssueDate,
		DueDate:    inv.DueDate,
		Status:     inv.Status,
		Subtotal:   inv.Subtotal,
		TaxRate:    inv.TaxRate,
		TaxAmount:  inv.TaxAmount,
		Discount:   inv.Discount,
		Total:      inv.Total,
		AmountPaid: inv.AmountPaid,
		Currency:   inv.Currency,
		Notes:      inv.Notes,
		SentAt:     inv.SentAt,
		PaidAt:     inv.PaidAt,
		Items:      make([]InvoiceItemModel, len(inv.Items)),
	}
	m.FromDomainFirmAggregateRoot(inv.FirmAggregateRoot)
	for i, item := range inv.Items {
		m.Items[i] = InvoiceItemModel{
			ID:          item.ID,
			InvoiceID:   inv.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			TimeEntryID: item.TimeEntryID,
			SortOrder:   item.SortOrder,
		}
	}
	return m
}
