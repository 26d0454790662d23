package models

import (
	"github.com/google/uuid"
)

// SequenceModel backs per-firm yearly numbering of cases and invoices
type SequenceModel struct {
	FirmID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name   string    `gorm:"type:varchar(20);primaryKey"`
	Year   int       `gorm:"primaryKey"`
	Value  int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SequenceModel) TableName() string {
	return "firm_sequences"
}

// All returns every model, in dependency order, for AutoMigrate in tests and tools
func All() []any {
	return []any{
		&FirmModel{},
		&ProfileModel{},
		&ClientModel{},
		&ContactModel{},
		&CaseModel{},
		&TimeEntryModel{},
		&CalendarEventModel{},
		&DocumentModel{},
		&InvoiceModel{},
		&InvoiceItemModel{},
		&CommunicationModel{},
		&NotificationModel{},
		&SubscriptionPaymentModel{},
		&TransactionModel{},
		&SequenceModel{},
	}
}
