package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// SubscriptionPaymentRepository persists subscription payments
type SubscriptionPaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SubscriptionPayment, error)
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*SubscriptionPayment, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]SubscriptionPayment, int64, error)
	InFlightChecker
	Save(ctx context.Context, p *SubscriptionPayment) error
}

// TransactionRepository persists payment transactions
type TransactionRepository interface {
	FindByIDForFirm(ctx context.Context, firmID, id uuid.UUID) (*Transaction, error)
	// FindByExternalID resolves gateway callbacks, which carry no firm
	FindByExternalID(ctx context.Context, provider Provider, externalID string) (*Transaction, error)
	FindByProviderReference(ctx context.Context, provider Provider, reference string) (*Transaction, error)
	FindAllForFirm(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]Transaction, int64, error)
	FindByInvoice(ctx context.Context, firmID, invoiceID uuid.UUID) ([]Transaction, error)
	Save(ctx context.Context, t *Transaction) error
	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, t *Transaction) error
}
