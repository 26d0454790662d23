package payment

import (
	"time"

	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypePaymentCompleted = "SubscriptionPaymentCompleted"
	EventTypePaymentFailed    = "SubscriptionPaymentFailed"
	AggregateTypePayment      = "SubscriptionPayment"
)

// SubscriptionPaymentEvent reports a settled subscription payment
type SubscriptionPaymentEvent struct {
	shared.BaseDomainEvent
	Plan      string          `json:"plan"`
	Months    int             `json:"months"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Provider  string          `json:"provider"`
	Reason    string          `json:"reason,omitempty"`
	PeriodEnd *time.Time      `json:"period_end,omitempty"`
}

func newPaymentEvent(eventType string, p *SubscriptionPayment) *SubscriptionPaymentEvent {
	return &SubscriptionPaymentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypePayment, p.ID, p.FirmID),
		Plan:            string(p.Plan),
		Months:          p.Months,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Provider:        string(p.Provider),
		Reason:          p.FailureReason,
		PeriodEnd:       p.PeriodEnd,
	}
}

// NewSubscriptionPaymentCompletedEvent is raised on success
func NewSubscriptionPaymentCompletedEvent(p *SubscriptionPayment) *SubscriptionPaymentEvent {
	return newPaymentEvent(EventTypePaymentCompleted, p)
}

// NewSubscriptionPaymentFailedEvent is raised on failure
func NewSubscriptionPaymentFailedEvent(p *SubscriptionPayment) *SubscriptionPaymentEvent {
	return newPaymentEvent(EventTypePaymentFailed, p)
}
