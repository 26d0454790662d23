package messaging

import (
	"context"
	"fmt"

	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/invoice"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// NotificationEventHandler turns domain events into in-app notifications
type NotificationEventHandler struct {
	notifications *NotificationService
	logger        *zap.Logger
}

// NewNotificationEventHandler creates the handler
func NewNotificationEventHandler(notifications *NotificationService, logger *zap.Logger) *NotificationEventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationEventHandler{notifications: notifications, logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationEventHandler) EventTypes() []string {
	return []string{
		payment.EventTypePaymentCompleted,
		payment.EventTypePaymentFailed,
		firm.EventTypeSubscriptionExpired,
		invoice.EventTypeInvoiceOverdue,
		matter.EventTypeCaseStatusChanged,
	}
}

// Handle creates the notification matching event
func (h *NotificationEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	in, ok := h.input(event)
	if !ok {
		h.logger.Debug("Ignoring event", zap.String("event_type", event.EventType()))
		return nil
	}
	if _, err := h.notifications.Notify(ctx, in); err != nil {
		h.logger.Error("Failed to create notification",
			zap.String("event_type", event.EventType()),
			zap.String("firm_id", event.FirmID().String()),
			zap.Error(err))
		return err
	}
	return nil
}

func (h *NotificationEventHandler) input(event shared.DomainEvent) (NotifyInput, bool) {
	switch e := event.(type) {
	case *payment.SubscriptionPaymentEvent:
		in := NotifyInput{
			FirmID: e.FirmID(),
			Link:   "/subscription",
			Data: map[string]any{
				"Amount":    e.Amount,
				"Currency":  e.Currency,
				"Plan":      e.Plan,
				"Provider":  e.Provider,
				"Reason":    e.Reason,
				"PeriodEnd": e.PeriodEnd,
			},
			Email: true,
		}
		if e.EventType() == payment.EventTypePaymentCompleted {
			in.Type = messaging.TypePaymentSucceeded
		} else {
			in.Type = messaging.TypePaymentFailed
			in.Priority = messaging.PriorityHigh
		}
		return in, true

	case *firm.SubscriptionExpiredEvent:
		return NotifyInput{
			FirmID:   e.FirmID(),
			Type:     messaging.TypeSubscriptionExpired,
			Link:     "/subscription",
			Priority: messaging.PriorityHigh,
			Data:     map[string]any{"Plan": e.Plan},
			Email:    true,
		}, true

	case *invoice.InvoiceEvent:
		if e.EventType() != invoice.EventTypeInvoiceOverdue {
			return NotifyInput{}, false
		}
		return NotifyInput{
			FirmID:   e.FirmID(),
			Type:     messaging.TypeInvoiceOverdue,
			Link:     fmt.Sprintf("/invoices/%s", e.AggregateID()),
			Priority: messaging.PriorityHigh,
			Data: map[string]any{
				"Number":   e.Number,
				"DueDate":  e.DueDate,
				"Balance":  e.Balance,
				"Currency": e.Currency,
			},
		}, true

	case *matter.CaseStatusChangedEvent:
		return NotifyInput{
			FirmID:    e.FirmID(),
			ProfileID: e.AssignedTo,
			Type:      messaging.TypeCaseStatusChanged,
			Link:      fmt.Sprintf("/cases/%s", e.AggregateID()),
			Data: map[string]any{
				"Reference": e.Reference,
				"Title":     e.Title,
				"From":      string(e.From),
				"To":        string(e.To),
			},
			Email: e.AssignedTo != nil,
		}, true
	}
	return NotifyInput{}, false
}

var _ shared.EventHandler = (*NotificationEventHandler)(nil)
