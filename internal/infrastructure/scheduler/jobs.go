package scheduler

import (
	"context"
	"time"

	"github.com/lexdesk/backend/internal/application/calendar"
	"github.com/lexdesk/backend/internal/application/invoice"
	"github.com/lexdesk/backend/internal/application/subscription"
	"go.uber.org/zap"
)

// Job names as reported in logs and metrics
const (
	JobSubscriptionSweep = "subscription_sweep"
	JobEventReminders    = "event_reminders"
	JobInvoiceOverdue    = "invoice_overdue"
)

// SubscriptionSweeper expires lapsed firms and sends expiry notices
type SubscriptionSweeper interface {
	Sweep(ctx context.Context) (subscription.SweepResult, error)
}

// ReminderSender sends calendar reminders
type ReminderSender interface {
	SendReminders(ctx context.Context, horizon time.Duration) (calendar.ReminderRun, error)
}

// OverdueMarker flags unpaid invoices past their due date
type OverdueMarker interface {
	MarkOverdue(ctx context.Context) (invoice.OverdueRun, error)
}

// SubscriptionSweepJob wraps the subscription lifecycle sweep
func SubscriptionSweepJob(svc SubscriptionSweeper, logger *zap.Logger) Job {
	return Job{Name: JobSubscriptionSweep, Run: func(ctx context.Context) (int, error) {
		res, err := svc.Sweep(ctx)
		if logger != nil {
			logger.Debug("Subscription sweep",
				zap.Int("scanned", res.Scanned),
				zap.Int("reminders_sent", res.RemindersSent),
				zap.Int("grace_notices", res.GraceNotices),
				zap.Int("expired", res.Expired))
		}
		return res.Failed, err
	}}
}

// EventRemindersJob wraps calendar reminder delivery
func EventRemindersJob(svc ReminderSender, horizon time.Duration, logger *zap.Logger) Job {
	if horizon <= 0 {
		horizon = 24 * time.Hour
	}
	return Job{Name: JobEventReminders, Run: func(ctx context.Context) (int, error) {
		run, err := svc.SendReminders(ctx, horizon)
		if logger != nil {
			logger.Debug("Event reminders",
				zap.Int("checked", run.Checked),
				zap.Int("sent", run.Sent))
		}
		return run.Failed, err
	}}
}

// InvoiceOverdueJob wraps overdue marking
func InvoiceOverdueJob(svc OverdueMarker, logger *zap.Logger) Job {
	return Job{Name: JobInvoiceOverdue, Run: func(ctx context.Context) (int, error) {
		run, err := svc.MarkOverdue(ctx)
		if logger != nil {
			logger.Debug("Invoice overdue",
				zap.Int("checked", run.Checked),
				zap.Int("marked", run.Marked))
		}
		return run.Failed, err
	}}
}
