package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics counts domain events and background job runs. It
// subscribes to the event bus like any other handler.
type BusinessMetrics struct {
	events         metric.Int64Counter
	paymentAmount  metric.Float64Counter
	jobRuns        metric.Int64Counter
	jobDuration    metric.Float64Histogram
	jobItemsFailed metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	m := &BusinessMetrics{}
	var err error
	if m.events, err = meter.Int64Counter("lexdesk.domain_events",
		metric.WithDescription("Domain events published"),
		metric.WithUnit("{event}")); err != nil {
		return nil, fmt.Errorf("domain_events counter: %w", err)
	}
	if m.paymentAmount, err = meter.Float64Counter("lexdesk.subscription_revenue",
		metric.WithDescription("Amount collected from completed subscription payments")); err != nil {
		return nil, fmt.Errorf("subscription_revenue counter: %w", err)
	}
	if m.jobRuns, err = meter.Int64Counter("lexdesk.scheduler.runs",
		metric.WithDescription("Background job runs"),
		metric.WithUnit("{run}")); err != nil {
		return nil, fmt.Errorf("scheduler.runs counter: %w", err)
	}
	if m.jobDuration, err = meter.Float64Histogram("lexdesk.scheduler.duration",
		metric.WithDescription("Background job duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.5, 1, 5, 15, 60, 300)); err != nil {
		return nil, fmt.Errorf("scheduler.duration histogram: %w", err)
	}
	if m.jobItemsFailed, err = meter.Int64Counter("lexdesk.scheduler.items_failed",
		metric.WithDescription("Items a background job could not process"),
		metric.WithUnit("{item}")); err != nil {
		return nil, fmt.Errorf("scheduler.items_failed counter: %w", err)
	}
	return m, nil
}

// EventTypes subscribes to every event
func (m *BusinessMetrics) EventTypes() []string {
	return nil
}

// Handle counts the event. It never fails.
func (m *BusinessMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event_type", event.EventType()),
		attribute.String("aggregate_type", event.AggregateType()),
	))
	if e, ok := event.(*payment.SubscriptionPaymentEvent); ok && e.EventType() == payment.EventTypePaymentCompleted {
		amount, _ := e.Amount.Float64()
		m.paymentAmount.Add(ctx, amount, metric.WithAttributes(
			attribute.String("currency", e.Currency),
			attribute.String("provider", e.Provider),
			attribute.String("plan", e.Plan),
		))
	}
	return nil
}

// RecordJob records one background job run
func (m *BusinessMetrics) RecordJob(ctx context.Context, job string, elapsed time.Duration, failedItems int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(attribute.String("job", job), attribute.String("status", status))
	m.jobRuns.Add(ctx, 1, attrs)
	m.jobDuration.Record(ctx, elapsed.Seconds(), attrs)
	if failedItems > 0 {
		m.jobItemsFailed.Add(ctx, int64(failedItems), metric.WithAttributes(attribute.String("job", job)))
	}
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
