package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/payment"
	"github.com/lexdesk/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, "test", zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, p.Traces)
	assert.Nil(t, p.Metrics)
	assert.Nil(t, p.Logs)
	assert.NoError(t, p.Shutdown(context.Background()))

	logger := zap.NewNop()
	assert.Same(t, logger, p.BridgeLogger(logger, zapcore.InfoLevel))
	p.EnableSpanProfiles()
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.25).Description(), sampler(0.25).Description())
}

func TestBusinessMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)
	ctx := context.Background()

	p := payment.NewSubscriptionPayment(uuid.New(), firm.PlanProfessional, 3, decimal.NewFromInt(75000), "XAF", payment.ProviderMTNMoMo, "237670000000")
	require.NoError(t, m.Handle(ctx, payment.NewSubscriptionPaymentCompletedEvent(p)))
	require.NoError(t, m.Handle(ctx, payment.NewSubscriptionPaymentFailedEvent(p)))
	m.RecordJob(ctx, "invoice_overdue", 120*time.Millisecond, 2, nil)
	m.RecordJob(ctx, "subscription_sweep", time.Second, 0, errors.New("db down"))

	got := collect(t, reader)

	events := got["lexdesk.domain_events"].Data.(metricdata.Sum[int64])
	var total int64
	for _, dp := range events.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(2), total)

	revenue := got["lexdesk.subscription_revenue"].Data.(metricdata.Sum[float64])
	require.Len(t, revenue.DataPoints, 1)
	assert.Equal(t, 75000.0, revenue.DataPoints[0].Value)

	runs := got["lexdesk.scheduler.runs"].Data.(metricdata.Sum[int64])
	assert.Len(t, runs.DataPoints, 2)

	failed := got["lexdesk.scheduler.items_failed"].Data.(metricdata.Sum[int64])
	require.Len(t, failed.DataPoints, 1)
	assert.Equal(t, int64(2), failed.DataPoints[0].Value)
}

func TestStartSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	ctx, span := StartSpan(context.Background(), "scheduler.invoice_overdue")
	assert.NotEmpty(t, TraceID(ctx))
	EndSpan(span, errors.New("boom"))

	_, ok := StartSpan(context.Background(), "ok")
	EndSpan(ok, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Len(t, spans[0].Events(), 1)
	assert.Equal(t, codes.Ok, spans[1].Status().Code)

	assert.Empty(t, TraceID(context.Background()))
}
