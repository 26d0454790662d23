package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/lexdesk/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type queryStartKey struct{}

// InstrumentGorm adds otelgorm spans and slow query logging to db
func InstrumentGorm(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled || !cfg.DBTraceEnabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.DBLogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	w := &slowQueryWatcher{threshold: cfg.DBSlowQueryThresh, logger: logger}
	cb := db.Callback()
	hooks := []struct {
		before, after func(string) error
	}{
		{
			before: func(n string) error { return cb.Create().Before("gorm:create").Register(n, w.start) },
			after:  func(n string) error { return cb.Create().After("gorm:create").Register(n, w.finish) },
		},
		{
			before: func(n string) error { return cb.Query().Before("gorm:query").Register(n, w.start) },
			after:  func(n string) error { return cb.Query().After("gorm:query").Register(n, w.finish) },
		},
		{
			before: func(n string) error { return cb.Update().Before("gorm:update").Register(n, w.start) },
			after:  func(n string) error { return cb.Update().After("gorm:update").Register(n, w.finish) },
		},
		{
			before: func(n string) error { return cb.Delete().Before("gorm:delete").Register(n, w.start) },
			after:  func(n string) error { return cb.Delete().After("gorm:delete").Register(n, w.finish) },
		},
		{
			before: func(n string) error { return cb.Raw().Before("gorm:raw").Register(n, w.start) },
			after:  func(n string) error { return cb.Raw().After("gorm:raw").Register(n, w.finish) },
		},
	}
	for _, h := range hooks {
		if err := h.before("lexdesk:slow_query_start"); err != nil {
			return err
		}
		if err := h.after("lexdesk:slow_query_finish"); err != nil {
			return err
		}
	}
	logger.Info("Database tracing enabled",
		zap.Bool("full_sql", cfg.DBLogFullSQL),
		zap.Duration("slow_query_threshold", cfg.DBSlowQueryThresh))
	return nil
}

type slowQueryWatcher struct {
	threshold time.Duration
	logger    *zap.Logger
}

func (w *slowQueryWatcher) start(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (w *slowQueryWatcher) finish(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	started, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(started)
	span := trace.SpanFromContext(ctx)
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) && span.IsRecording() {
		span.RecordError(db.Error)
	}
	if w.threshold <= 0 || elapsed < w.threshold {
		return
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.duration_ms", elapsed.Milliseconds()))
	}
	w.logger.Warn("Slow query",
		zap.String("table", db.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", db.Statement.RowsAffected),
		zap.String("trace_id", TraceID(ctx)))
}
