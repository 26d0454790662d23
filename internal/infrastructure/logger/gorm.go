package logger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogConfig controls statement logging
type SQLLogConfig struct {
	Level gormlogger.LogLevel
	// SlowThreshold logs statements at warn once exceeded; zero disables it
	SlowThreshold time.Duration
	// MaxStatementLength truncates logged SQL; bulk invoice inserts get long
	MaxStatementLength int
}

// SQLLogger is GORM's logger on top of zap. Record-not-found results are
// never logged: repositories turn them into shared.ErrNotFound.
type SQLLogger struct {
	logger *zap.Logger
	cfg    SQLLogConfig
}

// NewSQLLogger creates an SQLLogger named "sql"
func NewSQLLogger(base *zap.Logger, cfg SQLLogConfig) *SQLLogger {
	if base == nil {
		base = zap.NewNop()
	}
	if cfg.MaxStatementLength <= 0 {
		cfg.MaxStatementLength = 2000
	}
	return &SQLLogger{logger: base.Named("sql"), cfg: cfg}
}

// LogMode returns a copy at level
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.cfg.Level = level
	return &cp
}

func (l *SQLLogger) Info(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Info, msg, data...)
}

func (l *SQLLogger) Warn(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Warn, msg, data...)
}

func (l *SQLLogger) Error(ctx context.Context, msg string, data ...any) {
	l.printf(ctx, gormlogger.Error, msg, data...)
}

func (l *SQLLogger) printf(ctx context.Context, level gormlogger.LogLevel, msg string, data ...any) {
	if l.cfg.Level < level {
		return
	}
	text := fmt.Sprintf(msg, data...)
	fields := l.contextFields(ctx)
	switch level {
	case gormlogger.Error:
		l.logger.Error(text, fields...)
	case gormlogger.Warn:
		l.logger.Warn(text, fields...)
	default:
		l.logger.Info(text, fields...)
	}
}

// Trace logs one statement. Failures go to error, slow statements to
// warn, and at Info level every statement goes to debug.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	elapsed := time.Since(begin)
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	var msg string
	switch {
	case failed && l.cfg.Level >= gormlogger.Error:
		msg = "Query failed"
	case slow && l.cfg.Level >= gormlogger.Warn:
		msg = "Slow query"
	case l.cfg.Level >= gormlogger.Info:
		msg = "Query"
	default:
		return
	}

	statement, rows := fc()
	fields := append(l.contextFields(ctx),
		zap.String("sql", l.truncate(statement)),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed))

	switch msg {
	case "Query failed":
		l.logger.Error(msg, append(fields, zap.Error(err))...)
	case "Slow query":
		l.logger.Warn(msg, append(fields, zap.Duration("threshold", l.cfg.SlowThreshold))...)
	default:
		l.logger.Debug(msg, fields...)
	}
}

func (l *SQLLogger) contextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	for _, kv := range [][2]string{
		{"request_id", GetRequestID(ctx)},
		{"firm_id", GetFirmID(ctx)},
		{"profile_id", GetUserID(ctx)},
		{"trace_id", GetTraceID(ctx)},
	} {
		if kv[1] != "" {
			fields = append(fields, zap.String(kv[0], kv[1]))
		}
	}
	return fields
}

func (l *SQLLogger) truncate(statement string) string {
	if len(statement) <= l.cfg.MaxStatementLength {
		return statement
	}
	cut := l.cfg.MaxStatementLength
	for cut > 0 && !utf8.RuneStart(statement[cut]) {
		cut--
	}
	return statement[:cut] + "...(truncated)"
}

// ParseSQLLevel maps the application log level onto GORM's. Debug logs
// every statement; anything unknown logs only slow and failed ones.
func ParseSQLLevel(level string) gormlogger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent", "off":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

var _ gormlogger.Interface = (*SQLLogger)(nil)
