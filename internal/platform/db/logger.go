package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const logModule = "internal/platform/db"

// GormLogger routes gorm logging onto slog. Queries log at debug, slow
// queries and failures at warn.
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
	logger        *slog.Logger
}

func NewGormLogger(base *slog.Logger, slowThreshold time.Duration) *GormLogger {
	if base == nil {
		base = slog.Default()
	}
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      logger.Warn,
		logger:        base,
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	next := *l
	next.LogLevel = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		l.logger.InfoContext(ctx, fmt.Sprintf(msg, data...), l.attrs("gorm_info")...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		l.logger.WarnContext(ctx, fmt.Sprintf(msg, data...), l.attrs("gorm_warn")...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		l.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...), l.attrs("gorm_error")...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.LogLevel >= logger.Error:
		l.logger.WarnContext(ctx, "database query failed", append(l.attrs("gorm_query_failed"),
			"sql", sql,
			"duration", elapsed,
			"rows_affected", rows,
			"error", err.Error(),
		)...)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		l.logger.WarnContext(ctx, "slow query detected", append(l.attrs("gorm_slow_query"),
			"sql", sql,
			"duration", elapsed,
			"rows_affected", rows,
			"threshold", l.SlowThreshold,
		)...)
	default:
		l.logger.DebugContext(ctx, "query executed", append(l.attrs("gorm_query"),
			"sql", sql,
			"duration", elapsed,
			"rows_affected", rows,
		)...)
	}
}

func (l *GormLogger) attrs(event string) []any {
	return []any{
		"event", event,
		"module", logModule,
		"layer", "platform",
	}
}

var _ logger.Interface = (*GormLogger)(nil)
