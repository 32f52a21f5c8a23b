package db

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func capture(threshold time.Duration) (*GormLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewGormLogger(base, threshold), &buf
}

func query() (string, int64) {
	return "SELECT * FROM governance_entries", 1
}

func TestTraceLevels(t *testing.T) {
	ctx := context.Background()

	l, buf := capture(time.Second)
	l.Trace(ctx, time.Now(), query, errors.New("connection reset"))
	assert.Contains(t, buf.String(), `"event":"gorm_query_failed"`)
	assert.Contains(t, buf.String(), "connection reset")

	l, buf = capture(time.Millisecond)
	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	assert.Contains(t, buf.String(), `"event":"gorm_slow_query"`)

	l, buf = capture(time.Second)
	l.Trace(ctx, time.Now(), query, gorm.ErrRecordNotFound)
	assert.Contains(t, buf.String(), `"event":"gorm_query"`)
	assert.Contains(t, buf.String(), `"level":"DEBUG"`)
}

func TestSilentModeLogsNothing(t *testing.T) {
	l, buf := capture(time.Millisecond)
	silent := l.LogMode(logger.Silent)
	silent.Trace(context.Background(), time.Now().Add(-time.Second), query, errors.New("boom"))
	silent.Error(context.Background(), "failed %s", "boom")
	assert.Empty(t, buf.String())

	assert.Equal(t, logger.Warn, l.LogLevel)
}

func TestInfoRespectsLevel(t *testing.T) {
	l, buf := capture(0)
	l.Info(context.Background(), "hidden %d", 1)
	assert.Empty(t, buf.String())

	l.LogMode(logger.Info).Info(context.Background(), "shown %d", 2)
	assert.Contains(t, buf.String(), "shown 2")
}
