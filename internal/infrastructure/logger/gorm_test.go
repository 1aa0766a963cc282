package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func sqlTrace() (string, int64) {
	return `SELECT * FROM "ledger_payments" ORDER BY id`, 3
}

func TestGormLogger_Trace(t *testing.T) {
	newLogger := func(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
		core, logs := observer.New(zapcore.DebugLevel)
		return NewGormLogger(zap.New(core), level, opts...), logs
	}

	t.Run("query at info level", func(t *testing.T) {
		l, logs := newLogger(gormlogger.Info)
		ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-7")
		l.Trace(ctx, time.Now(), sqlTrace, nil)

		entries := logs.FilterMessage("SQL").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "gorm", entries[0].LoggerName)
		assert.Equal(t, int64(3), entries[0].ContextMap()["rows"])
		assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])
	})

	t.Run("slow query", func(t *testing.T) {
		l, logs := newLogger(gormlogger.Warn, WithSlowThreshold(time.Millisecond))
		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlTrace, nil)
		assert.Equal(t, 1, logs.FilterMessage("Slow SQL").Len())
	})

	t.Run("errors", func(t *testing.T) {
		l, logs := newLogger(gormlogger.Error)
		l.Trace(context.Background(), time.Now(), sqlTrace, errors.New("relation does not exist"))
		l.Trace(context.Background(), time.Now(), sqlTrace, gormlogger.ErrRecordNotFound)
		assert.Equal(t, 1, logs.FilterMessage("SQL error").Len())
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("silent", func(t *testing.T) {
		l, logs := newLogger(gormlogger.Info)
		l.LogMode(gormlogger.Silent).Trace(context.Background(), time.Now(), sqlTrace, errors.New("x"))
		assert.Equal(t, 0, logs.Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("anything"))
}
