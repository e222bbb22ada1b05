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

func TestDescribeSQL(t *testing.T) {
	cases := []struct {
		sql   string
		op    string
		table string
	}{
		{`SELECT * FROM "invoices" WHERE customer_id = $1`, "SELECT", "invoices"},
		{"  insert into `customers` (name) values (?)", "INSERT", "customers"},
		{`UPDATE "customers" SET next_bill_date = $1`, "UPDATE", "customers"},
		{`DELETE FROM properties WHERE id = ?`, "DELETE", "properties"},
		{"", "UNKNOWN", ""},
	}
	for _, tc := range cases {
		op, table := describeSQL(tc.sql)
		assert.Equal(t, tc.op, op, tc.sql)
		assert.Equal(t, tc.table, table, tc.sql)
	}
}

func TestTraceLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig())
	query := func() (string, int64) { return `SELECT * FROM "settings"`, 1 }
	ctx := context.Background()

	l.Trace(ctx, time.Now(), query, nil)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now(), query, gormlogger.ErrRecordNotFound)
	assert.Zero(t, logs.Len())

	l.Trace(ctx, time.Now().Add(-time.Second), query, nil)
	l.Trace(ctx, time.Now(), query, errors.New("database is locked"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "settings", entries[0].ContextMap()["table"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestLogModeSilences(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewGormLogger(zap.New(core), DefaultGormLoggerConfig()).LogMode(gormlogger.Silent)

	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("boom"))
	l.Error(context.Background(), "boom")
	assert.Zero(t, logs.Len())
}
