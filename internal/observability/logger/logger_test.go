package logger

import (
	"context"
	"testing"

	obscontext "github.com/smallbiznis/propbill/internal/observability/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{Format: "Console", Level: " DEBUG "}.withDefaults()
	assert.Equal(t, "propbill", cfg.ServiceName)
	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, 100, cfg.SamplingInitial)

	assert.Equal(t, "json", Config{Format: "logfmt"}.withDefaults().Format)
}

func TestBuildRejectsUnknownLevel(t *testing.T) {
	_, err := Build(Config{Level: "loud"})
	assert.Error(t, err)

	log, err := Build(Config{Level: "warn"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestWithContextAddsIDs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	ctx := obscontext.WithRequestID(context.Background(), "req-3")
	ctx = obscontext.WithCorrelationID(ctx, "run-5")
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	WithContext(ctx, zap.New(core)).Info("bill_due finished")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-3", fields["request_id"])
	assert.Equal(t, "run-5", fields["correlation_id"])
	assert.Equal(t, "scheduler", fields["actor_id"])
	assert.Equal(t, "", fields["trace_id"])
}
