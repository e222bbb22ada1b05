package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "ftp")
	t.Setenv("SCHEDULER_RUN_INTERVAL", "-5m")

	cfg := Load()

	assert.Equal(t, StorageBackendNone, cfg.Storage.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.RunInterval)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "S3")
	t.Setenv("S3_USE_PATH_STYLE", "yes")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SCHEDULER_RUN_INTERVAL", "1h")
	t.Setenv("LOG_LEVEL", " DEBUG ")
	t.Setenv("OTEL_SAMPLING_RATIO", "2")
	t.Setenv("NODE_ID", "7")

	cfg := Load()

	assert.Equal(t, StorageBackendS3, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.S3.UsePathStyle)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, time.Hour, cfg.Scheduler.RunInterval)
	assert.Equal(t, "debug", cfg.Telemetry.LogLevel)
	assert.Equal(t, 0.1, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, int64(7), cfg.NodeID)
}

func TestIsDevelopment(t *testing.T) {
	assert.True(t, Config{Environment: "Local"}.IsDevelopment())
	assert.False(t, Config{Environment: "production"}.IsDevelopment())
}

func TestValidateInvoicingConfig(t *testing.T) {
	require.NoError(t, validateInvoicingConfig(DefaultInvoicingConfig()))

	bad := DefaultInvoicingConfig()
	bad.FontSizePt = 0
	require.Error(t, validateInvoicingConfig(bad))

	bad = DefaultInvoicingConfig()
	bad.TemplateDir = " "
	require.Error(t, validateInvoicingConfig(bad))
}

func TestStaticInvoicingConfigHolder(t *testing.T) {
	cfg := DefaultInvoicingConfig()
	cfg.FontFamily = "Arial"

	holder := NewStaticInvoicingConfigHolder(cfg)
	assert.Equal(t, "Arial", holder.Get().FontFamily)
}
