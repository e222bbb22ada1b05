package observability

import (
	"testing"

	"github.com/smallbiznis/propbill/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDebug(t *testing.T) {
	prod := LoadConfig(config.Config{Environment: "production", Telemetry: config.TelemetryConfig{LogLevel: "info"}})
	assert.Equal(t, "propbill", prod.ServiceName)
	assert.False(t, prod.Debug())

	verbose := LoadConfig(config.Config{Environment: "production", Telemetry: config.TelemetryConfig{LogLevel: "debug"}})
	assert.True(t, verbose.Debug())

	local := LoadConfig(config.Config{AppName: "billing", Environment: "local"})
	assert.Equal(t, "billing", local.ServiceName)
	assert.True(t, local.Debug())
}

func TestSplitConfig(t *testing.T) {
	cfg := LoadConfig(config.Config{
		AppVersion:  "1.2.0",
		Environment: "local",
		Telemetry: config.TelemetryConfig{
			LogFormat:     "console",
			OtelEnabled:   true,
			OTLPEndpoint:  "collector:4317",
			SamplingRatio: 0.25,
		},
	})

	out := splitConfig(cfg)
	assert.Equal(t, "console", out.Logger.Format)
	assert.True(t, out.Logger.IncludeStackOnError)
	assert.Equal(t, "1.2.0", out.Tracing.ServiceVersion)
	assert.Equal(t, 0.25, out.Tracing.SamplingRatio)
	assert.True(t, out.Metrics.Enabled)
	assert.Equal(t, "collector:4317", out.Metrics.ExporterEndpoint)
}
