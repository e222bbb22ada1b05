package observability

import (
	"strings"

	"github.com/smallbiznis/propbill/internal/config"
)

// Config is the slice of application config the logger, tracer and meters need.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64

	development bool
}

func LoadConfig(cfg config.Config) Config {
	serviceName := strings.TrimSpace(cfg.AppName)
	if serviceName == "" {
		serviceName = "propbill"
	}
	return Config{
		ServiceName:          serviceName,
		Environment:          strings.TrimSpace(cfg.Environment),
		Version:              strings.TrimSpace(cfg.AppVersion),
		LogLevel:             cfg.Telemetry.LogLevel,
		LogFormat:            cfg.Telemetry.LogFormat,
		OtelEnabled:          cfg.Telemetry.OtelEnabled,
		OtelExporterEndpoint: cfg.Telemetry.OTLPEndpoint,
		OtelExporterProtocol: cfg.Telemetry.OTLPProtocol,
		OtelSamplingRatio:    cfg.Telemetry.SamplingRatio,
		development:          cfg.IsDevelopment(),
	}
}

// Debug turns on verbose request logging and stack traces.
func (c Config) Debug() bool {
	return c.LogLevel == "debug" || c.development
}
