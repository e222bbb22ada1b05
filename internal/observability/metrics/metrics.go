package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the OTLP meter provider and the prometheus const labels.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Generation modes used as the "mode" attribute.
const (
	ModeBatch  = "batch"
	ModeManual = "manual"
)

const exportInterval = 10 * time.Second

// Metrics holds the invoicing instruments. A nil *Metrics records nothing.
type Metrics struct {
	generated metric.Int64Counter
	skipped   metric.Int64Counter
	failed    metric.Int64Counter
	emails    metric.Int64Counter
	total     metric.Float64Histogram
}

// NewProvider installs the global meter provider. Without OTEL_ENABLED it is
// a no-op and nothing leaves the process.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := exporterFor(cfg)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(
		sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(exportInterval)),
	))
	otel.SetMeterProvider(provider)

	if log == nil {
		log = zap.NewNop()
	}
	log.Info("otlp metrics exporter configured",
		zap.String("endpoint", cfg.ExporterEndpoint),
		zap.String("protocol", cfg.ExporterProtocol),
	)
	if lc != nil {
		lc.Append(fx.StopHook(provider.Shutdown))
	}
	return provider, nil
}

// New creates the invoicing instruments on the service meter.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "propbill"
	}
	meter := provider.Meter(name)

	m := &Metrics{}
	for target, instrument := range map[*metric.Int64Counter]string{
		&m.generated: "propbill_invoices_generated_total",
		&m.skipped:   "propbill_invoices_skipped_total",
		&m.failed:    "propbill_invoices_failed_total",
		&m.emails:    "propbill_invoice_emails_sent_total",
	} {
		counter, err := meter.Int64Counter(instrument)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", instrument, err)
		}
		*target = counter
	}

	total, err := meter.Float64Histogram("propbill_invoice_total_amount", metric.WithUnit("USD"))
	if err != nil {
		return nil, fmt.Errorf("create invoice total histogram: %w", err)
	}
	m.total = total
	return m, nil
}

// RecordInvoiceGenerated counts a persisted invoice and observes its total.
func (m *Metrics) RecordInvoiceGenerated(ctx context.Context, mode, cadence string, total float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(FilterAttributes(
		attribute.String("mode", mode),
		attribute.String("cadence", strings.TrimSpace(cadence)),
	)...)
	m.generated.Add(ctx, 1, attrs)
	m.total.Record(ctx, total, attrs)
}

// RecordInvoiceSkipped counts periods that already had an invoice.
func (m *Metrics) RecordInvoiceSkipped(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.skipped.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("mode", mode))...))
}

// RecordInvoiceFailed counts failed generation attempts by reason code.
func (m *Metrics) RecordInvoiceFailed(ctx context.Context, mode, reason string) {
	if m == nil {
		return
	}
	m.failed.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("mode", mode),
		attribute.String("reason", strings.TrimSpace(reason)),
	)...))
}

func (m *Metrics) RecordEmailSent(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.emails.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attribute.String("provider", provider))...))
}

func exporterFor(cfg Config) (sdkmetric.Exporter, error) {
	ctx := context.Background()
	endpoint := strings.TrimSpace(cfg.ExporterEndpoint)

	switch protocol := strings.ToLower(strings.TrimSpace(cfg.ExporterProtocol)); protocol {
	case "", "grpc", "grpc/protobuf":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case "http", "http/protobuf":
		var opts []otlpmetrichttp.Option
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Attribute keys allowed on invoicing metrics. Customer and invoice ids
// never become labels.
var allowedLabelKeys = map[attribute.Key]bool{
	"mode":        true,
	"cadence":     true,
	"reason":      true,
	"provider":    true,
	"status_code": true,
}

// FilterAttributes keeps only low-cardinality attribute keys.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	kept := attrs[:0:0]
	for _, attr := range attrs {
		if allowedLabelKeys[attr.Key] {
			kept = append(kept, attr)
		}
	}
	return kept
}
