package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
)

func TestFilterAttributesDropsCustomerIDs(t *testing.T) {
	attrs := FilterAttributes(
		attribute.String("mode", ModeBatch),
		attribute.String("customer_id", "456"),
		attribute.String("invoice_id", "789"),
		attribute.String("cadence", "monthly"),
	)
	keys := make([]attribute.Key, 0, len(attrs))
	for _, attr := range attrs {
		keys = append(keys, attr.Key)
	}
	assert.ElementsMatch(t, []attribute.Key{"mode", "cadence"}, keys)
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordInvoiceGenerated(ctx, ModeBatch, "monthly", 10)
		m.RecordInvoiceSkipped(ctx, ModeBatch)
		m.RecordInvoiceFailed(ctx, ModeManual, "template_not_found")
		m.RecordEmailSent(ctx, "smtp")
	})
}

func TestNewWithNoopProvider(t *testing.T) {
	m, err := New(Config{ServiceName: "propbill"}, noop.NewMeterProvider())
	require.NoError(t, err)
	m.RecordInvoiceGenerated(context.Background(), ModeManual, "quarterly", 605)
}

func TestDisabledProviderIsNoop(t *testing.T) {
	provider, err := NewProvider(nil, Config{}, nil)
	require.NoError(t, err)
	assert.IsType(t, noop.MeterProvider{}, provider)
}

func TestExporterForRejectsUnknownProtocol(t *testing.T) {
	_, err := exporterFor(Config{ExporterProtocol: "udp"})
	assert.ErrorContains(t, err, "unsupported OTLP protocol")
}
