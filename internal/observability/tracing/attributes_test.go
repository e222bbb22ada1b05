package tracing

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/attribute"
)

func TestSafeAttributesDropsPersonalData(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("customer.email", "tenant@example.com"),
		attribute.String("invoice.period", "March 2025"),
	)
	assert.Len(t, attrs, 1)
	assert.Equal(t, attribute.Key("invoice.period"), attrs[0].Key)
}

func TestSafeErrorTruncates(t *testing.T) {
	err := SafeError(errors.New(strings.Repeat("x", 400)))
	assert.Len(t, err.Error(), 256)
	assert.Nil(t, SafeError(nil))
}
