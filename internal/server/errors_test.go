package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/smallbiznis/propbill/internal/billing/fee"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	"github.com/smallbiznis/propbill/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := map[string]struct {
		err    error
		status int
		typ    string
	}{
		"wrapped not found":  {fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound, "not_found"},
		"sweep lock":         {ratelimit.ErrLockHeld, http.StatusConflict, "conflict"},
		"throttled send":     {invoicedomain.ErrSendThrottled, http.StatusTooManyRequests, "too_many_requests"},
		"smtp missing":       {invoicedomain.ErrEmailNotConfigured, http.StatusServiceUnavailable, "service_unavailable"},
		"unclassified error": {assert.AnError, http.StatusInternalServerError, "internal_error"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestMapErrorFieldSentinel(t *testing.T) {
	status, payload := mapError(fee.ErrInvalidMode)
	assert.Equal(t, http.StatusBadRequest, status)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "override_mode", payload.Errors[0].Field)
	assert.Equal(t, "invalid_override_mode", payload.Errors[0].Code)

	_, payload = mapError(invoicedomain.ErrNoRecipient)
	require.Len(t, payload.Errors, 1)
	assert.Empty(t, payload.Errors[0].Field)
	assert.Equal(t, "customer has no email address", payload.Errors[0].Message)
}

func TestConflictMessages(t *testing.T) {
	_, payload := mapError(invoicedomain.ErrAlreadyExists)
	assert.Equal(t, "an invoice already exists for this period", payload.Message)
}
