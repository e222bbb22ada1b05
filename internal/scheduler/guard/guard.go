package guard

import (
	"errors"
	"time"

	"github.com/smallbiznis/propbill/internal/billing/period"
)

var (
	ErrNotDue         = errors.New("customer_not_due")
	ErrUnknownCadence = errors.New("unknown_cadence")
)

// EnsureCustomerDue passes when the next bill date is on or before today.
func EnsureCustomerDue(nextBillDate, today time.Time) error {
	if nextBillDate.IsZero() || nextBillDate.After(today) {
		return ErrNotDue
	}
	return nil
}

// EnsureCadenceAdvances passes when the cadence has a next-date rule.
func EnsureCadenceAdvances(cadence period.Cadence) error {
	if !cadence.Known() {
		return ErrUnknownCadence
	}
	return nil
}
