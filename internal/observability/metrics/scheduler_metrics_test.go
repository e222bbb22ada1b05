package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifySchedulerJobReason(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"deadline":        {context.DeadlineExceeded, SchedulerJobReasonDeadlineExceeded},
		"canceled":        {fmt.Errorf("sweep: %w", context.Canceled), SchedulerJobReasonDeadlineExceeded},
		"lock_timeout":    {&pgconn.PgError{Code: "55P03"}, SchedulerJobReasonDBLockTimeout},
		"serialization":   {&pgconn.PgError{Code: "40001"}, SchedulerJobReasonSerializationFailure},
		"duplicate_gorm":  {gorm.ErrDuplicatedKey, SchedulerJobReasonUniqueViolation},
		"duplicate_pg":    {&pgconn.PgError{Code: "23505"}, SchedulerJobReasonUniqueViolation},
		"template_broken": {errors.New("template_not_found"), SchedulerJobReasonUnknown},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifySchedulerJobReason(tc.err))
		})
	}
}

func TestClassifySchedulerErrorType(t *testing.T) {
	assert.Equal(t, SchedulerErrorTypeBusinessRule, ClassifySchedulerErrorType(gorm.ErrRecordNotFound))
	assert.Equal(t, SchedulerErrorTypeDB, ClassifySchedulerErrorType(&pgconn.PgError{Code: "08006"}))
	assert.Equal(t, SchedulerErrorTypeDeadlineExceeded, ClassifySchedulerErrorType(context.Canceled))
	assert.Equal(t, SchedulerErrorTypeUnknown, ClassifySchedulerErrorType(nil))
}

func TestRecordSweep(t *testing.T) {
	m := newSchedulerMetrics(prometheus.NewRegistry(), Config{ServiceName: "propbill", Environment: "test"})

	m.RecordSweep("bill_due", 4, 3, 1, 0)
	m.RecordSweep("bill_due", 1, 0, 0, 1)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.customers.WithLabelValues("bill_due")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.periods.WithLabelValues("bill_due", OutcomeGenerated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.periods.WithLabelValues("bill_due", OutcomeSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.periods.WithLabelValues("bill_due", OutcomeFailed)))
}

func TestNilSchedulerMetricsIsSafe(t *testing.T) {
	var m *SchedulerMetrics
	assert.NotPanics(t, func() {
		m.IncJobRun("bill_due")
		m.RecordSweep("bill_due", 1, 1, 0, 0)
		m.ObserveRunLoopLag(-1)
	})
}
