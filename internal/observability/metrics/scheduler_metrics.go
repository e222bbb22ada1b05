package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Error types attached to scheduler log lines.
const (
	SchedulerErrorTypeDeadlineExceeded = "deadline_exceeded"
	SchedulerErrorTypeBusinessRule     = "business_rule"
	SchedulerErrorTypeDB               = "db"
	SchedulerErrorTypeUnknown          = "unknown"
)

// Reasons used as the job_errors and deferred label values.
const (
	SchedulerJobReasonDeadlineExceeded     = "deadline_exceeded"
	SchedulerJobReasonDBLockTimeout        = "db_lock_timeout"
	SchedulerJobReasonSerializationFailure = "serialization_failure"
	SchedulerJobReasonUniqueViolation      = "unique_violation"
	SchedulerJobReasonLockHeld             = "lock_held"
	SchedulerJobReasonUnknown              = "unknown"
)

// Outcomes of a single billing period during a bill-due sweep.
const (
	OutcomeGenerated = "generated"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

var durationBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// SchedulerMetrics captures bill-due sweep health signals.
type SchedulerMetrics struct {
	jobRuns      *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	jobTimeouts  *prometheus.CounterVec
	jobErrors    *prometheus.CounterVec
	deferred     *prometheus.CounterVec
	customers    *prometheus.CounterVec
	periods      *prometheus.CounterVec
	iterationCap *prometheus.CounterVec
	runLoopLag   prometheus.Observer
}

var (
	schedulerMetricsOnce sync.Once
	schedulerMetrics     *SchedulerMetrics
)

// Scheduler returns the process-wide scheduler metrics.
func Scheduler() *SchedulerMetrics {
	return SchedulerWithConfig(Config{})
}

// SchedulerWithConfig registers the scheduler metrics on first use. Later
// calls return the same instance regardless of cfg.
func SchedulerWithConfig(cfg Config) *SchedulerMetrics {
	schedulerMetricsOnce.Do(func() {
		schedulerMetrics = newSchedulerMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return schedulerMetrics
}

func ResetSchedulerMetricsForTest() {
	schedulerMetricsOnce = sync.Once{}
	schedulerMetrics = nil
}

func constLabels(cfg Config) prometheus.Labels {
	service := strings.TrimSpace(cfg.ServiceName)
	if service == "" {
		service = "propbill"
	}
	env := strings.TrimSpace(cfg.Environment)
	if env == "" {
		env = "unknown"
	}
	return prometheus.Labels{"service": service, "env": env}
}

func newSchedulerMetrics(registerer prometheus.Registerer, cfg Config) *SchedulerMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	labels := constLabels(cfg)
	counter := func(name, help string, keys ...string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "propbill_" + name,
			Help:        help,
			ConstLabels: labels,
		}, keys)
	}

	m := &SchedulerMetrics{
		jobRuns:      counter("scheduler_job_runs_total", "Scheduler job runs by name.", "job"),
		jobTimeouts:  counter("scheduler_job_timeouts_total", "Scheduler jobs that hit their timeout.", "job"),
		jobErrors:    counter("scheduler_job_errors_total", "Scheduler job errors by low-cardinality reason.", "job", "reason"),
		deferred:     counter("scheduler_runs_deferred_total", "Scheduler runs skipped before doing any work.", "job", "reason"),
		customers:    counter("bill_due_customers_total", "Customers found due by the bill-due sweep.", "job"),
		periods:      counter("bill_due_periods_total", "Billing periods visited by the bill-due sweep, by outcome.", "job", "outcome"),
		iterationCap: counter("bill_due_iteration_cap_total", "Customers whose catch-up loop stopped at the iteration cap.", "job"),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "propbill_scheduler_job_duration_seconds",
			Help:        "Scheduler job latency.",
			Buckets:     durationBuckets,
			ConstLabels: labels,
		}, []string{"job"}),
	}
	lag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "propbill_scheduler_runloop_lag_seconds",
		Help:        "How late a scheduler tick started compared to its interval.",
		Buckets:     durationBuckets,
		ConstLabels: labels,
	})
	m.runLoopLag = lag

	registerer.MustRegister(
		m.jobRuns, m.jobDuration, m.jobTimeouts, m.jobErrors, m.deferred,
		m.customers, m.periods, m.iterationCap, lag,
	)
	return m
}

func (m *SchedulerMetrics) IncJobRun(job string) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}

func (m *SchedulerMetrics) IncJobTimeout(job string) {
	if m == nil {
		return
	}
	m.jobTimeouts.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) IncJobError(job string, err error) {
	if m == nil || err == nil {
		return
	}
	m.jobErrors.WithLabelValues(job, ClassifySchedulerJobReason(err)).Inc()
}

func (m *SchedulerMetrics) IncDeferred(job, reason string) {
	if m == nil {
		return
	}
	m.deferred.WithLabelValues(job, reason).Inc()
}

// RecordSweep adds the totals of one finished bill-due sweep.
func (m *SchedulerMetrics) RecordSweep(job string, customers, generated, skipped, failed int) {
	if m == nil {
		return
	}
	m.customers.WithLabelValues(job).Add(float64(customers))
	for outcome, n := range map[string]int{
		OutcomeGenerated: generated,
		OutcomeSkipped:   skipped,
		OutcomeFailed:    failed,
	} {
		if n > 0 {
			m.periods.WithLabelValues(job, outcome).Add(float64(n))
		}
	}
}

func (m *SchedulerMetrics) IncIterationCap(job string) {
	if m == nil {
		return
	}
	m.iterationCap.WithLabelValues(job).Inc()
}

func (m *SchedulerMetrics) ObserveRunLoopLag(lag time.Duration) {
	if m == nil {
		return
	}
	m.runLoopLag.Observe(max(lag, 0).Seconds())
}

// ClassifySchedulerErrorType returns a low-cardinality error type for logging.
func ClassifySchedulerErrorType(err error) string {
	switch {
	case err == nil:
		return SchedulerErrorTypeUnknown
	case isCancellation(err):
		return SchedulerErrorTypeDeadlineExceeded
	case isDBError(err):
		return SchedulerErrorTypeDB
	default:
		return SchedulerErrorTypeBusinessRule
	}
}

// ClassifySchedulerJobReason maps job errors to a metric label value.
func ClassifySchedulerJobReason(err error) string {
	switch {
	case err == nil:
		return SchedulerJobReasonUnknown
	case isCancellation(err):
		return SchedulerJobReasonDeadlineExceeded
	case pgCode(err) == "55P03":
		return SchedulerJobReasonDBLockTimeout
	case pgCode(err) == "40001":
		return SchedulerJobReasonSerializationFailure
	case errors.Is(err, gorm.ErrDuplicatedKey), pgCode(err) == "23505":
		return SchedulerJobReasonUniqueViolation
	default:
		return SchedulerJobReasonUnknown
	}
}

func isCancellation(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isDBError(err error) bool {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false
	}
	for _, target := range []error{
		gorm.ErrInvalidDB,
		gorm.ErrInvalidTransaction,
		gorm.ErrInvalidData,
		gorm.ErrMissingWhereClause,
		gorm.ErrDuplicatedKey,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return pgCode(err) != ""
}
