package scheduler

import (
	"context"
	"time"

	obscontext "github.com/smallbiznis/propbill/internal/observability/context"
	obslogger "github.com/smallbiznis/propbill/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/propbill/internal/observability/metrics"
	"go.uber.org/zap"
)

// jobRun tracks one execution of a job. The run id doubles as the
// correlation id so every log line and span of a sweep can be joined.
type jobRun struct {
	job       string
	id        string
	startedAt time.Time
	processed int
	failed    int
}

type jobRunKey struct{}

// beginRun attaches a run to ctx unless an outer job already owns one.
// The boolean reports ownership; only the owner logs start and finish.
func (s *Scheduler) beginRun(ctx context.Context, job string) (context.Context, *jobRun, bool) {
	if ctx == nil {
		ctx = context.Background()
	}
	if run, ok := ctx.Value(jobRunKey{}).(*jobRun); ok && run != nil {
		return ctx, run, false
	}

	run := &jobRun{
		job:       job,
		id:        s.genID.Generate().String(),
		startedAt: s.clock.Now(),
	}
	ctx = context.WithValue(ctx, jobRunKey{}, run)
	ctx = obscontext.WithActor(ctx, "system", "scheduler")
	ctx = obscontext.WithCorrelationID(ctx, run.id)

	s.logger(ctx).Info("scheduler.job.start",
		zap.String("job", run.job),
		zap.String("run_id", run.id),
	)
	return ctx, run, true
}

func (s *Scheduler) endRun(ctx context.Context, run *jobRun) {
	fields := []zap.Field{
		zap.String("job", run.job),
		zap.String("run_id", run.id),
		zap.Int64("duration_ms", s.clock.Now().Sub(run.startedAt).Milliseconds()),
		zap.Int("processed_count", run.processed),
		zap.Int("error_count", run.failed),
	}
	if run.failed > 0 {
		s.logger(ctx).Warn("scheduler.job.finish", fields...)
		return
	}
	s.logger(ctx).Info("scheduler.job.finish", fields...)
}

func (s *Scheduler) logger(ctx context.Context) *zap.Logger {
	return obslogger.WithContext(ctx, s.log)
}

// customerFailed records a per-customer failure against the run. The sweep
// carries on with the next customer.
func (s *Scheduler) customerFailed(ctx context.Context, run *jobRun, customerID, msg string, err error, fields ...zap.Field) {
	run.failed++
	s.logger(ctx).Error(msg, append([]zap.Field{
		zap.String("job", run.job),
		zap.String("customer_id", customerID),
		zap.String("error_type", obsmetrics.ClassifySchedulerErrorType(err)),
		zap.Error(err),
	}, fields...)...)
}
