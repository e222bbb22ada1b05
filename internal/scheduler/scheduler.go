package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/propbill/internal/clock"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/propbill/internal/observability/metrics"
	"github.com/smallbiznis/propbill/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

type Params struct {
	fx.In

	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	CustomerSvc customerdomain.Service
	InvoiceSvc  invoicedomain.Service
	Locker      *ratelimit.Locker `optional:"true"`
	Config      Config            `optional:"true"`
}

type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	genID       *snowflake.Node
	clock       clock.Clock
	customerSvc customerdomain.Service
	invoiceSvc  invoicedomain.Service
	locker      *ratelimit.Locker
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.CustomerSvc == nil || p.InvoiceSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		genID:       p.GenID,
		clock:       p.Clock,
		customerSvc: p.CustomerSvc,
		invoiceSvc:  p.InvoiceSvc,
		locker:      p.Locker,
	}, nil
}

// runJob runs fn under a timeout and records run, duration and error
// metrics. A timed-out job is logged and swallowed so the loop keeps ticking.
func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.beginRun(ctx, name)
	m := obsmetrics.Scheduler()
	m.IncJobRun(name)

	err := fn(ctx)
	m.ObserveJobDuration(name, s.clock.Now().Sub(run.startedAt))
	if owner {
		if err != nil && run.failed == 0 {
			run.failed++
		}
		s.endRun(ctx, run)
	}
	if err == nil {
		return nil
	}

	m.IncJobError(name, err)
	if ctx.Err() != nil {
		m.IncJobTimeout(name)
		s.logger(ctx).Warn("scheduler.job.timeout",
			zap.String("job", name),
			zap.String("run_id", run.id),
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}

// RunOnce runs one bill-due sweep. Losing the lock to another replica is
// not an error.
func (s *Scheduler) RunOnce(parent context.Context) error {
	return s.runJob(parent, JobBillDue, s.cfg.JobTimeout, func(ctx context.Context) error {
		_, err := s.BillDue(ctx)
		if errors.Is(err, ratelimit.ErrLockHeld) {
			obsmetrics.Scheduler().IncDeferred(JobBillDue, obsmetrics.SchedulerJobReasonLockHeld)
			s.logger(ctx).Info("bill_due skipped, another run holds the lock")
			return nil
		}
		return err
	})
}

// RunForever sweeps immediately and then once per RunInterval until ctx is done.
func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	due := s.clock.Now()
	for {
		obsmetrics.Scheduler().ObserveRunLoopLag(s.clock.Now().Sub(due))
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			due = due.Add(s.cfg.RunInterval)
		}
	}
}
