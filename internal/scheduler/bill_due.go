package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/propbill/internal/billing/period"
	"github.com/smallbiznis/propbill/internal/clock"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/propbill/internal/observability/metrics"
	"github.com/smallbiznis/propbill/internal/scheduler/guard"
	"go.uber.org/zap"
)

const (
	JobBillDue = "bill_due"

	// maxCatchUpIterations bounds the per-customer loop even if date
	// advancement stops making progress.
	maxCatchUpIterations = 12

	billDueLockKey = "propbill:lock:bill_due"
)

// Summary counts the outcome of one bill-due sweep.
type Summary struct {
	Customers int `json:"customers"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// BillDue generates invoices for every customer whose next bill date is on or
// before today, catching up missed periods one at a time. Runs are serialized
// across processes when a locker is configured.
func (s *Scheduler) BillDue(ctx context.Context) (Summary, error) {
	var summary Summary
	err := s.locker.WithLock(ctx, billDueLockKey, s.cfg.LockTTL, func(ctx context.Context) error {
		var err error
		summary, err = s.billDue(ctx)
		return err
	})
	return summary, err
}

func (s *Scheduler) billDue(ctx context.Context) (Summary, error) {
	ctx, run, owner := s.beginRun(ctx, JobBillDue)
	if owner {
		defer s.endRun(ctx, run)
	}

	today := clock.Today(s.clock)
	customers, err := s.customerSvc.ListDue(ctx, today)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Customers: len(customers)}
	for _, customer := range customers {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		s.billCustomer(ctx, run, customer, today, &summary)
		run.processed++
	}

	obsmetrics.Scheduler().RecordSweep(JobBillDue, summary.Customers, summary.Generated, summary.Skipped, summary.Failed)

	s.logger(ctx).Info("bill_due finished",
		zap.Int("customers", summary.Customers),
		zap.Int("generated", summary.Generated),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// billCustomer walks one customer forward period by period. A failed period
// leaves the next bill date where it is so the next sweep retries it.
func (s *Scheduler) billCustomer(ctx context.Context, run *jobRun, customer customerdomain.Customer, today time.Time, summary *Summary) {
	cadence := customer.CadenceValue()
	next := time.Time(customer.NextBillDate)
	log := s.logger(ctx).With(
		zap.String("customer_id", customer.ID.String()),
		zap.String("cadence", string(cadence)),
	)

	for iteration := 0; guard.EnsureCustomerDue(next, today) == nil; iteration++ {
		if iteration == maxCatchUpIterations {
			obsmetrics.Scheduler().IncIterationCap(JobBillDue)
			log.Warn("catch-up stopped at iteration cap",
				zap.Int("iterations", maxCatchUpIterations),
				zap.Time("next_bill_date", next),
			)
			return
		}

		label := period.Label(next, cadence)
		exists, err := s.invoiceSvc.ExistsForPeriod(ctx, customer.ID.String(), label)
		if err != nil {
			summary.Failed++
			s.customerFailed(ctx, run, customer.ID.String(), "period lookup failed", err, zap.String("period", label))
			return
		}

		if exists {
			summary.Skipped++
			log.Info("invoice already exists, skipping", zap.String("period", label))
		} else {
			_, err := s.invoiceSvc.Generate(ctx, invoicedomain.GenerateRequest{
				CustomerID:  customer.ID.String(),
				InvoiceDate: next,
			})
			switch {
			case err == nil:
				summary.Generated++
				log.Info("invoice generated", zap.String("period", label))
			case errors.Is(err, invoicedomain.ErrAlreadyExists):
				summary.Skipped++
				log.Info("invoice already exists, skipping", zap.String("period", label))
			default:
				summary.Failed++
				s.customerFailed(ctx, run, customer.ID.String(), "invoice generation failed", err, zap.String("period", label))
				return
			}
		}

		if err := guard.EnsureCadenceAdvances(cadence); err != nil {
			log.Warn("next bill date not advanced", zap.Error(err))
			return
		}
		advanced, _ := period.Next(next, cadence)
		if err := s.customerSvc.SetNextBillDate(ctx, customer.ID.String(), advanced); err != nil {
			summary.Failed++
			s.customerFailed(ctx, run, customer.ID.String(), "advance next bill date failed", err, zap.Time("next_bill_date", advanced))
			return
		}
		next = advanced
	}
}
