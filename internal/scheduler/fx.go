package scheduler

import (
	"context"

	"github.com/smallbiznis/propbill/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
)

// RunnerModule starts the sweep loop when SCHEDULER_ENABLED is set. Used by
// the combined serve command.
var RunnerModule = fx.Module("scheduler.runner",
	fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, sched *Scheduler) {
		if cfg.Scheduler.Enabled {
			StartLoop(lc, sched)
		}
	}),
)

// LoopModule always starts the sweep loop. Used by the dedicated scheduler
// process.
var LoopModule = fx.Module("scheduler.loop",
	fx.Invoke(StartLoop),
)

// StartLoop runs RunForever for the lifetime of the app and waits for the
// in-flight sweep to return on stop.
func StartLoop(lc fx.Lifecycle, sched *Scheduler) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				sched.RunForever(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
			}
			return nil
		},
	})
}
