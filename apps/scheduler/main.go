package main

import (
	"github.com/smallbiznis/propbill/internal/bootstrap"
	"github.com/smallbiznis/propbill/internal/migration"
	"github.com/smallbiznis/propbill/internal/scheduler"
	"go.uber.org/fx"
)

// Scheduler process: no HTTP server, the loop always runs.
func main() {
	fx.New(
		bootstrap.Core(),
		migration.Module,
		scheduler.LoopModule,
	).Run()
}
