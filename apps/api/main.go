package main

import (
	"github.com/smallbiznis/propbill/internal/bootstrap"
	"github.com/smallbiznis/propbill/internal/migration"
	"github.com/smallbiznis/propbill/internal/server"
	"go.uber.org/fx"
)

// API process. The sweep loop runs in apps/scheduler; POST /api/run-today
// still triggers a single sweep here.
func main() {
	fx.New(
		bootstrap.Core(),
		migration.Module,
		server.Module,
	).Run()
}
