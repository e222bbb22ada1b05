package main

import (
	"github.com/smallbiznis/propbill/internal/bootstrap"
	"github.com/smallbiznis/propbill/internal/migration"
	"github.com/smallbiznis/propbill/internal/scheduler"
	"github.com/smallbiznis/propbill/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when SCHEDULER_ENABLED is set, the daily bill-due sweep",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				bootstrap.Core(),
				migration.Module,
				server.Module,
				scheduler.RunnerModule,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}
