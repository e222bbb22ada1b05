package main

import (
	"context"

	"github.com/smallbiznis/propbill/internal/migration"
	"github.com/smallbiznis/propbill/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newBillDueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bill-due",
		Short: "Generate invoices for every customer whose next bill date has arrived",
		Example: `  # Run the same sweep the scheduler runs once a day
  propbill bill-due`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var sched *scheduler.Scheduler
			return runTask(cmd.Context(), func(ctx context.Context) error {
				summary, err := sched.BillDue(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			}, migration.Module, fx.Populate(&sched))
		},
	}
}
