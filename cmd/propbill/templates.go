package main

import (
	"context"
	"fmt"

	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage invoice .docx templates",
	}
	cmd.AddCommand(newTemplatesListCmd(), newTemplatesInitCmd(), newTemplatesInspectCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List templates in the configured template directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var templates templatedomain.Service
			return runTask(cmd.Context(), func(ctx context.Context) error {
				items, err := templates.List(ctx)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), items)
			}, fx.Populate(&templates))
		},
	}
}

func newTemplatesInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [name]",
		Short: "Write the built-in invoice template if it does not exist yet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := settingsdomain.DefaultTemplateName
			if len(args) == 1 {
				name = args[0]
			}
			var templates templatedomain.Service
			return runTask(cmd.Context(), func(ctx context.Context) error {
				created, err := templates.EnsureDefault(ctx, name)
				if err != nil {
					return err
				}
				if created {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", name)
				} else {
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", name)
				}
				return err
			}, fx.Populate(&templates))
		},
	}
}

func newTemplatesInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show which placeholders a template uses, misses or does not recognise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var templates templatedomain.Service
			return runTask(cmd.Context(), func(ctx context.Context) error {
				inspection, err := templates.Inspect(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), inspection)
			}, fx.Populate(&templates))
		},
	}
}
