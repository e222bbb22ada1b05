package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func newRegenerateCmd() *cobra.Command {
	var (
		outDir string
		pdf    bool
	)
	cmd := &cobra.Command{
		Use:   "regenerate <invoice-id>",
		Short: "Rebuild a stored invoice document from its frozen values",
		Example: `  # Write the .docx next to the current directory
  propbill regenerate 1790283746238464000

  # Write the PDF summary into ./out
  propbill regenerate 1790283746238464000 --pdf -o out`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var invoices invoicedomain.Service
			return runTask(cmd.Context(), func(ctx context.Context) error {
				render := invoices.Regenerate
				if pdf {
					render = invoices.RenderPDF
				}
				doc, err := render(ctx, args[0])
				if err != nil {
					return err
				}
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return err
				}
				path := filepath.Join(outDir, doc.Filename)
				if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			}, fx.Populate(&invoices))
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", ".", "directory to write the document into")
	cmd.Flags().BoolVar(&pdf, "pdf", false, "write the PDF summary instead of the .docx")
	return cmd
}
