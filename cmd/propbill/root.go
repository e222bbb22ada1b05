package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "propbill",
		Short: "Recurring invoices for property management customers",
		Long: `propbill keeps a list of customers and their properties, generates
Word invoices from a .docx template on each customer's billing cadence,
and serves the same operations over an HTTP API.

Configuration is read from the environment (and .env when present).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newBillDueCmd(),
		newMigrateCmd(),
		newRegenerateCmd(),
		newTemplatesCmd(),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
