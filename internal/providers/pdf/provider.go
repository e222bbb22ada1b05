package pdf

import "context"

// Provider renders the printable summary of an invoice.
type Provider interface {
	GenerateInvoice(ctx context.Context, data InvoiceData) ([]byte, error)
}
