package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/propbill/internal/billing/fee"
)

// GenerationMode distinguishes user driven generation from the daily sweep.
type GenerationMode string

const (
	ModeManual GenerationMode = "manual"
	ModeBatch  GenerationMode = "batch"
)

type GenerateRequest struct {
	CustomerID   string
	InvoiceDate  time.Time
	TemplateName string
	// Overrides is nil in batch mode.
	Overrides *fee.Overrides
}

func (r GenerateRequest) Mode() GenerationMode {
	if r.Overrides == nil {
		return ModeBatch
	}
	return ModeManual
}

// Document is a rendered invoice file ready for download or attachment.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

type GenerateResult struct {
	Invoice  Invoice
	Document Document
}

type ToggleStatusRequest struct {
	ID string
	// PaidDate applies when the invoice becomes paid; nil means today.
	PaidDate *time.Time
}

type Service interface {
	Generate(context.Context, GenerateRequest) (*GenerateResult, error)
	Regenerate(ctx context.Context, id string) (*Document, error)
	RenderPDF(ctx context.Context, id string) (*Document, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	// List orders by customer name then invoice date descending; orphaned invoices sort last.
	List(context.Context) ([]ListItem, error)
	ExistsForPeriod(ctx context.Context, customerID string, periodLabel string) (bool, error)
	ToggleStatus(context.Context, ToggleStatusRequest) (Invoice, error)
	Delete(ctx context.Context, id string) error
	Clear(context.Context) (int64, error)
	Send(ctx context.Context, id string) (Invoice, error)
}

var (
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCustomerID  = errors.New("invalid_customer_id")
	ErrInvalidInvoiceDate = errors.New("invalid_invoice_date")
	ErrInvalidPaidDate    = errors.New("invalid_paid_date")
	ErrNotFound           = errors.New("invoice_not_found")
	ErrAlreadyExists      = errors.New("invoice_exists")
	ErrCustomerNotFound   = errors.New("customer_not_found")
	ErrTemplateNotFound   = errors.New("template_not_found")
	ErrNoRecipient        = errors.New("customer_has_no_email")
	ErrSendThrottled      = errors.New("send_throttled")
	ErrEmailNotConfigured = errors.New("email_not_configured")
)
