package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/propbill/internal/billing/fee"
	"github.com/smallbiznis/propbill/internal/billing/lineitem"
	"github.com/smallbiznis/propbill/internal/billing/period"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/propbill/internal/invoice/domain"
	invoiceformat "github.com/smallbiznis/propbill/internal/invoice/format"
	"github.com/smallbiznis/propbill/internal/providers/pdf"
	settingsdomain "github.com/smallbiznis/propbill/internal/settings/domain"
)

const pdfContentType = "application/pdf"

// RenderPDF produces a one page summary from the frozen invoice values. Orphaned
// invoices render with the unknown customer fallback.
func (s *Service) RenderPDF(ctx context.Context, id string) (*invoicedomain.Document, error) {
	if s.pdf == nil {
		return nil, errors.New("pdf_not_configured")
	}

	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	var customer *customerdomain.Customer
	if invoice.CustomerID != nil {
		loaded, err := s.loadCustomer(ctx, invoice.CustomerID.String())
		switch {
		case err == nil:
			customer = &loaded
		case errors.Is(err, invoicedomain.ErrCustomerNotFound):
		default:
			return nil, err
		}
	}

	settings, err := s.settingsSvc.Get(ctx)
	if err != nil {
		return nil, err
	}

	data, err := s.pdf.GenerateInvoice(ctx, buildPDFData(invoice, customer, settings, s.invoicing.Get().FallbackSenderName))
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	filename := invoice.Filename
	if filename == "" {
		filename = fmt.Sprintf("Invoice_%s.docx", invoice.ID.String())
	}
	return &invoicedomain.Document{
		Filename:    invoiceformat.PDFFilename(filename),
		ContentType: pdfContentType,
		Data:        data,
	}, nil
}

func buildPDFData(invoice *invoicedomain.Invoice, customer *customerdomain.Customer, settings settingsdomain.Settings, fallbackSender string) pdf.InvoiceData {
	cadence := period.Cadence("")
	feeType := customerdomain.DefaultFeeType
	billTo := pdf.InvoiceData{BillToName: invoicedomain.UnknownCustomerName}
	if customer != nil {
		cadence = customer.CadenceValue()
		feeType = customer.FeeTypeLabel()
		billTo.BillToName = customer.Name
		billTo.BillToEmail = customer.Email
		billTo.BillToAddress = joinNonEmpty(", ",
			customer.PropertyAddress,
			customer.PropertyCity,
			strings.TrimSpace(customer.PropertyState+" "+customer.PropertyZip),
		)
	}

	p := period.For(invoice.Date(), cadence)
	p.Label = invoice.PeriodLabel
	fees := invoice.FrozenFees()

	items := []pdf.InvoiceItem{{
		Description: fmt.Sprintf("%s %s (%s)", p.Label, feeType, p.DatesString()),
		Amount:      lineitem.FormatUSD(invoice.BaseAmount),
	}}
	for _, f := range []struct {
		item     fee.Fee
		fallback string
	}{
		{fees.Fee2, lineitem.DefaultFeeLabel},
		{fees.Fee3, lineitem.DefaultFeeLabel},
		{fees.Additional, lineitem.DefaultAdditionalLabel},
	} {
		if !f.item.Applied() {
			continue
		}
		items = append(items, pdf.InvoiceItem{
			Description: labelOr(f.item.Type, f.fallback),
			Amount:      lineitem.FormatUSD(f.item.Amount),
		})
	}
	for _, prop := range invoice.PropertyFees {
		if prop.Amount.IsZero() {
			continue
		}
		items = append(items, pdf.InvoiceItem{
			Description: fmt.Sprintf("%s (%s)", lineitem.PropertyFeeLabel, prop.Address),
			Amount:      lineitem.FormatUSD(prop.Amount),
		})
	}

	data := billTo
	data.SenderName = settings.Sender(fallbackSender)
	data.SenderEmail = settings.SenderEmail
	data.InvoiceNumber = invoice.ID.String()
	data.InvoiceDate = period.FormatDate(invoice.Date())
	data.Period = p.Label
	data.PeriodDates = p.DatesString()
	data.Status = string(invoice.Status)
	if invoice.PaidDate != nil {
		data.PaidDate = period.FormatDate(time.Time(*invoice.PaidDate))
	}
	data.Items = items
	data.Total = lineitem.FormatUSD(invoice.ComputedTotal)
	return data
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return strings.Join(out, sep)
}

func labelOr(label, fallback string) string {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	return fallback
}
