// Package render turns a customer snapshot and a .docx template into a filled invoice.
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/billing/fee"
	"github.com/smallbiznis/propbill/internal/billing/lineitem"
	"github.com/smallbiznis/propbill/internal/billing/period"
	"github.com/smallbiznis/propbill/internal/cache"
	"github.com/smallbiznis/propbill/internal/config"
	customerdomain "github.com/smallbiznis/propbill/internal/customer/domain"
	"github.com/smallbiznis/propbill/internal/docx"
	invoiceformat "github.com/smallbiznis/propbill/internal/invoice/format"
	templatedomain "github.com/smallbiznis/propbill/internal/invoicetemplate/domain"
	"go.uber.org/zap"
)

var ErrTemplateMissing = errors.New("template_missing")

// Input is everything one assembly needs. Settings values arrive here
// explicitly so the assembler never reads shared state.
type Input struct {
	Customer    customerdomain.Customer
	InvoiceDate time.Time
	// PeriodLabel replaces the derived label when regenerating a stored invoice.
	PeriodLabel string
	Base        decimal.Decimal
	Defaults    fee.Set
	// Overrides is nil in batch mode and during regeneration.
	Overrides  *fee.Overrides
	Properties []lineitem.PropertyFee
	Template   *templatedomain.Loaded
	SenderName string
	Style      docx.Style
}

// Computation is the template independent part of an assembly.
type Computation struct {
	Period       period.Period
	Fees         fee.Set
	Lines        lineitem.Result
	Values       map[string]string
	Filename     string
	EmailSubject string
	EmailBody    string
}

type Result struct {
	Computation
	Document []byte
	Report   docx.Report
}

// Compute derives the period, resolves fees, and builds totals and placeholder values.
func Compute(in Input) Computation {
	customer := in.Customer
	p := period.For(in.InvoiceDate, customer.CadenceValue())
	if in.PeriodLabel != "" {
		p.Label = in.PeriodLabel
	}

	fees := fee.Resolve(in.Defaults, in.Overrides)
	lines := lineitem.Build(lineitem.Input{
		Base:       in.Base,
		Fees:       fees,
		Properties: in.Properties,
		Period:     p,
	})
	total := lineitem.FormatUSD(lines.Total)

	values := map[string]string{
		templatedomain.PlaceholderCustomerName:      customer.Name,
		templatedomain.PlaceholderCustomerEmail:     customer.Email,
		templatedomain.PlaceholderPropertyAddress:   customer.PropertyAddress,
		templatedomain.PlaceholderPropertyCity:      customer.PropertyCity,
		templatedomain.PlaceholderPropertyState:     customer.PropertyState,
		templatedomain.PlaceholderPropertyZip:       customer.PropertyZip,
		templatedomain.PlaceholderPeriod:            p.Label,
		templatedomain.PlaceholderPeriodDates:       p.DatesString(),
		templatedomain.PlaceholderAmount:            lineitem.FormatUSD(in.Base),
		templatedomain.PlaceholderInvoiceDate:       period.FormatDate(in.InvoiceDate),
		templatedomain.PlaceholderFeeType:           customer.FeeTypeLabel(),
		templatedomain.PlaceholderTotalAmount:       total,
		templatedomain.PlaceholderFeeLine2:          lines.FeeLine2,
		templatedomain.PlaceholderFeeLine3:          lines.FeeLine3,
		templatedomain.PlaceholderAdditionalFeeLine: lines.AdditionalLine,
	}

	return Computation{
		Period:       p,
		Fees:         fees,
		Lines:        lines,
		Values:       values,
		Filename:     invoiceformat.Filename(p.Label, customer.PropertyAddress),
		EmailSubject: invoiceformat.EmailSubject(p.Label, customer.PropertyAddress),
		EmailBody: invoiceformat.EmailBody(
			customer.Name,
			p.Label,
			customer.FeeTypeLabel(),
			customer.PropertyAddress,
			total,
			in.SenderName,
		),
	}
}

// StyleFrom maps invoicing config onto the filler's formatting rules.
func StyleFrom(cfg config.InvoicingConfig) docx.Style {
	style := docx.DefaultStyle()
	if cfg.FontFamily != "" {
		style.FontFamily = cfg.FontFamily
	}
	if cfg.FontSizePt > 0 {
		style.FontSizePt = cfg.FontSizePt
	}
	if cfg.FeeLineSpaceAfter >= 0 {
		style.SpacedAfterPt = cfg.FeeLineSpaceAfter
	}
	return style
}

type Assembler struct {
	cache cache.DocumentCache
	log   *zap.Logger
}

func NewAssembler(documents cache.DocumentCache, log *zap.Logger) *Assembler {
	return &Assembler{cache: documents, log: log.Named("invoice.render")}
}

// Assemble computes the invoice and fills the template. No partial document
// is returned on failure.
func (a *Assembler) Assemble(ctx context.Context, in Input) (*Result, error) {
	if in.Template == nil || len(in.Template.Data) == 0 {
		return nil, ErrTemplateMissing
	}

	comp := Compute(in)
	rules := docx.Rules{
		Values:    comp.Values,
		Removable: templatedomain.FeeLinePlaceholders,
		Spaced:    templatedomain.FeeLinePlaceholders,
		Style:     in.Style,
	}

	key := cache.DocumentKey(in.Template.Name, in.Template.ModifiedAt, cacheValues(rules))
	if a.cache != nil {
		if data, ok := a.cache.Get(ctx, key); ok {
			return &Result{Computation: comp, Document: data}, nil
		}
	}

	doc, err := docx.Open(in.Template.Data)
	if err != nil {
		return nil, fmt.Errorf("open template %s: %w", in.Template.Name, err)
	}
	report := doc.Fill(rules)
	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}

	if a.cache != nil {
		a.cache.Set(ctx, key, data)
	}
	a.log.Debug("invoice document assembled",
		zap.String("template", in.Template.Name),
		zap.String("period", comp.Period.Label),
		zap.Int("deleted_blocks", report.Deleted),
		zap.Int("substituted_blocks", report.Substituted),
	)
	return &Result{Computation: comp, Document: data, Report: report}, nil
}

func cacheValues(rules docx.Rules) map[string]string {
	out := make(map[string]string, len(rules.Values)+3)
	for k, v := range rules.Values {
		out[k] = v
	}
	out["style.font"] = rules.Style.FontFamily
	out["style.size"] = fmt.Sprintf("%g", rules.Style.FontSizePt)
	out["style.after"] = fmt.Sprintf("%g/%d", rules.Style.SpacedAfterPt, rules.Style.SpacedLineTwips)
	return out
}
