package pdf

import (
	"context"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

// InvoiceData is the already formatted content of one invoice summary page.
type InvoiceData struct {
	SenderName    string
	SenderEmail   string
	InvoiceNumber string
	InvoiceDate   string
	Period        string
	PeriodDates   string
	Status        string
	PaidDate      string

	BillToName    string
	BillToEmail   string
	BillToAddress string

	Items []InvoiceItem
	Total string
}

type InvoiceItem struct {
	Description string
	Amount      string
}

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateInvoice(ctx context.Context, invoice InvoiceData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(12,
		text.NewCol(8, "Invoice", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, invoice.Status, props.Text{
			Size:  12,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)

	meta := col.New(6).Add(
		text.New("Invoice number: "+invoice.InvoiceNumber, props.Text{Top: 0}),
		text.New("Date of issue: "+invoice.InvoiceDate, props.Text{Top: 4}),
		text.New("Billing period: "+invoice.Period, props.Text{Top: 8}),
		text.New("Service dates: "+invoice.PeriodDates, props.Text{Top: 12}),
	)
	if invoice.PaidDate != "" {
		meta.Add(text.New("Date paid: "+invoice.PaidDate, props.Text{Top: 16}))
	}
	m.AddRow(22, meta, col.New(6))

	m.AddRow(30,
		col.New(6).Add(
			text.New(invoice.SenderName, props.Text{Style: fontstyle.Bold}),
			text.New(invoice.SenderEmail, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Bill to", props.Text{Style: fontstyle.Bold}),
			text.New(invoice.BillToName, props.Text{Top: 5}),
			text.New(invoice.BillToAddress, props.Text{Top: 9}),
			text.New(invoice.BillToEmail, props.Text{Top: 13}),
		),
	)

	m.AddRow(10,
		text.NewCol(9, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range invoice.Items {
		m.AddRow(10,
			text.NewCol(9, item.Description, props.Text{Size: 9}),
			text.NewCol(3, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))
	m.AddRow(10,
		col.New(6),
		text.NewCol(3, "Amount due", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, invoice.Total, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
