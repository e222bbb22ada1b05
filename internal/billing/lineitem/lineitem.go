package lineitem

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/billing/fee"
	"github.com/smallbiznis/propbill/internal/billing/period"
)

const (
	DefaultFeeLabel        = "Fee"
	DefaultAdditionalLabel = "Additional Fee"
	PropertyFeeLabel       = "Management Fee"

	segmentSeparator = "\n\n"
)

// PropertyFee is a per-property surcharge in the customer's iteration order.
type PropertyFee struct {
	Address string          `json:"address"`
	Amount  decimal.Decimal `json:"amount"`
}

type Input struct {
	Base       decimal.Decimal
	Fees       fee.Set
	Properties []PropertyFee
	Period     period.Period
}

// Result holds the total and the composite fee-line texts. Empty lines mean
// the fee is absent.
type Result struct {
	Total          decimal.Decimal
	FeeLine2       string
	FeeLine3       string
	AdditionalLine string
}

// Build sums the invoice and formats its optional lines.
func Build(in Input) Result {
	total := in.Base
	res := Result{}

	if in.Fees.Fee2.Applied() {
		total = total.Add(in.Fees.Fee2.Amount)
		res.FeeLine2 = feeLine(in.Period, in.Fees.Fee2)
	}
	if in.Fees.Fee3.Applied() {
		total = total.Add(in.Fees.Fee3.Amount)
		res.FeeLine3 = feeLine(in.Period, in.Fees.Fee3)
	}

	segments := make([]string, 0, len(in.Properties)+1)
	if in.Fees.Additional.Applied() {
		total = total.Add(in.Fees.Additional.Amount)
		segments = append(segments, fmt.Sprintf("%s = %s",
			labelOr(in.Fees.Additional.Type, DefaultAdditionalLabel),
			FormatUSD(in.Fees.Additional.Amount),
		))
	}

	charged := lo.Filter(in.Properties, func(p PropertyFee, _ int) bool {
		return !p.Amount.IsZero()
	})
	for _, p := range charged {
		total = total.Add(p.Amount)
		segments = append(segments, fmt.Sprintf("%s (%s) = %s", PropertyFeeLabel, p.Address, FormatUSD(p.Amount)))
	}

	res.Total = total
	res.AdditionalLine = strings.Join(segments, segmentSeparator)
	return res
}

func feeLine(p period.Period, f fee.Fee) string {
	return fmt.Sprintf("%s %s (%s) = %s",
		p.Label,
		labelOr(f.Type, DefaultFeeLabel),
		p.DatesString(),
		FormatUSD(f.Amount),
	)
}

func labelOr(label, fallback string) string {
	if trimmed := strings.TrimSpace(label); trimmed != "" {
		return trimmed
	}
	return fallback
}
