package lineitem

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount as "$1,234.56".
func FormatUSD(amount decimal.Decimal) string {
	return "$" + FormatAmount(amount)
}

// FormatAmount renders an amount with comma grouping and two decimals, no currency sign.
func FormatAmount(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	fixed := amount.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}

	return sign + b.String() + "." + frac
}

// ParseAmount parses user input such as "1,250.00" or "$75".
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(cleaned)
}
