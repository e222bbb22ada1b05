package lineitem

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/propbill/internal/billing/fee"
	"github.com/smallbiznis/propbill/internal/billing/period"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestFormatUSD(t *testing.T) {
	cases := map[string]string{
		"0":          "$0.00",
		"5":          "$5.00",
		"999.999":    "$1,000.00",
		"1234.5":     "$1,234.50",
		"605":        "$605.00",
		"1234567.89": "$1,234,567.89",
		"-1500":      "$-1,500.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatUSD(dec(in)), in)
	}
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" $1,250.50 ")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("1250.50")))

	got, err = ParseAmount("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = ParseAmount("abc")
	assert.Error(t, err)
}

func TestBuildAdditivity(t *testing.T) {
	p := period.For(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), period.CadenceQuarterly)

	res := Build(Input{
		Base: dec("100"),
		Fees: fee.Set{
			Fee2:       fee.Fee{Type: "Late Fee", Amount: dec("50")},
			Fee3:       fee.Fee{Amount: dec("30")},
			Additional: fee.Fee{Type: "Air Purifier", Amount: dec("300")},
		},
		Properties: []PropertyFee{
			{Address: "12 Oak St", Amount: dec("125")},
			{Address: "14 Oak St"},
		},
		Period: p,
	})

	assert.Equal(t, "605.00", res.Total.StringFixed(2))
	assert.Equal(t, "4th quarter 2025 Late Fee (10/01/2025 - 12/31/2025) = $50.00", res.FeeLine2)
	assert.Equal(t, "4th quarter 2025 Fee (10/01/2025 - 12/31/2025) = $30.00", res.FeeLine3)
	assert.Equal(t, "Air Purifier = $300.00\n\nManagement Fee (12 Oak St) = $125.00", res.AdditionalLine)
}

func TestBuildAbsentFeesProduceNoLines(t *testing.T) {
	p := period.For(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), period.CadenceMonthly)

	res := Build(Input{Base: dec("1500"), Period: p})

	assert.Equal(t, "1500.00", res.Total.StringFixed(2))
	assert.Empty(t, res.FeeLine2)
	assert.Empty(t, res.FeeLine3)
	assert.Empty(t, res.AdditionalLine)
}

func TestBuildPropertyOnlyAdditionalBlock(t *testing.T) {
	p := period.For(time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC), period.CadenceMonthly)

	res := Build(Input{
		Base: dec("10"),
		Properties: []PropertyFee{
			{Address: "1 Main St", Amount: dec("1000")},
			{Address: "2 Main St", Amount: dec("2.5")},
		},
		Period: p,
	})

	assert.Equal(t, "1012.50", res.Total.StringFixed(2))
	assert.Equal(t, "Management Fee (1 Main St) = $1,000.00\n\nManagement Fee (2 Main St) = $2.50", res.AdditionalLine)
}
