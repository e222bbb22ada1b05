package fee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerDefaults() Set {
	return Set{
		Fee2:       Fee{Type: "Late Fee", Amount: decimal.NewFromInt(50)},
		Fee3:       Fee{Type: "Assessment", Amount: decimal.NewFromInt(30)},
		Additional: Fee{Type: "Air Purifier", Amount: decimal.NewFromInt(300)},
	}
}

func TestResolveBatchUsesDefaults(t *testing.T) {
	got := Resolve(customerDefaults(), nil)
	assert.Equal(t, customerDefaults(), got)
}

func TestResolveSlotsAreIndependent(t *testing.T) {
	got := Resolve(customerDefaults(), &Overrides{
		Fee2:       Suppress(),
		Fee3:       UseDefault(),
		Additional: SetTo("Parking", decimal.NewFromInt(25)),
	})

	assert.False(t, got.Fee2.Applied())
	assert.Equal(t, "Assessment", got.Fee3.Type)
	assert.True(t, got.Fee3.Amount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "Parking", got.Additional.Type)
	assert.True(t, got.Additional.Amount.Equal(decimal.NewFromInt(25)))
}

func TestResolveSetToZeroSuppresses(t *testing.T) {
	got := Resolve(customerDefaults(), &Overrides{
		Fee2: SetTo("Late Fee", decimal.Zero),
	})
	assert.Equal(t, Fee{}, got.Fee2)
	assert.True(t, got.Fee3.Applied())
}

func TestResolveZeroDefaultIsNotApplied(t *testing.T) {
	defaults := Set{Fee2: Fee{Type: "Late Fee"}}
	got := Resolve(defaults, nil)
	assert.Equal(t, Fee{}, got.Fee2)
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"":         ModeUseDefault,
		"default":  ModeUseDefault,
		"SUPPRESS": ModeSuppress,
		" set ":    ModeSetTo,
	}
	for raw, want := range cases {
		got, err := ParseMode(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseMode("clear")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
