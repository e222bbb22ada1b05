package fee

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidMode = errors.New("invalid_override_mode")

// Fee is one optional charge on an invoice.
type Fee struct {
	Type   string
	Amount decimal.Decimal
}

// Applied reports whether the fee contributes to the total and renders a line.
func (f Fee) Applied() bool {
	return !f.Amount.IsZero()
}

// Mode tags how an override slot treats the customer's default.
type Mode string

const (
	ModeUseDefault Mode = "default"
	ModeSuppress   Mode = "suppress"
	ModeSetTo      Mode = "set"
)

// ParseMode accepts the wire names of a mode. Empty means use default.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeUseDefault:
		return ModeUseDefault, nil
	case ModeSuppress:
		return ModeSuppress, nil
	case ModeSetTo:
		return ModeSetTo, nil
	default:
		return "", ErrInvalidMode
	}
}

// Override is one slot of a per-invoice override set.
type Override struct {
	Mode Mode
	Fee  Fee
}

func UseDefault() Override {
	return Override{Mode: ModeUseDefault}
}

func Suppress() Override {
	return Override{Mode: ModeSuppress}
}

// SetTo replaces the default. A zero amount still suppresses the line.
func SetTo(feeType string, amount decimal.Decimal) Override {
	return Override{Mode: ModeSetTo, Fee: Fee{Type: feeType, Amount: amount}}
}

func (o Override) resolve(def Fee) Fee {
	switch o.Mode {
	case ModeSuppress:
		return Fee{}
	case ModeSetTo:
		if !o.Fee.Applied() {
			return Fee{}
		}
		return o.Fee
	default:
		return def
	}
}

// Set groups the three optional slots.
type Set struct {
	Fee2       Fee
	Fee3       Fee
	Additional Fee
}

// Overrides holds one tagged slot per optional fee.
type Overrides struct {
	Fee2       Override
	Fee3       Override
	Additional Override
}

// Resolve applies overrides to the customer's defaults. Nil overrides is batch
// mode and yields the defaults unchanged. Unapplied fees come back zeroed.
func Resolve(defaults Set, overrides *Overrides) Set {
	if overrides == nil {
		overrides = &Overrides{}
	}
	return Set{
		Fee2:       overrides.Fee2.resolve(defaults.Fee2).normalized(),
		Fee3:       overrides.Fee3.resolve(defaults.Fee3).normalized(),
		Additional: overrides.Additional.resolve(defaults.Additional).normalized(),
	}
}

func (f Fee) normalized() Fee {
	if !f.Applied() {
		return Fee{}
	}
	return Fee{Type: strings.TrimSpace(f.Type), Amount: f.Amount}
}
