package money

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// Amount is a monetary value stored in integer minor units (e.g. cents).
// Keeping amounts integral avoids floating-point drift once stored.
type Amount = int64

// ErrInvalidAmount is returned when a real-valued input is not a finite number.
var ErrInvalidAmount = errors.New("money: invalid amount")

const minorPerMajor = 100

// ToMinorUnits converts a major-unit value (12.50) into minor units (1250),
// rounding half away from zero.
func ToMinorUnits(value float64) (Amount, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrInvalidAmount
	}
	scaled := value * minorPerMajor
	if scaled >= 0 {
		return Amount(math.Floor(scaled + 0.5)), nil
	}
	return Amount(math.Ceil(scaled - 0.5)), nil
}

// ToMajorUnits converts a minor-unit amount back to its real value. The
// division is exact because the input is integral.
func ToMajorUnits(a Amount) float64 {
	return float64(a) / minorPerMajor
}

// Symbol placement options for FormatConfig.Position.
const (
	PositionBefore = "before"
	PositionAfter  = "after"
)

// FormatConfig describes how a currency is rendered. It is supplied by the
// caller per request and has no lifecycle of its own.
type FormatConfig struct {
	Symbol            string `json:"symbol"`
	Position          string `json:"position"`
	DecimalPlaces     int    `json:"decimalPlaces"`
	DecimalSeparator  string `json:"decimalSeparator"`
	ThousandSeparator string `json:"thousandSeparator"`
}

// Format renders a minor-unit amount as a localized currency string. The
// minus sign always leads the symbol ("-$1,234.56", never "$-1,234.56").
func Format(a Amount, cfg FormatConfig) string {
	negative := a < 0
	major := ToMajorUnits(a)
	if negative {
		major = -major
	}
	places := cfg.DecimalPlaces
	if places < 0 {
		places = 0
	}
	fixed := strconv.FormatFloat(major, 'f', places, 64)
	intPart := fixed
	fracPart := ""
	if idx := strings.IndexByte(fixed, '.'); idx >= 0 {
		intPart, fracPart = fixed[:idx], fixed[idx+1:]
	}
	out := groupThousands(intPart, cfg.ThousandSeparator)
	if fracPart != "" {
		sep := cfg.DecimalSeparator
		if sep == "" {
			sep = "."
		}
		out += sep + fracPart
	}
	if cfg.Position == PositionAfter {
		out += cfg.Symbol
	} else {
		out = cfg.Symbol + out
	}
	if negative {
		out = "-" + out
	}
	return out
}

func groupThousands(digits, sep string) string {
	if sep == "" || len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
