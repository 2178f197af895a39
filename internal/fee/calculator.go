// Package fee computes the optional platform fee recovery charged on top of
// a contribution.
package fee

import (
	"math"

	"github.com/noah-isme/backend-fundraise/internal/money"
)

// Policy describes how fee recovery is charged. The zero value is a disabled
// policy, which makes an absent policy and a disabled one equivalent.
type Policy struct {
	Enabled    bool         `json:"enabled"`
	Percentage float64      `json:"percentage"`
	Fixed      money.Amount `json:"fixed"`
	// MaxFee caps the computed fee when greater than zero.
	MaxFee money.Amount `json:"maxFee"`
}

// Compute returns the recovery fee for the given contribution parts in minor
// units. Malformed policy fields are treated as zero; the result is never
// negative.
func Compute(base, bonus, shipping money.Amount, p Policy) money.Amount {
	if !p.Enabled {
		return 0
	}
	total := nonNegative(base) + nonNegative(bonus) + nonNegative(shipping)
	pct := p.Percentage
	if math.IsNaN(pct) || math.IsInf(pct, 0) || pct < 0 || pct > 100 {
		pct = 0
	}
	// Truncation toward zero equals floor here since both operands are
	// non-negative.
	computed := money.Amount(float64(total) * pct / 100)
	computed += nonNegative(p.Fixed)
	if p.MaxFee > 0 && computed > p.MaxFee {
		computed = p.MaxFee
	}
	return computed
}

func nonNegative(a money.Amount) money.Amount {
	if a < 0 {
		return 0
	}
	return a
}
