// Package pricing turns a raw contribution request into the monetary pieces
// that are actually charged and recorded.
package pricing

import (
	"github.com/noah-isme/backend-fundraise/internal/fee"
	"github.com/noah-isme/backend-fundraise/internal/money"
)

// PledgeOption selects how a pledge derives its base amount.
type PledgeOption string

const (
	// WithRewards prices the pledge off the selected reward tier.
	WithRewards PledgeOption = "WITH_REWARDS"
	// WithoutRewards prices the pledge off the free-form amount.
	WithoutRewards PledgeOption = "WITHOUT_REWARDS"
)

// RestOfWorld is the sentinel shipping location applied when the
// contributor's country has no specific rate configured.
const RestOfWorld = "REST_OF_WORLD"

// ShippingRate prices delivery of a reward to a single location. Location is
// an ISO country code or the RestOfWorld sentinel.
type ShippingRate struct {
	Location string       `json:"location"`
	Cost     money.Amount `json:"cost"`
}

// PledgeInput carries everything needed to price one pledge. Absent optional
// fields degrade to zero; required-field validation belongs to the request
// layer, not here.
type PledgeInput struct {
	Option          PledgeOption
	Amount          *money.Amount
	BonusSupport    money.Amount
	RewardAmount    *money.Amount
	ShippingCountry *string
	RewardShipping  []ShippingRate
}

// Breakdown is the full monetary decomposition of one contribution.
// Invariant: Total == Base + Bonus + Shipping + Fee.
type Breakdown struct {
	Base     money.Amount `json:"baseAmount"`
	Bonus    money.Amount `json:"bonusAmount"`
	Shipping money.Amount `json:"shippingCost"`
	Fee      money.Amount `json:"recoveryFee"`
	Total    money.Amount `json:"totalAmount"`
}

// QuotePledge computes the breakdown for a pledge. Bonus support only counts
// alongside a reward tier; without one it is discarded by policy.
func QuotePledge(in PledgeInput, policy fee.Policy) Breakdown {
	var base, bonus money.Amount
	switch in.Option {
	case WithRewards:
		if in.RewardAmount != nil {
			base = *in.RewardAmount
		}
		bonus = in.BonusSupport
	default:
		if in.Amount != nil {
			base = *in.Amount
		}
	}
	if base < 0 {
		base = 0
	}
	if bonus < 0 {
		bonus = 0
	}
	shipping := shippingCost(in.RewardShipping, in.ShippingCountry)
	recovery := fee.Compute(base, bonus, shipping, policy)
	return Breakdown{
		Base:     base,
		Bonus:    bonus,
		Shipping: shipping,
		Fee:      recovery,
		Total:    base + bonus + shipping + recovery,
	}
}

// QuoteDonation computes the breakdown for a donation. Donations have no
// reward, bonus or shipping concept.
func QuoteDonation(amount money.Amount, policy fee.Policy) Breakdown {
	if amount < 0 {
		amount = 0
	}
	recovery := fee.Compute(amount, 0, 0, policy)
	return Breakdown{
		Base:  amount,
		Fee:   recovery,
		Total: amount + recovery,
	}
}

// shippingCost picks the rate whose location exactly equals the contributor's
// country, falling back to the RestOfWorld entry, then to zero. No partial or
// regional matching.
func shippingCost(rates []ShippingRate, country *string) money.Amount {
	if len(rates) == 0 || country == nil || *country == "" {
		return 0
	}
	var fallback money.Amount
	haveFallback := false
	for _, rate := range rates {
		if rate.Location == *country {
			if rate.Cost < 0 {
				return 0
			}
			return rate.Cost
		}
		if rate.Location == RestOfWorld && !haveFallback {
			fallback = rate.Cost
			haveFallback = true
		}
	}
	if haveFallback && fallback > 0 {
		return fallback
	}
	return 0
}
