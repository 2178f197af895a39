package fee_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-fundraise/internal/fee"
	"github.com/noah-isme/backend-fundraise/internal/money"
)

func TestComputeDisabled(t *testing.T) {
	t.Parallel()

	require.Zero(t, fee.Compute(10000, 500, 1200, fee.Policy{}))
	require.Zero(t, fee.Compute(10000, 0, 0, fee.Policy{Enabled: false, Percentage: 5, Fixed: 50}))
}

func TestComputePercentageAndFixed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                  string
		base, bonus, shipping money.Amount
		policy                fee.Policy
		want                  money.Amount
	}{
		{"percentage only", 10000, 0, 0, fee.Policy{Enabled: true, Percentage: 5}, 500},
		{"fixed only", 10000, 0, 0, fee.Policy{Enabled: true, Fixed: 75}, 75},
		{"percentage plus fixed", 10000, 0, 0, fee.Policy{Enabled: true, Percentage: 5, Fixed: 50}, 550},
		{"fraction truncated toward zero", 999, 0, 0, fee.Policy{Enabled: true, Percentage: 2.5}, 24},
		{"bonus and shipping included", 10000, 500, 1200, fee.Policy{Enabled: true, Percentage: 10}, 1170},
		{"capped", 10000, 0, 0, fee.Policy{Enabled: true, Percentage: 5, Fixed: 50, MaxFee: 300}, 300},
		{"cap above fee is ignored", 10000, 0, 0, fee.Policy{Enabled: true, Percentage: 5, MaxFee: 10000}, 500},
		{"zero cap means uncapped", 10000, 0, 0, fee.Policy{Enabled: true, Percentage: 5, MaxFee: 0}, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, fee.Compute(tc.base, tc.bonus, tc.shipping, tc.policy))
		})
	}
}

func TestComputeMalformedFieldsTreatedAsZero(t *testing.T) {
	t.Parallel()

	require.Zero(t, fee.Compute(10000, 0, 0, fee.Policy{Enabled: true, Percentage: -3}))
	require.Zero(t, fee.Compute(10000, 0, 0, fee.Policy{Enabled: true, Percentage: 250}))
	require.Zero(t, fee.Compute(10000, 0, 0, fee.Policy{Enabled: true, Percentage: math.NaN()}))
	require.Equal(t, money.Amount(500), fee.Compute(10000, 0, 0, fee.Policy{Enabled: true, Percentage: 5, Fixed: -40}))
	require.Equal(t, money.Amount(500), fee.Compute(10000, -200, -300, fee.Policy{Enabled: true, Percentage: 5}))
}

func TestComputeNeverExceedsCap(t *testing.T) {
	t.Parallel()

	policy := fee.Policy{Enabled: true, Percentage: 9.9, Fixed: 123, MaxFee: 777}
	for base := money.Amount(0); base <= 100000; base += 3517 {
		got := fee.Compute(base, base/2, base/4, policy)
		require.LessOrEqual(t, got, policy.MaxFee)
		require.GreaterOrEqual(t, got, money.Amount(0))
	}
}
