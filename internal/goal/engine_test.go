package goal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-fundraise/internal/goal"
)

func TestEvaluateNoGoal(t *testing.T) {
	t.Parallel()

	states := []goal.State{
		{HasGoal: false, Type: goal.RaisedAmount, Target: 10000, FundRaised: 9000},
		{HasGoal: true, Type: goal.RaisedAmount, Target: 0, FundRaised: 9000},
		{HasGoal: true, Type: goal.RaisedAmount, Target: -5},
		// Without a goal even an unknown type must not error.
		{HasGoal: false, Type: goal.Type("LEGACY"), Target: 100},
	}
	for _, state := range states {
		res, err := goal.Evaluate(state, &goal.Pending{BasePlusBonus: 5000, IsNewContributor: true})
		require.NoError(t, err)
		require.Zero(t, res.Projected)
		require.Zero(t, res.Percentage)
		require.False(t, res.Reached)
		require.False(t, res.HalfReached)
	}
}

func TestEvaluateRaisedAmount(t *testing.T) {
	t.Parallel()

	state := goal.State{HasGoal: true, Type: goal.RaisedAmount, Target: 10000, FundRaised: 4000}

	res, err := goal.Evaluate(state, &goal.Pending{BasePlusBonus: 4000})
	require.NoError(t, err)
	require.Equal(t, int64(8000), res.Projected)
	require.InDelta(t, 80.0, res.Percentage, 1e-12)
	require.False(t, res.Reached)
	require.True(t, res.HalfReached)

	res, err = goal.Evaluate(state, nil)
	require.NoError(t, err)
	require.Equal(t, int64(4000), res.Projected)
	require.InDelta(t, 40.0, res.Percentage, 1e-12)
	require.False(t, res.HalfReached)
}

func TestEvaluateContributionCount(t *testing.T) {
	t.Parallel()

	state := goal.State{HasGoal: true, Type: goal.NumberOfContributions, Target: 50, Contributions: 49}

	res, err := goal.Evaluate(state, &goal.Pending{})
	require.NoError(t, err)
	require.Equal(t, int64(50), res.Projected)
	require.Equal(t, 100.0, res.Percentage)
	require.True(t, res.Reached)
	require.True(t, res.HalfReached)

	res, err = goal.Evaluate(state, nil)
	require.NoError(t, err)
	require.Equal(t, int64(49), res.Projected)
	require.False(t, res.Reached)
}

func TestEvaluateContributorCount(t *testing.T) {
	t.Parallel()

	state := goal.State{HasGoal: true, Type: goal.NumberOfContributors, Target: 10, Contributors: 9}

	res, err := goal.Evaluate(state, &goal.Pending{IsNewContributor: true})
	require.NoError(t, err)
	require.Equal(t, int64(10), res.Projected)
	require.True(t, res.Reached)

	res, err = goal.Evaluate(state, &goal.Pending{IsNewContributor: false})
	require.NoError(t, err)
	require.Equal(t, int64(9), res.Projected)
	require.False(t, res.Reached)
}

func TestEvaluatePercentageClamp(t *testing.T) {
	t.Parallel()

	state := goal.State{HasGoal: true, Type: goal.RaisedAmount, Target: 10000, FundRaised: 9000}
	res, err := goal.Evaluate(state, &goal.Pending{BasePlusBonus: 50000})
	require.NoError(t, err)
	require.Equal(t, int64(59000), res.Projected)
	require.Equal(t, 100.0, res.Percentage)
	require.True(t, res.Reached)
	require.True(t, res.HalfReached)
}

func TestEvaluateMonotonicPercentage(t *testing.T) {
	t.Parallel()

	state := goal.State{HasGoal: true, Type: goal.RaisedAmount, Target: 33333, FundRaised: 100}
	prev := -1.0
	for pending := int64(0); pending <= 60000; pending += 997 {
		res, err := goal.Evaluate(state, &goal.Pending{BasePlusBonus: pending})
		require.NoError(t, err)
		require.GreaterOrEqual(t, res.Percentage, prev)
		require.LessOrEqual(t, res.Percentage, 100.0)
		prev = res.Percentage
	}
}

func TestEvaluateDefensiveCounters(t *testing.T) {
	t.Parallel()

	state := goal.State{HasGoal: true, Type: goal.RaisedAmount, Target: 10000, FundRaised: -500}
	res, err := goal.Evaluate(state, &goal.Pending{BasePlusBonus: -100})
	require.NoError(t, err)
	require.Zero(t, res.Projected)
	require.Zero(t, res.Percentage)
}

func TestEvaluateUnknownGoalType(t *testing.T) {
	t.Parallel()

	state := goal.State{HasGoal: true, Type: goal.Type("RAISED_PERCENT"), Target: 100}
	_, err := goal.Evaluate(state, nil)
	require.ErrorIs(t, err, goal.ErrInvalidGoalType)
}
