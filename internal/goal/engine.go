// Package goal evaluates campaign funding progress. Evaluate is a pure
// transition evaluator: given a counter snapshot and a candidate
// contribution, it answers whether the goal or half-goal threshold would be
// crossed without mutating anything. Firing one-time side effects on a
// false→true transition is the caller's concern.
package goal

import (
	"errors"

	"github.com/noah-isme/backend-fundraise/internal/money"
)

// Type enumerates the metrics a campaign goal can be measured against.
type Type string

const (
	RaisedAmount          Type = "RAISED_AMOUNT"
	NumberOfContributions Type = "NUMBER_OF_CONTRIBUTIONS"
	NumberOfContributors  Type = "NUMBER_OF_CONTRIBUTORS"
)

// ErrInvalidGoalType flags a goal type outside the known enumeration. The
// type system keeps these out of hand-written code; a value deserialized
// from storage can still carry one, and that is a data-integrity bug that
// must surface rather than silently default.
var ErrInvalidGoalType = errors.New("goal: invalid goal type")

// State is a campaign's goal configuration and current aggregate counters.
// Target is a minor-unit amount for RaisedAmount goals and a plain count
// otherwise.
type State struct {
	HasGoal       bool
	Type          Type
	Target        int64
	FundRaised    money.Amount
	Contributions int64
	Contributors  int64
}

// Pending is a candidate contribution evaluated against the snapshot. For
// pledges BasePlusBonus is base+bonus; for donations it is the donation
// amount. IsNewContributor is supplied by the caller from contribution
// history; the engine performs no lookups.
type Pending struct {
	BasePlusBonus    money.Amount
	IsNewContributor bool
}

// Result describes projected progress. Percentage is clamped to [0,100].
type Result struct {
	Projected   int64   `json:"projectedValue"`
	Percentage  float64 `json:"percentage"`
	Reached     bool    `json:"isReached"`
	HalfReached bool    `json:"isHalfReached"`
}

// Evaluate computes projected progress for the snapshot plus the optional
// pending contribution. Missing counters default to zero; a goal type
// outside the enumeration fails fast.
func Evaluate(state State, pending *Pending) (Result, error) {
	if !state.HasGoal || state.Target <= 0 {
		return Result{}, nil
	}

	var projected int64
	switch state.Type {
	case RaisedAmount:
		projected = nonNegative(state.FundRaised)
		if pending != nil {
			projected += nonNegative(pending.BasePlusBonus)
		}
	case NumberOfContributions:
		projected = nonNegative(state.Contributions)
		if pending != nil {
			projected++
		}
	case NumberOfContributors:
		projected = nonNegative(state.Contributors)
		if pending != nil && pending.IsNewContributor {
			projected++
		}
	default:
		return Result{}, ErrInvalidGoalType
	}

	percentage := float64(projected) / float64(state.Target) * 100
	if percentage > 100 {
		percentage = 100
	}
	if percentage < 0 {
		percentage = 0
	}

	return Result{
		Projected:   projected,
		Percentage:  percentage,
		Reached:     projected >= state.Target,
		HalfReached: percentage >= 50,
	}, nil
}

func nonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
