// Package campaign exposes funding progress and contribution recording for a
// single campaign.
package campaign

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/noah-isme/backend-fundraise/internal/common"
	"github.com/noah-isme/backend-fundraise/internal/events"
	"github.com/noah-isme/backend-fundraise/internal/fee"
	"github.com/noah-isme/backend-fundraise/internal/goal"
	"github.com/noah-isme/backend-fundraise/internal/money"
	"github.com/noah-isme/backend-fundraise/internal/obs"
	"github.com/noah-isme/backend-fundraise/internal/pricing"
	"github.com/noah-isme/backend-fundraise/internal/reward"
	"github.com/noah-isme/backend-fundraise/internal/settings"
)

// PledgeRequest is a pledge in minor units, already converted by the handler.
type PledgeRequest struct {
	Option          pricing.PledgeOption
	Amount          *money.Amount
	BonusSupport    money.Amount
	RewardID        *uuid.UUID
	ShippingCountry *string
	Email           string
}

// DonationRequest is a donation in minor units.
type DonationRequest struct {
	Amount money.Amount
	Email  string
}

// ProgressOutput is the public shape of a campaign's funding progress.
type ProgressOutput struct {
	CampaignID    uuid.UUID    `json:"campaignId"`
	HasGoal       bool         `json:"hasGoal"`
	GoalType      goal.Type    `json:"goalType,omitempty"`
	GoalTarget    int64        `json:"goalTarget,omitempty"`
	FundRaised    money.Amount `json:"fundRaised"`
	RaisedDisplay string       `json:"raisedDisplay"`
	Contributions int64        `json:"contributions"`
	Contributors  int64        `json:"contributors"`
	Progress      goal.Result  `json:"progress"`
}

// ContributionOutput is returned after a contribution is recorded.
type ContributionOutput struct {
	ContributionID  uuid.UUID         `json:"contributionId"`
	Kind            Kind              `json:"kind"`
	Breakdown       pricing.Breakdown `json:"breakdown"`
	TotalDisplay    string            `json:"totalDisplay"`
	Progress        goal.Result       `json:"progress"`
	GoalReached     bool              `json:"goalReached"`
	HalfGoalReached bool              `json:"halfGoalReached"`
}

// Service coordinates pricing, goal evaluation and persistence for campaign
// contributions.
type Service struct {
	Store    Store
	Rewards  *reward.Service
	Settings *settings.Service
	Events   *events.Bus
}

// Progress returns the campaign's current funding progress with no pending
// contribution.
func (s *Service) Progress(ctx context.Context, campaignID uuid.UUID) (ProgressOutput, error) {
	if s == nil || s.Store == nil {
		return ProgressOutput{}, errors.New("campaign service not configured")
	}
	state, err := s.Store.GetGoalState(ctx, campaignID)
	if err != nil {
		return ProgressOutput{}, s.mapStoreError(err)
	}
	result, err := goal.Evaluate(state, nil)
	if err != nil {
		return ProgressOutput{}, s.mapGoalError(err)
	}
	out := ProgressOutput{
		CampaignID:    campaignID,
		HasGoal:       state.HasGoal,
		FundRaised:    state.FundRaised,
		RaisedDisplay: money.Format(state.FundRaised, s.currencyFormat(ctx)),
		Contributions: state.Contributions,
		Contributors:  state.Contributors,
		Progress:      result,
	}
	if state.HasGoal {
		out.GoalType = state.Type
		out.GoalTarget = state.Target
	}
	return out, nil
}

// QuoteOutput is a priced pledge plus the progress it would project, with
// nothing persisted.
type QuoteOutput struct {
	Breakdown pricing.Breakdown `json:"breakdown"`
	Progress  goal.Result       `json:"progress"`
}

// PreviewPledge prices a pledge without persisting anything.
func (s *Service) PreviewPledge(ctx context.Context, campaignID uuid.UUID, req PledgeRequest) (QuoteOutput, error) {
	if s == nil || s.Store == nil {
		return QuoteOutput{}, errors.New("campaign service not configured")
	}
	state, err := s.Store.GetGoalState(ctx, campaignID)
	if err != nil {
		return QuoteOutput{}, s.mapStoreError(err)
	}
	breakdown, err := s.quotePledge(ctx, campaignID, req)
	if err != nil {
		return QuoteOutput{}, err
	}
	newContributor := false
	if req.Email != "" {
		seen, err := s.Store.HasContribution(ctx, campaignID, req.Email)
		if err != nil {
			return QuoteOutput{}, err
		}
		newContributor = !seen
	}
	projected, err := goal.Evaluate(state, &goal.Pending{
		BasePlusBonus:    breakdown.Base + breakdown.Bonus,
		IsNewContributor: newContributor,
	})
	if err != nil {
		return QuoteOutput{}, s.mapGoalError(err)
	}
	return QuoteOutput{Breakdown: breakdown, Progress: projected}, nil
}

// RecordPledge prices the pledge, persists it and fires goal transitions.
func (s *Service) RecordPledge(ctx context.Context, campaignID uuid.UUID, req PledgeRequest) (ContributionOutput, error) {
	if s == nil || s.Store == nil {
		return ContributionOutput{}, errors.New("campaign service not configured")
	}
	breakdown, err := s.quotePledge(ctx, campaignID, req)
	if err != nil {
		observeContribution(KindPledge, "error", 0)
		return ContributionOutput{}, err
	}
	return s.record(ctx, campaignID, KindPledge, req.Email, req.RewardID, breakdown)
}

// RecordDonation prices the donation, persists it and fires goal transitions.
func (s *Service) RecordDonation(ctx context.Context, campaignID uuid.UUID, req DonationRequest) (ContributionOutput, error) {
	if s == nil || s.Store == nil {
		return ContributionOutput{}, errors.New("campaign service not configured")
	}
	breakdown := pricing.QuoteDonation(req.Amount, s.feePolicy(ctx))
	return s.record(ctx, campaignID, KindDonation, req.Email, nil, breakdown)
}

func (s *Service) quotePledge(ctx context.Context, campaignID uuid.UUID, req PledgeRequest) (pricing.Breakdown, error) {
	in := pricing.PledgeInput{
		Option:          req.Option,
		Amount:          req.Amount,
		BonusSupport:    req.BonusSupport,
		ShippingCountry: req.ShippingCountry,
	}
	if req.Option == pricing.WithRewards {
		if req.RewardID == nil {
			return pricing.Breakdown{}, common.NewAppError("REWARD_REQUIRED", "rewardId is required for pledges with rewards", http.StatusBadRequest, nil)
		}
		if s.Rewards == nil {
			return pricing.Breakdown{}, errors.New("campaign: reward service not configured")
		}
		tier, err := s.Rewards.Get(ctx, *req.RewardID)
		if err != nil {
			if errors.Is(err, reward.ErrNotFound) {
				return pricing.Breakdown{}, common.NewAppError("REWARD_NOT_FOUND", "reward does not exist", http.StatusUnprocessableEntity, err)
			}
			return pricing.Breakdown{}, err
		}
		if tier.CampaignID != uuid.Nil && tier.CampaignID != campaignID {
			return pricing.Breakdown{}, common.NewAppError("REWARD_MISMATCH", "reward belongs to another campaign", http.StatusUnprocessableEntity, nil)
		}
		amount := tier.Amount
		in.RewardAmount = &amount
		in.RewardShipping = tier.Shipping
	}
	return pricing.QuotePledge(in, s.feePolicy(ctx)), nil
}

func (s *Service) record(ctx context.Context, campaignID uuid.UUID, kind Kind, email string, rewardID *uuid.UUID, breakdown pricing.Breakdown) (ContributionOutput, error) {
	state, err := s.Store.GetGoalState(ctx, campaignID)
	if err != nil {
		observeContribution(kind, "error", 0)
		return ContributionOutput{}, s.mapStoreError(err)
	}

	newContributor := false
	if email != "" {
		seen, err := s.Store.HasContribution(ctx, campaignID, email)
		if err != nil {
			observeContribution(kind, "error", 0)
			return ContributionOutput{}, err
		}
		newContributor = !seen
	}

	before, err := goal.Evaluate(state, nil)
	if err != nil {
		observeContribution(kind, "error", 0)
		return ContributionOutput{}, s.mapGoalError(err)
	}
	pending := goal.Pending{
		BasePlusBonus:    breakdown.Base + breakdown.Bonus,
		IsNewContributor: newContributor,
	}
	after, err := goal.Evaluate(state, &pending)
	if err != nil {
		observeContribution(kind, "error", 0)
		return ContributionOutput{}, s.mapGoalError(err)
	}

	stored, err := s.Store.ApplyContribution(ctx, ContributionRecord{
		CampaignID:     campaignID,
		Kind:           kind,
		RewardID:       rewardID,
		Email:          email,
		Breakdown:      breakdown,
		NewContributor: newContributor,
	})
	if err != nil {
		observeContribution(kind, "error", 0)
		return ContributionOutput{}, s.mapStoreError(err)
	}

	format := s.currencyFormat(ctx)
	goalReached := !before.Reached && after.Reached
	halfReached := !before.HalfReached && after.HalfReached
	s.emit(ctx, events.TopicContributionRecorded, campaignID, map[string]any{
		"contributionId": stored.ID,
		"kind":           kind,
		"baseAmount":     breakdown.Base,
		"bonusAmount":    breakdown.Bonus,
		"shippingCost":   breakdown.Shipping,
		"recoveryFee":    breakdown.Fee,
		"totalAmount":    breakdown.Total,
		"totalDisplay":   money.Format(breakdown.Total, format),
		"newContributor": newContributor,
	})
	if halfReached {
		s.emit(ctx, events.TopicHalfGoalReached, campaignID, goalPayload(state, after, format))
		observeGoalTransition("half")
	}
	if goalReached {
		s.emit(ctx, events.TopicGoalReached, campaignID, goalPayload(state, after, format))
		observeGoalTransition("goal")
	}
	observeContribution(kind, "ok", breakdown.Total)

	return ContributionOutput{
		ContributionID:  stored.ID,
		Kind:            kind,
		Breakdown:       breakdown,
		TotalDisplay:    money.Format(breakdown.Total, format),
		Progress:        after,
		GoalReached:     goalReached,
		HalfGoalReached: halfReached,
	}, nil
}

// emit failures are logged by the bus caller chain; a persisted contribution
// is never rolled back because a notification could not be dispatched.
func (s *Service) emit(ctx context.Context, topic string, campaignID uuid.UUID, payload any) {
	if s.Events == nil {
		return
	}
	_, _ = s.Events.Emit(ctx, topic, campaignID, payload)
}

func goalPayload(state goal.State, result goal.Result, format money.FormatConfig) map[string]any {
	payload := map[string]any{
		"goalType":       state.Type,
		"goalTarget":     state.Target,
		"projectedValue": result.Projected,
		"percentage":     result.Percentage,
	}
	if state.Type == goal.RaisedAmount {
		payload["raisedDisplay"] = money.Format(result.Projected, format)
	}
	return payload
}

func (s *Service) feePolicy(ctx context.Context) fee.Policy {
	if s.Settings == nil {
		return fee.Policy{}
	}
	return s.Settings.FeePolicy(ctx)
}

func (s *Service) currencyFormat(ctx context.Context) money.FormatConfig {
	if s.Settings == nil {
		return money.FormatConfig{
			Symbol:            "$",
			Position:          money.PositionBefore,
			DecimalPlaces:     2,
			DecimalSeparator:  ".",
			ThousandSeparator: ",",
		}
	}
	return s.Settings.CurrencyFormat(ctx)
}

func (s *Service) mapStoreError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return common.NewAppError("CAMPAIGN_NOT_FOUND", "campaign does not exist", http.StatusNotFound, err)
	}
	return err
}

func (s *Service) mapGoalError(err error) error {
	if errors.Is(err, goal.ErrInvalidGoalType) {
		return common.NewAppError("GOAL_STATE_INVALID", "campaign goal configuration is corrupt", http.StatusInternalServerError, err)
	}
	return err
}

func observeContribution(kind Kind, result string, total money.Amount) {
	if obs.ContributionsTotal != nil {
		obs.ContributionsTotal.WithLabelValues(string(kind), result).Inc()
	}
	if result == "ok" && obs.ContributionAmount != nil {
		obs.ContributionAmount.WithLabelValues(string(kind)).Observe(float64(total))
	}
}

func observeGoalTransition(threshold string) {
	if obs.GoalReachedTotal != nil {
		obs.GoalReachedTotal.WithLabelValues(threshold).Inc()
	}
}
