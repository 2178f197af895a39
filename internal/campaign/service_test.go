package campaign_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-fundraise/internal/campaign"
	"github.com/noah-isme/backend-fundraise/internal/events"
	"github.com/noah-isme/backend-fundraise/internal/fee"
	"github.com/noah-isme/backend-fundraise/internal/goal"
	"github.com/noah-isme/backend-fundraise/internal/money"
	"github.com/noah-isme/backend-fundraise/internal/pricing"
	"github.com/noah-isme/backend-fundraise/internal/reward"
	"github.com/noah-isme/backend-fundraise/internal/settings"
)

type mockStore struct {
	state    goal.State
	stateErr error
	seen     map[string]bool
	applied  []campaign.ContributionRecord
	applyErr error
}

func (m *mockStore) GetGoalState(context.Context, uuid.UUID) (goal.State, error) {
	return m.state, m.stateErr
}

func (m *mockStore) HasContribution(_ context.Context, _ uuid.UUID, email string) (bool, error) {
	return m.seen[email], nil
}

func (m *mockStore) ApplyContribution(_ context.Context, rec campaign.ContributionRecord) (campaign.Contribution, error) {
	if m.applyErr != nil {
		return campaign.Contribution{}, m.applyErr
	}
	m.applied = append(m.applied, rec)
	return campaign.Contribution{ID: uuid.New(), CreatedAt: time.Now()}, nil
}

type eventStore struct {
	inserted []events.Event
}

func (s *eventStore) InsertEvent(_ context.Context, topic string, aggregateID uuid.UUID, payload []byte) (events.Event, error) {
	ev := events.Event{
		ID:          uuid.New(),
		Topic:       topic,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	}
	s.inserted = append(s.inserted, ev)
	return ev, nil
}

func (s *eventStore) topics() []string {
	out := make([]string, 0, len(s.inserted))
	for _, ev := range s.inserted {
		out = append(out, ev.Topic)
	}
	return out
}

type rewardStoreStub struct {
	reward reward.Reward
	err    error
}

func (s rewardStoreStub) GetReward(context.Context, uuid.UUID) (reward.Reward, error) {
	return s.reward, s.err
}

func usdDefaults() settings.Defaults {
	return settings.Defaults{
		CurrencyFormat: money.FormatConfig{
			Symbol:            "$",
			Position:          money.PositionBefore,
			DecimalPlaces:     2,
			DecimalSeparator:  ".",
			ThousandSeparator: ",",
		},
	}
}

func newService(store campaign.Store, ev *eventStore, defaults settings.Defaults) *campaign.Service {
	svc := &campaign.Service{
		Store:    store,
		Settings: &settings.Service{Defaults: defaults},
	}
	if ev != nil {
		svc.Events = &events.Bus{Store: ev}
	}
	return svc
}

func TestProgressNoGoal(t *testing.T) {
	t.Parallel()

	store := &mockStore{state: goal.State{FundRaised: 5000, Contributions: 3, Contributors: 2}}
	svc := newService(store, nil, usdDefaults())

	out, err := svc.Progress(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, out.HasGoal)
	require.Equal(t, goal.Result{}, out.Progress)
	require.Equal(t, "$50.00", out.RaisedDisplay)
	require.EqualValues(t, 3, out.Contributions)
}

func TestProgressWithGoal(t *testing.T) {
	t.Parallel()

	store := &mockStore{state: goal.State{
		HasGoal:    true,
		Type:       goal.RaisedAmount,
		Target:     10000,
		FundRaised: 2500,
	}}
	svc := newService(store, nil, usdDefaults())

	out, err := svc.Progress(context.Background(), uuid.New())
	require.NoError(t, err)
	require.True(t, out.HasGoal)
	require.Equal(t, goal.RaisedAmount, out.GoalType)
	require.InDelta(t, 25.0, out.Progress.Percentage, 1e-9)
	require.False(t, out.Progress.Reached)
}

func TestProgressUnknownCampaign(t *testing.T) {
	t.Parallel()

	store := &mockStore{stateErr: campaign.ErrNotFound}
	svc := newService(store, nil, usdDefaults())

	_, err := svc.Progress(context.Background(), uuid.New())
	require.Error(t, err)
	require.ErrorIs(t, err, campaign.ErrNotFound)
}

func TestRecordDonationCrossesGoal(t *testing.T) {
	t.Parallel()

	store := &mockStore{state: goal.State{
		HasGoal:    true,
		Type:       goal.RaisedAmount,
		Target:     100000,
		FundRaised: 90000,
	}}
	ev := &eventStore{}
	svc := newService(store, ev, usdDefaults())

	out, err := svc.RecordDonation(context.Background(), uuid.New(), campaign.DonationRequest{
		Amount: 15000,
		Email:  "ada@example.com",
	})
	require.NoError(t, err)
	require.True(t, out.GoalReached)
	require.False(t, out.HalfGoalReached, "half threshold was already crossed before this donation")
	require.True(t, out.Progress.Reached)
	require.EqualValues(t, 105000, out.Progress.Projected)
	require.InDelta(t, 100.0, out.Progress.Percentage, 1e-9)
	require.Equal(t, []string{events.TopicContributionRecorded, events.TopicGoalReached}, ev.topics())
	require.Len(t, store.applied, 1)
	require.Equal(t, campaign.KindDonation, store.applied[0].Kind)
	require.True(t, store.applied[0].NewContributor)
}

func TestRecordDonationCrossesHalfOnly(t *testing.T) {
	t.Parallel()

	store := &mockStore{state: goal.State{
		HasGoal:    true,
		Type:       goal.RaisedAmount,
		Target:     100000,
		FundRaised: 40000,
	}}
	ev := &eventStore{}
	svc := newService(store, ev, usdDefaults())

	out, err := svc.RecordDonation(context.Background(), uuid.New(), campaign.DonationRequest{Amount: 15000})
	require.NoError(t, err)
	require.False(t, out.GoalReached)
	require.True(t, out.HalfGoalReached)
	require.Equal(t, []string{events.TopicContributionRecorded, events.TopicHalfGoalReached}, ev.topics())
}

func TestRecordDonationBelowThresholdsEmitsRecordedOnly(t *testing.T) {
	t.Parallel()

	store := &mockStore{state: goal.State{
		HasGoal:    true,
		Type:       goal.RaisedAmount,
		Target:     100000,
		FundRaised: 1000,
	}}
	ev := &eventStore{}
	svc := newService(store, ev, usdDefaults())

	_, err := svc.RecordDonation(context.Background(), uuid.New(), campaign.DonationRequest{Amount: 500})
	require.NoError(t, err)
	require.Equal(t, []string{events.TopicContributionRecorded}, ev.topics())
}

func TestRecordPledgeWithRewardCountsNewContributor(t *testing.T) {
	t.Parallel()

	campaignID := uuid.New()
	rewardID := uuid.New()
	store := &mockStore{
		state: goal.State{
			HasGoal:      true,
			Type:         goal.NumberOfContributors,
			Target:       2,
			Contributors: 1,
		},
		seen: map[string]bool{"repeat@example.com": true},
	}
	ev := &eventStore{}
	svc := newService(store, ev, usdDefaults())
	svc.Settings.Defaults.FeePolicy = fee.Policy{Enabled: true, Percentage: 10}
	svc.Rewards = &reward.Service{Store: rewardStoreStub{reward: reward.Reward{
		ID:         rewardID,
		CampaignID: campaignID,
		Amount:     5000,
		Shipping: []pricing.ShippingRate{
			{Location: "US", Cost: 1000},
			{Location: pricing.RestOfWorld, Cost: 2500},
		},
	}}}

	country := "US"
	out, err := svc.RecordPledge(context.Background(), campaignID, campaign.PledgeRequest{
		Option:          pricing.WithRewards,
		BonusSupport:    500,
		RewardID:        &rewardID,
		ShippingCountry: &country,
		Email:           "fresh@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, pricing.Breakdown{
		Base:     5000,
		Bonus:    500,
		Shipping: 1000,
		Fee:      650,
		Total:    7150,
	}, out.Breakdown)
	require.True(t, out.GoalReached, "new contributor should complete a contributor-count goal")
	require.Equal(t, "$71.50", out.TotalDisplay)
	require.Contains(t, ev.topics(), events.TopicGoalReached)
}

func TestRecordPledgeRepeatContributorDoesNotAdvanceContributorGoal(t *testing.T) {
	t.Parallel()

	store := &mockStore{
		state: goal.State{
			HasGoal:      true,
			Type:         goal.NumberOfContributors,
			Target:       2,
			Contributors: 1,
		},
		seen: map[string]bool{"repeat@example.com": true},
	}
	ev := &eventStore{}
	svc := newService(store, ev, usdDefaults())

	amount := money.Amount(1000)
	out, err := svc.RecordPledge(context.Background(), uuid.New(), campaign.PledgeRequest{
		Option: pricing.WithoutRewards,
		Amount: &amount,
		Email:  "repeat@example.com",
	})
	require.NoError(t, err)
	require.False(t, out.GoalReached)
	require.EqualValues(t, 1, out.Progress.Projected)
	require.Len(t, store.applied, 1)
	require.False(t, store.applied[0].NewContributor)
}

func TestRecordPledgeRewardMismatch(t *testing.T) {
	t.Parallel()

	rewardID := uuid.New()
	store := &mockStore{state: goal.State{}}
	svc := newService(store, nil, usdDefaults())
	svc.Rewards = &reward.Service{Store: rewardStoreStub{reward: reward.Reward{
		ID:         rewardID,
		CampaignID: uuid.New(),
		Amount:     5000,
	}}}

	_, err := svc.RecordPledge(context.Background(), uuid.New(), campaign.PledgeRequest{
		Option:   pricing.WithRewards,
		RewardID: &rewardID,
		Email:    "ada@example.com",
	})
	require.Error(t, err)
	require.Empty(t, store.applied)
}

func TestRecordPledgeRewardNotFound(t *testing.T) {
	t.Parallel()

	rewardID := uuid.New()
	svc := newService(&mockStore{}, nil, usdDefaults())
	svc.Rewards = &reward.Service{Store: rewardStoreStub{err: reward.ErrNotFound}}

	_, err := svc.RecordPledge(context.Background(), uuid.New(), campaign.PledgeRequest{
		Option:   pricing.WithRewards,
		RewardID: &rewardID,
		Email:    "ada@example.com",
	})
	require.ErrorIs(t, err, reward.ErrNotFound)
}

func TestRecordDonationInvalidGoalType(t *testing.T) {
	t.Parallel()

	store := &mockStore{state: goal.State{
		HasGoal: true,
		Type:    goal.Type("SOMETHING_ELSE"),
		Target:  10,
	}}
	svc := newService(store, nil, usdDefaults())

	_, err := svc.RecordDonation(context.Background(), uuid.New(), campaign.DonationRequest{Amount: 100})
	require.ErrorIs(t, err, goal.ErrInvalidGoalType)
	require.Empty(t, store.applied)
}

func TestPreviewPledgePersistsNothing(t *testing.T) {
	t.Parallel()

	store := &mockStore{state: goal.State{}}
	ev := &eventStore{}
	svc := newService(store, ev, usdDefaults())

	amount := money.Amount(2000)
	quote, err := svc.PreviewPledge(context.Background(), uuid.New(), campaign.PledgeRequest{
		Option: pricing.WithoutRewards,
		Amount: &amount,
	})
	require.NoError(t, err)
	require.EqualValues(t, 2000, quote.Breakdown.Total)
	require.Empty(t, store.applied)
	require.Empty(t, ev.inserted)
}
