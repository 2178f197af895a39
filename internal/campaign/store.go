package campaign

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-fundraise/internal/goal"
	"github.com/noah-isme/backend-fundraise/internal/pricing"
)

// ErrNotFound is returned when the campaign does not exist.
var ErrNotFound = errors.New("campaign: not found")

// Kind distinguishes the two contribution flavours.
type Kind string

const (
	KindPledge   Kind = "pledge"
	KindDonation Kind = "donation"
)

// ContributionRecord is everything the store needs to persist one
// contribution and roll its counters forward.
type ContributionRecord struct {
	CampaignID     uuid.UUID
	Kind           Kind
	RewardID       *uuid.UUID
	Email          string
	Breakdown      pricing.Breakdown
	NewContributor bool
}

// Contribution is a persisted contribution row.
type Contribution struct {
	ID        uuid.UUID
	CreatedAt time.Time
}

// Store defines the persistence operations the campaign service requires.
type Store interface {
	GetGoalState(ctx context.Context, campaignID uuid.UUID) (goal.State, error)
	HasContribution(ctx context.Context, campaignID uuid.UUID, email string) (bool, error)
	ApplyContribution(ctx context.Context, rec ContributionRecord) (Contribution, error)
}

// PGStore implements Store against Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const getGoalStateSQL = `
SELECT has_goal, goal_type, goal_target, fund_raised, contribution_count, contributor_count
FROM campaigns
WHERE id = $1`

const lockGoalStateSQL = getGoalStateSQL + `
FOR UPDATE`

const hasContributionSQL = `
SELECT EXISTS (
  SELECT 1 FROM contributions
  WHERE campaign_id = $1 AND contributor_email = $2
)`

const insertContributionSQL = `
INSERT INTO contributions (
  id, campaign_id, kind, reward_id, contributor_email,
  base_amount, bonus_amount, shipping_cost, recovery_fee, total_amount
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING created_at`

const bumpCountersSQL = `
UPDATE campaigns
SET fund_raised = fund_raised + $2,
    contribution_count = contribution_count + 1,
    contributor_count = contributor_count + $3
WHERE id = $1`

// GetGoalState loads the goal configuration and counters for a campaign.
func (s PGStore) GetGoalState(ctx context.Context, campaignID uuid.UUID) (goal.State, error) {
	if s.Pool == nil {
		return goal.State{}, errors.New("campaign: pool not configured")
	}
	row := s.Pool.QueryRow(ctx, getGoalStateSQL, pgtype.UUID{Bytes: campaignID, Valid: true})
	return scanGoalState(row)
}

// HasContribution reports whether the email already contributed to the
// campaign.
func (s PGStore) HasContribution(ctx context.Context, campaignID uuid.UUID, email string) (bool, error) {
	if s.Pool == nil {
		return false, errors.New("campaign: pool not configured")
	}
	var exists bool
	err := s.Pool.QueryRow(ctx, hasContributionSQL, pgtype.UUID{Bytes: campaignID, Valid: true}, email).Scan(&exists)
	return exists, err
}

// ApplyContribution inserts the contribution and bumps the campaign counters
// in a single transaction. The campaign row is locked first so concurrent
// contributions serialise on the counters.
func (s PGStore) ApplyContribution(ctx context.Context, rec ContributionRecord) (Contribution, error) {
	if s.Pool == nil {
		return Contribution{}, errors.New("campaign: pool not configured")
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Contribution{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	cid := pgtype.UUID{Bytes: rec.CampaignID, Valid: true}
	if _, err := scanGoalState(tx.QueryRow(ctx, lockGoalStateSQL, cid)); err != nil {
		return Contribution{}, err
	}

	out := Contribution{ID: uuid.New()}
	var rewardID pgtype.UUID
	if rec.RewardID != nil {
		rewardID = pgtype.UUID{Bytes: *rec.RewardID, Valid: true}
	}
	err = tx.QueryRow(ctx, insertContributionSQL,
		pgtype.UUID{Bytes: out.ID, Valid: true},
		cid,
		string(rec.Kind),
		rewardID,
		rec.Email,
		rec.Breakdown.Base,
		rec.Breakdown.Bonus,
		rec.Breakdown.Shipping,
		rec.Breakdown.Fee,
		rec.Breakdown.Total,
	).Scan(&out.CreatedAt)
	if err != nil {
		return Contribution{}, err
	}

	contributorDelta := int64(0)
	if rec.NewContributor {
		contributorDelta = 1
	}
	raisedDelta := rec.Breakdown.Base + rec.Breakdown.Bonus
	if _, err := tx.Exec(ctx, bumpCountersSQL, cid, raisedDelta, contributorDelta); err != nil {
		return Contribution{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Contribution{}, err
	}
	return out, nil
}

func scanGoalState(row pgx.Row) (goal.State, error) {
	var (
		state    goal.State
		goalType pgtype.Text
		target   pgtype.Int8
	)
	err := row.Scan(&state.HasGoal, &goalType, &target, &state.FundRaised, &state.Contributions, &state.Contributors)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return goal.State{}, ErrNotFound
		}
		return goal.State{}, err
	}
	if goalType.Valid {
		state.Type = goal.Type(goalType.String)
	}
	if target.Valid {
		state.Target = target.Int64
	}
	return state, nil
}
