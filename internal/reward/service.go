// Package reward resolves reward tiers and their shipping rates for pledge
// pricing.
package reward

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-fundraise/internal/money"
	"github.com/noah-isme/backend-fundraise/internal/pricing"
)

// ErrNotFound is returned when the reward does not exist.
var ErrNotFound = errors.New("reward: not found")

// Reward is a reward tier with its fixed price and ordered shipping rates.
type Reward struct {
	ID         uuid.UUID              `json:"id"`
	CampaignID uuid.UUID              `json:"campaignId"`
	Title      string                 `json:"title"`
	Amount     money.Amount           `json:"amount"`
	Shipping   []pricing.ShippingRate `json:"shipping"`
}

// Store loads rewards from persistence.
type Store interface {
	GetReward(ctx context.Context, id uuid.UUID) (Reward, error)
}

// PGStore queries rewards from Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const getRewardSQL = `
SELECT id, campaign_id, title, amount
FROM rewards
WHERE id = $1`

const listShippingRatesSQL = `
SELECT location, cost
FROM reward_shipping_rates
WHERE reward_id = $1
ORDER BY sort_order`

// GetReward implements the Store interface.
func (s PGStore) GetReward(ctx context.Context, id uuid.UUID) (Reward, error) {
	if s.Pool == nil {
		return Reward{}, errors.New("reward: pool not configured")
	}
	var (
		rid, cid pgtype.UUID
		title    string
		amount   int64
	)
	err := s.Pool.QueryRow(ctx, getRewardSQL, pgtype.UUID{Bytes: id, Valid: true}).Scan(&rid, &cid, &title, &amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reward{}, ErrNotFound
		}
		return Reward{}, err
	}
	out := Reward{
		ID:         uuid.UUID(rid.Bytes),
		CampaignID: uuid.UUID(cid.Bytes),
		Title:      title,
		Amount:     amount,
	}
	rows, err := s.Pool.Query(ctx, listShippingRatesSQL, pgtype.UUID{Bytes: id, Valid: true})
	if err != nil {
		return Reward{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var rate pricing.ShippingRate
		if err := rows.Scan(&rate.Location, &rate.Cost); err != nil {
			return Reward{}, err
		}
		out.Shipping = append(out.Shipping, rate)
	}
	return out, rows.Err()
}

// Service serves reward lookups through a Redis cache.
type Service struct {
	Store Store
	Cache *Cache
}

// Get resolves a reward by ID, consulting the cache first. Cache failures
// fall through to the store.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Reward, error) {
	if s == nil || s.Store == nil {
		return Reward{}, errors.New("reward: store not configured")
	}
	key := "reward:" + id.String()
	var cached Reward
	if hit, err := s.Cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}
	loaded, err := s.Store.GetReward(ctx, id)
	if err != nil {
		return Reward{}, err
	}
	_ = s.Cache.SetJSON(ctx, key, loaded)
	return loaded, nil
}
