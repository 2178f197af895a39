// Package settings serves platform-wide configuration stored in Postgres,
// with environment defaults when no override row exists.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-fundraise/internal/fee"
	"github.com/noah-isme/backend-fundraise/internal/money"
)

// Setting keys stored in the platform_settings table.
const (
	KeyFeePolicy      = "fee_policy"
	KeyCurrencyFormat = "currency_format"
)

// ErrNotFound is returned when no row exists for a settings key.
var ErrNotFound = errors.New("settings: not found")

// Store loads raw settings values from persistence.
type Store interface {
	GetValue(ctx context.Context, key string) ([]byte, error)
}

// PGStore queries platform settings from Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

const getValueSQL = `
SELECT value
FROM platform_settings
WHERE key = $1`

// GetValue implements the Store interface.
func (s PGStore) GetValue(ctx context.Context, key string) ([]byte, error) {
	if s.Pool == nil {
		return nil, errors.New("settings: pool not configured")
	}
	var value []byte
	err := s.Pool.QueryRow(ctx, getValueSQL, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

// Defaults are applied when the database has no override for a key.
type Defaults struct {
	FeePolicy      fee.Policy
	CurrencyFormat money.FormatConfig
}

// Service resolves platform settings with a Redis cache in front of the
// store. Store and cache failures fall back to the configured defaults so
// pricing never blocks on settings availability.
type Service struct {
	Store    Store
	Client   *redis.Client
	TTL      time.Duration
	Defaults Defaults
}

// FeePolicy returns the active fee recovery policy.
func (s *Service) FeePolicy(ctx context.Context) fee.Policy {
	var policy fee.Policy
	if s.resolve(ctx, KeyFeePolicy, &policy) {
		return policy
	}
	return s.Defaults.FeePolicy
}

// CurrencyFormat returns the active currency display configuration.
func (s *Service) CurrencyFormat(ctx context.Context) money.FormatConfig {
	var format money.FormatConfig
	if s.resolve(ctx, KeyCurrencyFormat, &format) {
		return format
	}
	return s.Defaults.CurrencyFormat
}

func (s *Service) resolve(ctx context.Context, key string, dst any) bool {
	if s == nil || s.Store == nil {
		return false
	}
	cacheKey := "settings:" + key
	if data, ok := s.cacheGet(ctx, cacheKey); ok {
		if json.Unmarshal(data, dst) == nil {
			return true
		}
	}
	data, err := s.Store.GetValue(ctx, key)
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false
	}
	s.cacheSet(ctx, cacheKey, data)
	return true
}

func (s *Service) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.Client == nil {
		return nil, false
	}
	data, err := s.Client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *Service) cacheSet(ctx context.Context, key string, data []byte) {
	if s.Client == nil {
		return
	}
	_ = s.Client.Set(ctx, key, data, s.TTL).Err()
}
