package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/backend-fundraise/internal/fee"
	"github.com/noah-isme/backend-fundraise/internal/money"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	// Defaults used when no platform settings row overrides them.
	CurrencyFormat money.FormatConfig
	FeePolicy      fee.Policy

	SettingsCacheTTL time.Duration
	RewardCacheTTL   time.Duration
	IdempotencyTTL   time.Duration

	ContributionRateWindow time.Duration
	ContributionRateMax    int

	NotifyEmailEnabled bool
	NotifyEmailFrom    string
	NotifyEmailTopics  map[string]bool

	WorkerConcurrency int
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		CurrencyFormat: money.FormatConfig{
			Symbol:            valueOrDefault(k.String("CURRENCY_SYMBOL"), "$"),
			Position:          parsePosition(k.String("CURRENCY_SYMBOL_POSITION")),
			DecimalPlaces:     parseInt(k.String("CURRENCY_DECIMAL_PLACES"), 2),
			DecimalSeparator:  valueOrDefault(k.String("CURRENCY_DECIMAL_SEPARATOR"), "."),
			ThousandSeparator: valueOrDefault(k.String("CURRENCY_THOUSAND_SEPARATOR"), ","),
		},
		FeePolicy: fee.Policy{
			Enabled:    parseBool(k.String("FEE_RECOVERY_ENABLED")),
			Percentage: parseFloat(k.String("FEE_RECOVERY_PERCENTAGE"), 0),
			Fixed:      int64(parseInt(k.String("FEE_RECOVERY_FIXED"), 0)),
			MaxFee:     int64(parseInt(k.String("FEE_RECOVERY_MAX"), 0)),
		},
		SettingsCacheTTL:       parseDuration(k.String("SETTINGS_CACHE_TTL"), "5m"),
		RewardCacheTTL:         parseDuration(k.String("REWARD_CACHE_TTL"), "10m"),
		IdempotencyTTL:         parseDuration(k.String("IDEMPOTENCY_TTL"), "24h"),
		ContributionRateWindow: parseDuration(k.String("CONTRIBUTION_RATE_WINDOW"), "1m"),
		ContributionRateMax:    parseInt(k.String("CONTRIBUTION_RATE_MAX"), 30),
		NotifyEmailEnabled:     parseBool(k.String("NOTIFY_EMAIL_ENABLED")),
		NotifyEmailFrom:        strings.TrimSpace(k.String("NOTIFY_EMAIL_FROM")),
		NotifyEmailTopics:      parseTopicToggles(k.String("NOTIFY_EMAIL_TOPICS")),
		WorkerConcurrency:      parseInt(k.String("WORKER_CONCURRENCY"), 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseTopicToggles reads "topic:on,topic:off" pairs; unlisted topics stay
// enabled.
func parseTopicToggles(value string) map[string]bool {
	pairs := splitAndTrim(value)
	if len(pairs) == 0 {
		return nil
	}
	toggles := make(map[string]bool, len(pairs))
	for _, pair := range pairs {
		name, state, found := strings.Cut(pair, ":")
		if !found {
			toggles[strings.TrimSpace(name)] = true
			continue
		}
		toggles[strings.TrimSpace(name)] = parseBool(state)
	}
	return toggles
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parsePosition(value string) string {
	if strings.ToLower(strings.TrimSpace(value)) == money.PositionAfter {
		return money.PositionAfter
	}
	return money.PositionBefore
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
