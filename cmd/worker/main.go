package main

import (
	"os"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/noah-isme/backend-fundraise/internal/config"
	"github.com/noah-isme/backend-fundraise/internal/notify"
	"github.com/noah-isme/backend-fundraise/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().
		Str("env", cfg.AppEnv).
		Str("proc", "worker").
		Logger()

	redisConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis uri")
	}

	concurrency := cfg.WorkerConcurrency
	if concurrency <= 0 {
		concurrency = 10
	}
	srv := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			notify.QueueName: 1,
		},
	})

	handler := notify.DeliveryHandler{
		Mail: notify.LogSender{Log: logger},
		Log:  logger,
	}

	logger.Info().Int("concurrency", concurrency).Msg("worker starting")
	if err := srv.Run(notify.NewMux(handler)); err != nil {
		logger.Fatal().Err(err).Msg("worker exited unexpectedly")
	}
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
