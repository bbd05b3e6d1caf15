package rediscache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to redis and waits until it answers a ping.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	backoff := retry.WithMaxRetries(5, retry.NewExponential(200*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := rdb.Ping(ctx).Err()
		if err != nil {
			slog.WarnContext(ctx, "redis is not ready yet", "addr", cfg.Addr, "error", err)

			return retry.RetryableError(err)
		}

		return nil
	})
	if err != nil {
		closeErr := rdb.Close()
		if closeErr != nil {
			slog.ErrorContext(ctx, "failed to close redis client", "error", closeErr)
		}

		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}
