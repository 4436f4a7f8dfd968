// Package ratelimit counts requests per key in fixed Redis windows.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"github.com/redis/go-redis/v9"
	"seatLedger/internal/config"
	"time"
)

var ErrInvalidSettings = errors.New("invalid rate limit settings")

type Redis struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewClient(cfg config.RateLimit) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", cfg.Address, err)
	}

	return client, nil
}

func NewRedis(client *redis.Client, limit int, window time.Duration) (*Redis, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidSettings, limit)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be positive, got %s", ErrInvalidSettings, window)
	}

	return &Redis{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// Allow records one hit for key and reports whether it is within the limit.
func (l *Redis) Allow(ctx context.Context, key string) (bool, error) {
	const op = "lib.ratelimit.Allow"

	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, bucket)

	pipe := l.client.TxPipeline()
	hits := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return hits.Val() <= int64(l.limit), nil
}
