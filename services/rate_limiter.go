package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const feedRateLimitPrefix = "feed_rate_limit:"

// RedisRateLimiter counts requests per key in fixed windows
type RedisRateLimiter struct {
	Client *redis.Client
	Limit  int64
	Window time.Duration
}

// NewRedisRateLimiter connects to redisURL (redis:// or rediss://)
func NewRedisRateLimiter(redisURL string, limit int64, window time.Duration) (*RedisRateLimiter, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	return &RedisRateLimiter{Client: redis.NewClient(opts), Limit: limit, Window: window}, nil
}

// Allow increments the counter for key and reports whether it is within the limit
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := feedRateLimitPrefix + key

	var incr *redis.IntCmd
	_, err := l.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, l.Window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return incr.Val() <= l.Limit, nil
}

// Close closes the Redis connection pool
func (l *RedisRateLimiter) Close() error {
	return l.Client.Close()
}
