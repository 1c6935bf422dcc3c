package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pharmatch/chatbot/internal/metrics"
)

// Limiter bounds how often one webhook source may hit the service.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// slidingWindow rate limiting via a Redis sorted set per key. The script
// runs atomically: prune entries older than the window, count, admit if
// under the limit.
const slidingWindowScript = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window_start = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
if redis.call('ZCARD', key) < limit then
	redis.call('ZADD', key, now, now)
	redis.call('EXPIRE', key, ttl)
	return 1
end
return 0
`

type slidingWindowLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewSlidingWindowLimiter connects to Redis and returns a per-key sliding
// window limiter allowing limit requests per window.
func NewSlidingWindowLimiter(redisURL string, limit int, window time.Duration) (Limiter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &slidingWindowLimiter{
		client: client,
		limit:  int64(limit),
		window: window,
	}, nil
}

func (l *slidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - l.window.Nanoseconds()
	ttl := int64(l.window.Seconds()) + 1

	result, err := l.client.Eval(ctx, slidingWindowScript,
		[]string{"webhook:ratelimit:" + key},
		now, windowStart, l.limit, ttl,
	).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	if result != 1 {
		metrics.RateLimitHits.Inc()
		return false, nil
	}
	return true, nil
}

func (l *slidingWindowLimiter) Close() error {
	return l.client.Close()
}

// NoOpLimiter always allows requests, for local runs without Redis.
type NoOpLimiter struct{}

func (NoOpLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (NoOpLimiter) Close() error {
	return nil
}
