package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindowScript records the attempt and decides atomically. Every attempt
// is recorded, allowed or not, which keeps the enforced bound strict: a client
// that keeps hammering while denied does not earn back capacity.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local counter_key = KEYS[2]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local counter = redis.call('INCR', counter_key)
	redis.call('ZADD', key, now, now .. ':' .. counter)
	redis.call('PEXPIRE', key, window_ms)
	redis.call('PEXPIRE', counter_key, window_ms)

	local count = redis.call('ZCARD', key)

	local reset_at = now + window_ms
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	if oldest and #oldest >= 2 then
		reset_at = tonumber(oldest[2]) + window_ms
	end

	if count <= limit then
		return {1, limit - count, reset_at}
	end
	return {0, 0, reset_at}
`)

// SlidingWindow is the Redis-backed limiter used in production. Request
// timestamps are kept in a per-key sorted set trimmed to the trailing window;
// the whole check-and-record runs as one Lua script so the count stays exact
// under concurrent requests from multiple instances.
type SlidingWindow struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	window    time.Duration
}

func NewSlidingWindow(client *redis.Client, keyPrefix string, limit int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		window:    window,
	}
}

func (l *SlidingWindow) Limit(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	redisKey := l.keyPrefix + key
	counterKey := redisKey + ":counter"

	result, err := slidingWindowScript.Run(ctx, l.client,
		[]string{redisKey, counterKey},
		now.UnixMilli(),
		now.Add(-l.window).UnixMilli(),
		l.limit,
		l.window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("run rate limit script failed: %w", err)
	}
	if len(result) != 3 {
		return Decision{}, fmt.Errorf("unexpected rate limit script result length: %d", len(result))
	}

	return Decision{
		Allowed:   result[0] == 1,
		Remaining: int(result[1]),
		ResetAt:   time.UnixMilli(result[2]),
		Limit:     l.limit,
	}, nil
}

// Reset clears the window for one key. Used by tests and operational tooling.
func (l *SlidingWindow) Reset(ctx context.Context, key string) error {
	redisKey := l.keyPrefix + key
	if err := l.client.Del(ctx, redisKey, redisKey+":counter").Err(); err != nil {
		return fmt.Errorf("reset rate limit key failed: %w", err)
	}
	return nil
}
