package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LimitResult is the outcome of a rate limit check.
type LimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter performs sliding-window rate limiting backed by Redis sorted sets.
// Replicas sharing a Redis instance share their counters.
type Limiter struct {
	rdb    *redis.Client
	prefix string
}

// NewLimiter creates a new rate limiter. If rdb is nil, all checks pass.
func NewLimiter(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb, prefix: "media:rl:"}
}

// slidingWindowScript trims entries older than the window, then admits the
// request when the remaining count is under the limit.
// KEYS[1] = sorted set key
// ARGV[1] = window start (unix micro)
// ARGV[2] = now (unix micro)
// ARGV[3] = limit
// ARGV[4] = key TTL in seconds
// Returns {count, allowed} where allowed is 1 or 0.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[1])
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, ARGV[2], ARGV[2] .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, ARGV[4])
    return {count + 1, 1}
end

redis.call('EXPIRE', key, ARGV[4])
return {count, 0}
`)

// Check counts one request against bucket key. Redis failures fail open.
func (l *Limiter) Check(ctx context.Context, key string, limit int64, window time.Duration) (LimitResult, error) {
	now := time.Now()
	if l.rdb == nil {
		return LimitResult{Allowed: true, Remaining: limit - 1, ResetAt: now.Add(window)}, nil
	}

	result, err := slidingWindowScript.Run(ctx, l.rdb, []string{l.prefix + key},
		now.Add(-window).UnixMicro(),
		now.UnixMicro(),
		limit,
		int64(window.Seconds())+1,
	).Int64Slice()
	if err != nil {
		return LimitResult{Allowed: true, Remaining: limit, ResetAt: now.Add(window)},
			fmt.Errorf("rate limit check %s: %w", key, err)
	}

	count, allowed := result[0], result[1] == 1
	remaining := max(limit-count, 0)

	res := LimitResult{
		Allowed:   allowed,
		Remaining: remaining,
		ResetAt:   now.Add(window),
	}
	if !allowed {
		res.RetryAfter = window / 2
	}
	return res, nil
}
