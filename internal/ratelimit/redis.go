package ratelimit

import (
	"context"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// fixedWindowScript counts hits per key inside a fixed window and sets a
// block marker once the budget is exhausted. Returns
// {allowed, remaining, retry_after_ms}.
const fixedWindowScript = `
local points = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])
local block_ms = tonumber(ARGV[3])

local nowData = redis.call("TIME")
local now = (nowData[1] * 1000) + math.floor(nowData[2] / 1000)

local block_key = KEYS[1] .. ":block"
local blocked_until = tonumber(redis.call("GET", block_key))
if blocked_until and blocked_until > now then
  return {0, 0, blocked_until - now}
end

local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], window_ms)
end

if count > points then
  local until_ms = now + block_ms
  redis.call("SET", block_key, until_ms, "PX", block_ms)
  return {0, 0, block_ms}
end

local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = window_ms
end
return {1, points - count, ttl}
`

// RedisLimiter is the shared-state variant of the fixed-window counter, for
// deployments that run more than one instance behind a balancer.
type RedisLimiter struct {
	opts   Options
	client *redis.Client
	script *redis.Script
}

func NewRedisLimiter(opts Options, client *redis.Client) *RedisLimiter {
	if client == nil {
		return nil
	}
	return &RedisLimiter{
		opts:   opts,
		client: client,
		script: redis.NewScript(fixedWindowScript),
	}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (*Result, error) {
	if r == nil || r.client == nil {
		return nil, errors.New("rate limiter not configured")
	}
	if key == "" {
		return nil, errors.New("rate limiter key is empty")
	}

	res, err := r.script.Run(
		ctx,
		r.client,
		[]string{"ratelimit:" + key},
		r.opts.Points,
		int64(r.opts.Window/time.Millisecond),
		int64(r.opts.BlockDuration/time.Millisecond),
	).Slice()
	if err != nil {
		return nil, err
	}
	if len(res) < 3 {
		return nil, errors.New("invalid rate limit script response")
	}

	allowed := castToInt(res[0]) == 1
	remaining := int(castToInt(res[1]))
	waitMS := castToInt(res[2])

	out := &Result{
		Allowed:   allowed,
		Limit:     r.opts.Points,
		Remaining: remaining,
		ResetTime: time.Now().Add(time.Duration(waitMS) * time.Millisecond),
	}
	if !allowed {
		out.RetryAfter = time.Duration(waitMS) * time.Millisecond
	}
	return out, nil
}

func castToInt(v interface{}) int64 {
	switch val := v.(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	default:
		return 0
	}
}
