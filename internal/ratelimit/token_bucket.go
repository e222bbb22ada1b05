package ratelimit

import (
	"context"
	"errors"
	"math"
	"time"

	redis "github.com/redis/go-redis/v9"
)

var ErrBucketNotConfigured = errors.New("token_bucket_not_configured")

// Tokens are stored and returned in thousandths because redis truncates lua
// numbers to integers on the way out.
const tokenBucketScript = `
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2]) * 1000
local ttl = tonumber(ARGV[3])

local t = redis.call("TIME")
local now = t[1] * 1000 + math.floor(t[2] / 1000)

local state = redis.call("HMGET", KEYS[1], "milli", "ts")
local milli = tonumber(state[1]) or burst
local last = tonumber(state[2]) or now
if now > last then
  milli = math.min(burst, milli + (now - last) * rate)
end

local allowed = 0
if milli >= 1000 then
  allowed = 1
  milli = milli - 1000
end

redis.call("HSET", KEYS[1], "milli", milli, "ts", now)
redis.call("PEXPIRE", KEYS[1], ttl)
return {allowed, math.floor(milli)}
`

// Limit describes a bucket refilling Rate tokens per second up to Burst.
type Limit struct {
	Rate  float64
	Burst int
}

func (l Limit) validate() error {
	if l.Rate <= 0 {
		return errors.New("token bucket rate must be positive")
	}
	if l.Burst <= 0 {
		return errors.New("token bucket burst must be positive")
	}
	return nil
}

// ttl keeps an idle key around for twice the time it takes to refill.
func (l Limit) ttl() time.Duration {
	if l.Rate <= 0 || l.Burst <= 0 {
		return time.Second
	}
	return time.Duration(math.Max(1, math.Ceil(2*float64(l.Burst)/l.Rate))) * time.Second
}

// retryAfter is how long until one whole token is available again.
func (l Limit) retryAfter(milli int64) time.Duration {
	missing := 1000 - milli
	if missing <= 0 || l.Rate <= 0 {
		return 0
	}
	return time.Duration(float64(missing) / 1000 / l.Rate * float64(time.Second))
}

type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// TokenBucket is a redis-backed token bucket shared by every replica.
type TokenBucket struct {
	client *redis.Client
	script *redis.Script
}

func NewTokenBucket(client *redis.Client) *TokenBucket {
	if client == nil {
		return nil
	}
	return &TokenBucket{client: client, script: redis.NewScript(tokenBucketScript)}
}

func (t *TokenBucket) Take(ctx context.Context, key string, limit Limit) (Decision, error) {
	if t == nil || t.client == nil {
		return Decision{}, ErrBucketNotConfigured
	}
	if key == "" {
		return Decision{}, errors.New("token bucket key is empty")
	}
	if err := limit.validate(); err != nil {
		return Decision{}, err
	}

	// Tokens per second is the same number as milli-tokens per millisecond.
	out, err := t.script.Run(ctx, t.client, []string{key},
		limit.Rate, limit.Burst, limit.ttl().Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(out) != 2 {
		return Decision{}, errors.New("unexpected token bucket reply")
	}

	decision := Decision{Allowed: out[0] == 1, Remaining: int(out[1] / 1000)}
	if !decision.Allowed {
		decision.RetryAfter = limit.retryAfter(out[1])
	}
	return decision, nil
}
