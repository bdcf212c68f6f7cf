// Package ratelimit throttles requests per key. It sits in front of the booking
// ledger and the registration endpoint and plays no part in booking correctness.
package ratelimit

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Policy is a token bucket: Burst tokens, refilled at PerMinute tokens per minute.
type Policy struct {
	Name      string
	PerMinute int
	Burst     int
}

func (p Policy) interval() time.Duration {
	if p.PerMinute <= 0 {
		return time.Minute
	}
	return time.Minute / time.Duration(p.PerMinute)
}

type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, policy Policy, key string) (Decision, error)
}

// tokenBucketScript keeps {tokens, last_refill_ms} in a hash and refills whole intervals only.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local now_ms = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local interval_ms = tonumber(ARGV[3])
local ttl_seconds = tonumber(ARGV[4])

local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil or last_refill == nil then
    tokens = capacity
    last_refill = now_ms
end

if interval_ms > 0 then
    local elapsed = math.max(0, now_ms - last_refill)
    local intervals = math.floor(elapsed / interval_ms)
    if intervals > 0 then
        tokens = math.min(capacity, tokens + intervals)
        last_refill = last_refill + (intervals * interval_ms)
    end
end

local allowed = 0
local retry_after_ms = 0
if tokens > 0 then
    allowed = 1
    tokens = tokens - 1
else
    retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
redis.call('EXPIRE', key, ttl_seconds)

return { allowed, tokens, retry_after_ms }
`)

// RedisLimiter shares buckets between all instances of the service.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	now    func() time.Time
}

func NewRedisLimiter(client redis.Scripter, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, now: time.Now}
}

func (l *RedisLimiter) Allow(ctx context.Context, policy Policy, key string) (Decision, error) {
	interval := policy.interval()
	ttl := int64(math.Ceil((5 * interval * time.Duration(max(policy.Burst, 1))).Seconds()))
	vals, err := tokenBucketScript.Run(ctx, l.client, []string{l.bucketKey(policy, key)},
		l.now().UnixMilli(), max(policy.Burst, 1), interval.Milliseconds(), max(ttl, 1)).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	if len(vals) != 3 {
		return Decision{}, errUnexpectedReply
	}
	return Decision{
		Allowed:    vals[0] == 1,
		Remaining:  vals[1],
		RetryAfter: time.Duration(vals[2]) * time.Millisecond,
	}, nil
}

func (l *RedisLimiter) bucketKey(policy Policy, key string) string {
	return l.prefix + ":" + policy.Name + ":" + key
}

// LocalLimiter keeps buckets in process memory. Idle buckets are swept at most
// once per idleTTL, so a bucket may outlive its TTL by up to another idleTTL.
type LocalLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewLocalLimiter(idleTTL time.Duration) *LocalLimiter {
	return &LocalLimiter{visitors: make(map[string]*visitor), idleTTL: idleTTL, now: time.Now}
}

func (l *LocalLimiter) Allow(_ context.Context, policy Policy, key string) (Decision, error) {
	now := l.now()
	lim := l.limiter(policy, key, now)

	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true, Remaining: int64(lim.TokensAt(now))}, nil
}

func (l *LocalLimiter) limiter(policy Policy, key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := policy.Name + ":" + key
	v, ok := l.visitors[id]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(policy.interval()), max(policy.Burst, 1))}
		l.visitors[id] = v
	}
	v.lastSeen = now
	l.evictLocked(now)
	return v.limiter
}

func (l *LocalLimiter) evictLocked(now time.Time) {
	if l.idleTTL <= 0 || now.Sub(l.lastSweep) < l.idleTTL {
		return
	}
	l.lastSweep = now
	for id, v := range l.visitors {
		if now.Sub(v.lastSeen) > l.idleTTL {
			delete(l.visitors, id)
		}
	}
}

// Fallback asks Primary and degrades to Secondary when Primary errors, e.g. Redis is down.
type Fallback struct {
	Primary   Limiter
	Secondary Limiter
	Log       zerolog.Logger
}

func (f *Fallback) Allow(ctx context.Context, policy Policy, key string) (Decision, error) {
	d, err := f.Primary.Allow(ctx, policy, key)
	if err == nil {
		return d, nil
	}
	f.Log.Warn().Err(err).Str("policy", policy.Name).Msg("primary rate limiter failed, using local buckets")
	return f.Secondary.Allow(ctx, policy, key)
}

// RetryAfterSeconds rounds up to whole seconds for the Retry-After header.
func RetryAfterSeconds(d time.Duration) string {
	secs := int64(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.FormatInt(secs, 10)
}

type replyError string

func (e replyError) Error() string { return string(e) }

const errUnexpectedReply = replyError("ratelimit: unexpected script reply")
