package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Each key-window pair is one Redis counter. INCR and EXPIRE run as a
// script so the TTL is set atomically with the first hit; the counter
// then expires on its own, no sweeping needed.
var redisIncrScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter is a fixed-window limiter shared across replicas.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	window time.Duration
}

// NewRedisLimiter constructs a RedisLimiter. A non-positive window
// defaults to one second.
func NewRedisLimiter(client *redis.Client, prefix string, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Second
	}
	return &RedisLimiter{
		client: client,
		prefix: strings.TrimSpace(prefix),
		window: window,
	}
}

// Allow checks whether the request fits the current window's limit.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error) {
	if limit <= 0 || key == "" || l == nil || l.client == nil {
		return Result{Allowed: true}, nil
	}
	idx := now.UnixNano() / int64(l.window)
	reset := time.Unix(0, (idx+1)*int64(l.window)).UTC()

	// Keep the counter around for two full windows so a straggling
	// replica still increments the right key.
	ttlSeconds := int64(2 * l.window / time.Second)
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	res, errEval := redisIncrScript.Run(ctx, l.client, []string{l.buildKey(key, idx)}, ttlSeconds).Result()
	if errEval != nil {
		return Result{}, errEval
	}
	count, ok := res.(int64)
	if !ok {
		return Result{}, fmt.Errorf("ratelimit: unexpected redis response %T", res)
	}

	if count > int64(limit) {
		return Result{Allowed: false, Remaining: 0, Reset: reset}, nil
	}
	return Result{Allowed: true, Remaining: limit - int(count), Reset: reset}, nil
}

// buildKey namespaces the counter by prefix, caller key, and window.
func (l *RedisLimiter) buildKey(key string, idx int64) string {
	idxStr := strconv.FormatInt(idx, 10)
	if l.prefix == "" {
		return "ratelimit:" + key + ":" + idxStr
	}
	return l.prefix + ":" + key + ":" + idxStr
}
