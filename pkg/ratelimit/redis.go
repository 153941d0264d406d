package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow trims the sorted set to the window, then records the event
// only if the remaining count is under the limit.
//
// KEYS[1] key, ARGV[1] highest expired score, ARGV[2] now (ms),
// ARGV[3] limit, ARGV[4] member, ARGV[5] ttl (ms)
var slidingWindow = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
local count = redis.call('ZCARD', KEYS[1])
if count >= tonumber(ARGV[3]) then
	return 0
end
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[4])
redis.call('PEXPIRE', KEYS[1], ARGV[5])
return 1
`)

// Redis is a sliding-window limiter shared by every instance that points at
// the same redis. Events are stored as members of one sorted set per key.
type Redis struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
	clock  func() time.Time
}

func NewRedis(client redis.Scripter, prefix string, cfg Config) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
		limit:  cfg.Limit,
		window: cfg.Window,
		clock:  time.Now,
	}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	if r.limit <= 0 || r.window <= 0 {
		return true, nil
	}

	now := r.clock().UnixMilli()
	cutoff := now - r.window.Milliseconds()

	res, err := slidingWindow.Run(ctx, r.client, []string{r.key(key)},
		strconv.FormatInt(cutoff, 10),
		now,
		r.limit,
		fmt.Sprintf("%d-%s", now, uuid.NewString()),
		r.window.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis sliding window: %w", err)
	}
	return res == 1, nil
}

func (r *Redis) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}
