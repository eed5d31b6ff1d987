package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"teranga/internal/ratelimit/models"
)

// slidingWindowScript trims hits older than the window, then records the new
// hit only when the sorted set is below the limit. It returns the count after
// the decision, an allowed flag, and the oldest remaining score.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
  redis.call('ZADD', key, now, member)
  count = count + 1
  allowed = 1
end
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now
if oldest[2] then
  first = tonumber(oldest[2])
end
return {count, allowed, first}
`)

// RedisBucketStore shares sliding windows across instances.
type RedisBucketStore struct {
	client *redis.Client
	now    func() time.Time
	seq    func() string
}

func NewRedisBucketStore(client *redis.Client) *RedisBucketStore {
	return &RedisBucketStore{
		client: client,
		now:    time.Now,
		seq:    func() string { return strconv.FormatInt(time.Now().UnixNano(), 36) },
	}
}

func (s *RedisBucketStore) Allow(ctx context.Context, key string, policy models.Policy) (*models.Result, error) {
	now := s.now()
	nowMs := now.UnixMilli()
	member := fmt.Sprintf("%d-%s", nowMs, s.seq())

	raw, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		nowMs, policy.Window.Milliseconds(), policy.Limit, member).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit check: %w", err)
	}
	if len(raw) != 3 {
		return nil, fmt.Errorf("rate limit check: unexpected reply length %d", len(raw))
	}

	count, allowed, oldest := int(raw[0]), raw[1] == 1, raw[2]
	res := &models.Result{
		Allowed: allowed,
		Limit:   policy.Limit,
		ResetAt: time.UnixMilli(oldest).Add(policy.Window),
	}
	if allowed {
		res.Remaining = policy.Limit - count
	}
	return res, nil
}

func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
