package code

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"teranga/internal/auth/models"
	"teranga/pkg/platform/sentinel"
)

const codeKeyPrefix = "verify:email:"

// RedisStore keeps each code in a hash that expires with the code.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, email string, code models.VerificationCode, ttl time.Duration) error {
	key := codeKeyPrefix + email
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key,
		"code", code.Code,
		"issued_at", code.IssuedAt.UnixMilli(),
		"attempts", 0,
	)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save verification code: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, email string) (*models.VerificationCode, error) {
	fields, err := s.client.HGetAll(ctx, codeKeyPrefix+email).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read verification code: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	issuedAt, err := strconv.ParseInt(fields["issued_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode issued_at: %w", err)
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return nil, fmt.Errorf("decode attempts: %w", err)
	}
	return &models.VerificationCode{
		Code:     fields["code"],
		IssuedAt: time.UnixMilli(issuedAt).UTC(),
		Attempts: attempts,
	}, nil
}

// incrementScript bumps attempts only while the code still exists, so an
// expired key is not resurrected without a TTL.
var incrementScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return -1
end
return redis.call("HINCRBY", KEYS[1], "attempts", 1)
`)

func (s *RedisStore) IncrementAttempts(ctx context.Context, email string) (int, error) {
	n, err := incrementScript.Run(ctx, s.client, []string{codeKeyPrefix + email}).Int()
	if errors.Is(err, redis.Nil) || n < 0 {
		return 0, sentinel.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count verification attempt: %w", err)
	}
	return n, nil
}

func (s *RedisStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, codeKeyPrefix+email).Err(); err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}
	return nil
}
