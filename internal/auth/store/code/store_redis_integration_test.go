//go:build integration

package code_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"teranga/internal/auth/models"
	"teranga/internal/auth/store/code"
	"teranga/pkg/platform/sentinel"
	"teranga/pkg/testutil/containers"
)

type RedisCodeStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *code.RedisStore
	ctx   context.Context
}

func TestRedisCodeStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCodeStoreSuite))
}

func (s *RedisCodeStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = code.NewRedis(s.redis.Client)
	s.ctx = context.Background()
}

func (s *RedisCodeStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
}

func (s *RedisCodeStoreSuite) TestSaveFindIncrement() {
	issued := time.Now().UTC().Truncate(time.Millisecond)
	s.Require().NoError(s.store.Save(s.ctx, "a@example.com",
		models.VerificationCode{Code: "042424", IssuedAt: issued}, time.Minute))

	n, err := s.store.IncrementAttempts(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal(1, n)

	found, err := s.store.Find(s.ctx, "a@example.com")
	s.Require().NoError(err)
	s.Equal("042424", found.Code)
	s.Equal(1, found.Attempts)
	s.True(found.IssuedAt.Equal(issued))

	ttl, err := s.redis.Client.TTL(s.ctx, "verify:email:a@example.com").Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisCodeStoreSuite) TestMissingCode() {
	_, err := s.store.Find(s.ctx, "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.IncrementAttempts(s.ctx, "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)

	exists, err := s.redis.Client.Exists(s.ctx, "verify:email:nobody@example.com").Result()
	s.Require().NoError(err)
	s.Zero(exists)
}

func (s *RedisCodeStoreSuite) TestDelete() {
	s.Require().NoError(s.store.Save(s.ctx, "d@example.com",
		models.VerificationCode{Code: "111111", IssuedAt: time.Now()}, time.Minute))
	s.Require().NoError(s.store.Delete(s.ctx, "d@example.com"))
	_, err := s.store.Find(s.ctx, "d@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
