package code

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teranga/internal/auth/models"
	"teranga/pkg/platform/sentinel"
)

func TestInMemoryCodeLifecycle(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	s := NewInMemory()
	s.now = func() time.Time { return now }
	email := "fatou@example.com"

	require.NoError(t, s.Save(ctx, email, models.VerificationCode{Code: "123456", IssuedAt: now}, 15*time.Minute))

	n, err := s.IncrementAttempts(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, err := s.Find(ctx, email)
	require.NoError(t, err)
	assert.Equal(t, "123456", found.Code)
	assert.Equal(t, 1, found.Attempts)

	t.Run("save resets attempts", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, email, models.VerificationCode{Code: "654321", IssuedAt: now, Attempts: 2}, 15*time.Minute))
		found, err := s.Find(ctx, email)
		require.NoError(t, err)
		assert.Equal(t, 0, found.Attempts)
	})

	t.Run("expired codes read as missing", func(t *testing.T) {
		now = now.Add(15 * time.Minute)
		_, err := s.Find(ctx, email)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
		_, err = s.IncrementAttempts(ctx, email)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
