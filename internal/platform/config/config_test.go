package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("TERANGA_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("RATE_LIMIT_AUTH_PER_WINDOW", "")

	cfg := FromEnv()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "teranga.audit", cfg.Kafka.AuditTopic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 24*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 10, cfg.RateLimit.AuthLimit)
	assert.Equal(t, time.Minute, cfg.RateLimit.AuthWindow)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TERANGA_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("REDIS_POOL_SIZE", "not-a-number")
	t.Setenv("TERANGA_ENV", "production")
	t.Setenv("RATE_LIMIT_AUTH_PER_WINDOW", "3")
	t.Setenv("RATE_LIMIT_DISABLED", "true")

	cfg := FromEnv()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 10, cfg.Redis.PoolSize)
	assert.Equal(t, 3, cfg.RateLimit.AuthLimit)
	assert.True(t, cfg.RateLimit.Disabled)
	assert.True(t, cfg.IsProduction())
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("ADMIN_TOKEN=from-dotenv\n"), 0o600))
	t.Setenv("ADMIN_TOKEN", "")
	require.NoError(t, os.Unsetenv("ADMIN_TOKEN"))

	cfg := Load(path)
	assert.Equal(t, "from-dotenv", cfg.AdminToken)
}
