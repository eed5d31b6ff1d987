package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration.
type Server struct {
	Addr        string
	Environment string
	LogLevel    string
	AdminToken  string
	// CatalogFixture is a YAML seed loaded into the in-memory catalog.
	CatalogFixture string

	Auth      AuthConfig
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
}

// AuthConfig configures token issuance and verification codes.
type AuthConfig struct {
	JWTSigningKey       string
	Issuer              string
	Audience            string
	AccessTokenTTL      time.Duration
	VerificationCodeTTL time.Duration
}

// RateLimitConfig caps requests per client IP on the public auth routes.
type RateLimitConfig struct {
	Disabled   bool
	AuthLimit  int
	AuthWindow time.Duration
}

// DatabaseConfig configures the Postgres pool. An empty URL selects in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	MigrateOnStart  bool
}

// RedisConfig configures the go-redis client. An empty URL selects in-memory stores.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit relay. No brokers disables the relay.
type KafkaConfig struct {
	Brokers       []string
	AuditTopic    string
	RelayInterval time.Duration
	RelayBatch    int
}

// Load reads an optional .env file and then the environment.
func Load(envFiles ...string) Server {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// A missing .env is normal outside local development.
	_ = godotenv.Load(envFiles...)
	return FromEnv()
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:           getString("TERANGA_ADDR", ":8080"),
		Environment:    getString("TERANGA_ENV", "development"),
		LogLevel:       getString("LOG_LEVEL", "info"),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		CatalogFixture: os.Getenv("CATALOG_FIXTURE"),
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey:       getString("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:              getString("JWT_ISSUER", "teranga"),
			Audience:            getString("JWT_AUDIENCE", "teranga-web"),
			AccessTokenTTL:      getDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
			VerificationCodeTTL: getDuration("VERIFICATION_CODE_TTL", 15*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Disabled:   getBool("RATE_LIMIT_DISABLED", false),
			AuthLimit:  getInt("RATE_LIMIT_AUTH_PER_WINDOW", 10),
			AuthWindow: getDuration("RATE_LIMIT_AUTH_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			MigrateOnStart:  getBool("DATABASE_MIGRATE", true),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:       splitList(os.Getenv("KAFKA_BROKERS")),
			AuditTopic:    getString("KAFKA_AUDIT_TOPIC", "teranga.audit"),
			RelayInterval: getDuration("AUDIT_RELAY_INTERVAL", 2*time.Second),
			RelayBatch:    getInt("AUDIT_RELAY_BATCH", 100),
		},
	}
}

// IsProduction reports whether dev defaults must be refused.
func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

func getString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
