package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"

	authhandler "teranga/internal/auth/handler"
	authmetrics "teranga/internal/auth/metrics"
	"teranga/internal/auth/notify"
	authservice "teranga/internal/auth/service"
	"teranga/internal/auth/store/code"
	"teranga/internal/auth/store/revocation"
	"teranga/internal/auth/store/user"
	cataloghandler "teranga/internal/catalog/handler"
	catalogmetrics "teranga/internal/catalog/metrics"
	catalogservice "teranga/internal/catalog/service"
	catalogstore "teranga/internal/catalog/store"
	favoritehandler "teranga/internal/favorite/handler"
	favoriteservice "teranga/internal/favorite/service"
	favoritestore "teranga/internal/favorite/store"
	funnelhandler "teranga/internal/funnel/handler"
	funnelmetrics "teranga/internal/funnel/metrics"
	funnelservice "teranga/internal/funnel/service"
	funnelstore "teranga/internal/funnel/store"
	httpapi "teranga/internal/http"
	jwttoken "teranga/internal/jwt_token"
	"teranga/internal/platform/config"
	"teranga/internal/platform/metrics"
	"teranga/internal/platform/postgres"
	redisclient "teranga/internal/platform/redis"
	purchasehandler "teranga/internal/purchase/handler"
	purchasemetrics "teranga/internal/purchase/metrics"
	purchaseservice "teranga/internal/purchase/service"
	purchasestore "teranga/internal/purchase/store"
	ratelimitmetrics "teranga/internal/ratelimit/metrics"
	ratelimitmw "teranga/internal/ratelimit/middleware"
	ratelimitmodels "teranga/internal/ratelimit/models"
	"teranga/internal/ratelimit/store/bucket"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/platform/audit/publisher"
	auditmemory "teranga/pkg/platform/audit/store/memory"
	auditpostgres "teranga/pkg/platform/audit/store/postgres"
	"teranga/pkg/platform/audit/worker"
	authmw "teranga/pkg/platform/middleware/auth"
	txcontext "teranga/pkg/platform/tx"
)

// infra holds the optional backing services. A nil field selects the
// in-memory fallback for that concern.
type infra struct {
	db    *sql.DB
	redis *redisclient.Client
	kafka *kgo.Client
}

func openInfra(ctx context.Context, cfg config.Server, log *slog.Logger) (*infra, error) {
	in := &infra{}
	if cfg.Database.URL != "" {
		db, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		in.db = db
		if cfg.Database.MigrateOnStart {
			if err := postgres.Migrate(ctx, db, log); err != nil {
				in.Close()
				return nil, err
			}
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		in.Close()
		return nil, err
	}
	in.redis = rc
	if rc == nil {
		log.Warn("REDIS_URL not set, token revocation and verification codes are process-local")
	}

	if len(cfg.Kafka.Brokers) > 0 {
		client, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.Kafka.Brokers...),
			kgo.DefaultProduceTopic(cfg.Kafka.AuditTopic),
			kgo.RequiredAcks(kgo.AllISRAcks()),
		)
		if err != nil {
			in.Close()
			return nil, fmt.Errorf("create kafka client: %w", err)
		}
		in.kafka = client
		ensureCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := worker.EnsureTopic(ensureCtx, client, cfg.Kafka.AuditTopic, 3, 1); err != nil {
			log.Warn("could not ensure audit topic", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
	} else {
		log.Warn("KAFKA_BROKERS not set, audit events stay in the outbox")
	}
	return in, nil
}

func (in *infra) Close() {
	if in.kafka != nil {
		in.kafka.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
	if in.db != nil {
		_ = in.db.Close()
	}
}

func (in *infra) healthChecks() map[string]httpapi.HealthCheck {
	checks := map[string]httpapi.HealthCheck{}
	if in.db != nil {
		checks["postgres"] = in.db.PingContext
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	if in.kafka != nil {
		checks["kafka"] = in.kafka.Ping
	}
	return checks
}

type auditStore interface {
	audit.Store
	audit.Outbox
}

// funnelStore also answers the purchase service's profile lookups.
type funnelStore interface {
	funnelservice.Store
	purchaseservice.Profiles
}

type revocationList interface {
	authservice.TokenRevoker
	authmw.TokenRevocationChecker
}

// stores picks Postgres/Redis implementations when configured and the
// in-memory ones otherwise.
type stores struct {
	catalog   catalogservice.Store
	funnel    funnelStore
	purchases purchaseservice.Store
	favorites favoriteservice.Store
	users     authservice.UserStore
	codes     authservice.CodeStore
	trl       revocationList
	buckets   ratelimitmw.BucketStore
	audit     auditStore
	tx        txcontext.Runner
}

func buildStores(cfg config.Server, in *infra, log *slog.Logger) (*stores, error) {
	s := &stores{}
	if in.db != nil {
		s.catalog = catalogstore.NewPostgres(in.db)
		s.funnel = funnelstore.NewPostgres(in.db)
		s.purchases = purchasestore.NewPostgres(in.db)
		s.favorites = favoritestore.NewPostgres(in.db)
		s.users = user.NewPostgres(in.db)
		s.audit = auditpostgres.New(in.db)
		s.tx = txcontext.NewRunner(in.db)
	} else {
		catalog := catalogstore.NewInMemory()
		if cfg.CatalogFixture != "" {
			fixture, err := catalogstore.LoadFixtureFile(cfg.CatalogFixture)
			if err != nil {
				return nil, err
			}
			catalog.Load(fixture)
			log.Info("catalog fixture loaded", "path", cfg.CatalogFixture, "properties", len(fixture.Properties))
		}
		s.catalog = catalog
		s.funnel = funnelstore.NewInMemory()
		s.purchases = purchasestore.NewInMemory()
		s.favorites = favoritestore.NewInMemory()
		s.users = user.New()
		s.audit = auditmemory.NewInMemoryStore()
		s.tx = txcontext.NoopRunner{}
	}

	if in.redis != nil {
		s.codes = code.NewRedis(in.redis.Client)
		s.trl = revocation.NewRedisTRL(in.redis.Client)
		s.buckets = bucket.NewRedisBucketStore(in.redis.Client)
	} else {
		s.codes = code.NewInMemory()
		s.trl = revocation.NewInMemoryTRL()
		s.buckets = bucket.NewInMemoryBucketStore()
	}
	return s, nil
}

type app struct {
	router http.Handler
	relay  *worker.Relay
}

func buildApp(cfg config.Server, in *infra, log *slog.Logger) (*app, error) {
	st, err := buildStores(cfg, in, log)
	if err != nil {
		return nil, err
	}
	reg := prometheus.DefaultRegisterer
	httpMetrics := metrics.New(reg)
	auditor := publisher.NewPublisher(st.audit, publisher.WithLogger(log))

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	requireAuth := authmw.RequireAuth(jwttoken.NewMiddlewareValidator(jwtService), st.trl, log)
	limiter := ratelimitmw.New(st.buckets, log,
		ratelimitmw.WithDisabled(cfg.RateLimit.Disabled),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(reg)),
	)
	throttleAuth := limiter.PerIP("auth", ratelimitmodels.Policy{
		Limit:  cfg.RateLimit.AuthLimit,
		Window: cfg.RateLimit.AuthWindow,
	})

	catalog := catalogservice.New(st.catalog,
		catalogservice.WithLogger(log),
		catalogservice.WithMetrics(catalogmetrics.New(reg)),
	)
	purchases := purchaseservice.New(st.purchases, catalog, st.funnel,
		purchaseservice.WithLogger(log),
		purchaseservice.WithMetrics(purchasemetrics.New(reg)),
		purchaseservice.WithAuditPublisher(auditor),
		purchaseservice.WithTxRunner(st.tx),
	)
	funnel := funnelservice.New(st.funnel, purchases,
		funnelservice.WithLogger(log),
		funnelservice.WithMetrics(funnelmetrics.New(reg)),
		funnelservice.WithAuditPublisher(auditor),
		funnelservice.WithTxRunner(st.tx),
	)
	favorites := favoriteservice.New(st.favorites, catalog,
		favoriteservice.WithLogger(log),
		favoriteservice.WithAuditPublisher(auditor),
	)
	auth := authservice.New(st.users, st.codes, jwtService, st.trl, notify.NewLogSender(log),
		authservice.Config{
			AccessTokenTTL:      cfg.Auth.AccessTokenTTL,
			VerificationCodeTTL: cfg.Auth.VerificationCodeTTL,
		},
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New(reg)),
		authservice.WithAuditPublisher(auditor),
	)

	router := httpapi.NewRouter(log, in.healthChecks(),
		authhandler.New(auth, log, httpMetrics, requireAuth, throttleAuth),
		cataloghandler.New(catalog, log, httpMetrics, cfg.AdminToken),
		funnelhandler.New(funnel, log, httpMetrics, requireAuth, cfg.AdminToken),
		purchasehandler.New(purchases, log, httpMetrics, requireAuth),
		favoritehandler.New(favorites, log, httpMetrics, requireAuth),
	)

	a := &app{router: router}
	if in.kafka != nil {
		a.relay = worker.NewRelay(st.audit, in.kafka, cfg.Kafka.AuditTopic,
			worker.WithInterval(cfg.Kafka.RelayInterval),
			worker.WithBatchSize(cfg.Kafka.RelayBatch),
			worker.WithLogger(log),
			worker.WithMetrics(worker.NewMetrics(reg)),
		)
	}
	return a, nil
}
