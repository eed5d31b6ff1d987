package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"teranga/internal/ratelimit/models"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/platform/httputil"
	"teranga/pkg/requestcontext"
)

// BucketStore counts hits per key.
type BucketStore interface {
	Allow(ctx context.Context, key string, policy models.Policy) (*models.Result, error)
}

type Metrics interface {
	IncrementRejections(class string)
	IncrementCheckErrors()
}

type Middleware struct {
	store    BucketStore
	logger   *slog.Logger
	metrics  Metrics
	disabled bool
}

type Option func(*Middleware)

// WithDisabled turns every limiter into a pass-through (tests and demos).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

func New(store BucketStore, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// PerIP limits requests per client IP for one route class. A store failure
// lets the request through.
func (m *Middleware) PerIP(class string, policy models.Policy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled || policy.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.store.Allow(ctx, models.IPKey(class, ip), policy)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit", "error", err, "class", class)
				if m.metrics != nil {
					m.metrics.IncrementCheckErrors()
				}
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				if m.metrics != nil {
					m.metrics.IncrementRejections(class)
				}
				m.logger.WarnContext(ctx, "rate limit exceeded", "class", class, "ip", ip)
				w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter(requestcontext.Now(ctx))))
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, please try again later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}
