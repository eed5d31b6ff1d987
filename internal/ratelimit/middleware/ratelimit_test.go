package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teranga/internal/ratelimit/models"
	"teranga/internal/ratelimit/store/bucket"
	"teranga/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, models.Policy) (*models.Result, error) {
	return nil, errors.New("redis unavailable")
}

type countingMetrics struct {
	rejections  map[string]int
	checkErrors int
}

func (c *countingMetrics) IncrementRejections(class string) { c.rejections[class]++ }
func (c *countingMetrics) IncrementCheckErrors()            { c.checkErrors++ }

func serve(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", nil)
	ctx := requestcontext.WithClientMetadata(req.Context(), ip, "test-agent")
	ctx = requestcontext.WithTime(ctx, time.Now())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ok() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestPerIP(t *testing.T) {
	policy := models.Policy{Limit: 2, Window: time.Minute}

	t.Run("rejects once the window is full", func(t *testing.T) {
		m := &countingMetrics{rejections: map[string]int{}}
		h := New(bucket.NewInMemoryBucketStore(), discard(), WithMetrics(m)).PerIP("auth", policy)(ok())

		first := serve(h, "10.0.0.1")
		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

		assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1").Code)

		rejected := serve(h, "10.0.0.1")
		require.Equal(t, http.StatusTooManyRequests, rejected.Code)
		assert.NotEmpty(t, rejected.Header().Get("Retry-After"))
		assert.Contains(t, rejected.Body.String(), "rate_limited")
		assert.Equal(t, 1, m.rejections["auth"])

		assert.Equal(t, http.StatusOK, serve(h, "10.0.0.2").Code, "other clients keep their own window")
	})

	t.Run("store failure lets requests through", func(t *testing.T) {
		m := &countingMetrics{rejections: map[string]int{}}
		h := New(failingStore{}, discard(), WithMetrics(m)).PerIP("auth", policy)(ok())

		for range 5 {
			assert.Equal(t, http.StatusOK, serve(h, "10.0.0.1").Code)
		}
		assert.Equal(t, 5, m.checkErrors)
	})

	t.Run("disabled is a pass-through", func(t *testing.T) {
		h := New(bucket.NewInMemoryBucketStore(), discard(), WithDisabled(true)).PerIP("auth", policy)(ok())

		for range 5 {
			rec := serve(h, "10.0.0.1")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
		}
	})
}
