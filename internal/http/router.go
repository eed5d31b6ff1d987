// Package httpapi assembles the root router: shared middleware, health and
// metrics endpoints, and each module's routes.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"teranga/internal/platform/metrics"
	"teranga/pkg/platform/httputil"
	"teranga/pkg/platform/middleware/metadata"
	request "teranga/pkg/platform/middleware/request"
	"teranga/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

// NewRouter applies the middleware every route shares, then lets each module
// register its own groups.
func NewRouter(logger *slog.Logger, checks map[string]HealthCheck, modules ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/health", handleHealth(checks))
	r.Handle("/metrics", metrics.Handler())

	for _, m := range modules {
		m.Register(r)
	}
	return r
}

type healthResponse struct {
	Status   string            `json:"status"`
	Failures map[string]string `json:"failures,omitempty"`
}

func handleHealth(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				if resp.Failures == nil {
					resp.Failures = make(map[string]string)
				}
				resp.Failures[name] = err.Error()
			}
		}
		if len(resp.Failures) > 0 {
			resp.Status = "degraded"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, resp)
	}
}
