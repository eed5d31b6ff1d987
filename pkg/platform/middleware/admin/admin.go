package admin

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	request "teranga/pkg/platform/middleware/request"
)

// HeaderAdminToken carries the operator token for catalog checks and provider callbacks.
const HeaderAdminToken = "X-Admin-Token"

// RequireAdminToken guards operator routes. An empty expected token disables
// the routes entirely rather than accepting an empty header.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderAdminToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"admin token required"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
