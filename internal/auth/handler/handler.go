package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"teranga/internal/auth/models"
	"teranga/internal/platform/metrics"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/platform/httputil"
	request "teranga/pkg/platform/middleware/request"
	"teranga/pkg/requestcontext"
)

type Service interface {
	SignUp(ctx context.Context, req models.Credentials) (*models.SignUpResult, error)
	SignIn(ctx context.Context, req models.Credentials) (*models.TokenResult, error)
	SignOut(ctx context.Context, userID id.UserID, jti string) error
	ResendCode(ctx context.Context, email string) error
	Verify(ctx context.Context, req models.VerifyRequest) (*models.TokenResult, error)
	Me(ctx context.Context, userID id.UserID) (*models.UserInfo, error)
}

// Handler exposes sign-up, email verification and token endpoints.
type Handler struct {
	auth        Service
	logger      *slog.Logger
	metrics     *metrics.Metrics
	requireAuth func(http.Handler) http.Handler
	throttle    func(http.Handler) http.Handler
}

// New builds the handler. throttle guards the unauthenticated routes.
func New(auth Service, logger *slog.Logger, metrics *metrics.Metrics, requireAuth, throttle func(http.Handler) http.Handler) *Handler {
	return &Handler{auth: auth, logger: logger, metrics: metrics, requireAuth: requireAuth, throttle: throttle}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(30 * time.Second))
		r.Use(request.ContentTypeJSON)
		r.Use(request.Latency(h.metrics))

		r.Group(func(r chi.Router) {
			r.Use(h.throttle)
			r.Post("/auth/signup", h.handleSignUp)
			r.Post("/auth/signin", h.handleSignIn)
			r.Post("/auth/verify", h.handleVerify)
			r.Post("/auth/resend", h.handleResend)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth)
			r.Post("/auth/signout", h.handleSignOut)
			r.Get("/auth/me", h.handleMe)
		})
	})
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.auth.SignUp(r.Context(), req)
	if err != nil {
		h.writeError(r.Context(), w, "sign-up failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.auth.SignIn(r.Context(), req)
	if err != nil {
		h.writeError(r.Context(), w, "sign-in failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.auth.Verify(r.Context(), req)
	if err != nil {
		h.writeError(r.Context(), w, "email verification failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	var req models.ResendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.auth.ResendCode(r.Context(), req.Email); err != nil {
		h.writeError(r.Context(), w, "failed to resend verification code", err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err := h.auth.SignOut(ctx, userID, requestcontext.TokenID(ctx)); err != nil {
		h.writeError(ctx, w, "sign-out failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	me, err := h.auth.Me(r.Context(), userID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to load account", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, me)
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := request.GetRequestID(ctx)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
	}
	httputil.WriteError(w, err)
}
