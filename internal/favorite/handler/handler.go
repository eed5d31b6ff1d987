package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	catalog "teranga/internal/catalog/models"
	"teranga/internal/platform/metrics"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/platform/httputil"
	request "teranga/pkg/platform/middleware/request"
	"teranga/pkg/requestcontext"
)

type Service interface {
	Toggle(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (bool, error)
	IsFavorite(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (bool, error)
	List(ctx context.Context, userID id.UserID) ([]catalog.Property, error)
}

type Handler struct {
	favorites   Service
	logger      *slog.Logger
	metrics     *metrics.Metrics
	requireAuth func(http.Handler) http.Handler
}

func New(favorites Service, logger *slog.Logger, metrics *metrics.Metrics, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{favorites: favorites, logger: logger, metrics: metrics, requireAuth: requireAuth}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(30 * time.Second))
		r.Use(request.ContentTypeJSON)
		r.Use(request.Latency(h.metrics))
		r.Use(h.requireAuth)
		r.Get("/favorites", h.handleList)
		r.Get("/favorites/{propertyID}", h.handleIsFavorite)
		r.Post("/favorites/{propertyID}/toggle", h.handleToggle)
	})
}

func (h *Handler) target(w http.ResponseWriter, r *http.Request) (id.UserID, id.PropertyID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return userID, id.PropertyID{}, false
	}
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "propertyID"))
	if err != nil {
		httputil.WriteError(w, err)
		return userID, propertyID, false
	}
	return userID, propertyID, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	props, err := h.favorites.List(r.Context(), userID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to list favorites", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"properties": props})
}

func (h *Handler) handleIsFavorite(w http.ResponseWriter, r *http.Request) {
	userID, propertyID, ok := h.target(w, r)
	if !ok {
		return
	}
	fav, err := h.favorites.IsFavorite(r.Context(), userID, propertyID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to read favorite", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"favorite": fav})
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	userID, propertyID, ok := h.target(w, r)
	if !ok {
		return
	}
	fav, err := h.favorites.Toggle(r.Context(), userID, propertyID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to toggle favorite", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"favorite": fav})
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
