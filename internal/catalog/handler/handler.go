package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"teranga/internal/catalog/models"
	"teranga/internal/platform/metrics"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/platform/httputil"
	adminmw "teranga/pkg/platform/middleware/admin"
	request "teranga/pkg/platform/middleware/request"
)

// Service defines the catalog operations the handler exposes.
type Service interface {
	ListProperties(ctx context.Context, filter models.Filter) ([]models.Property, error)
	GetProperty(ctx context.Context, propertyID id.PropertyID) (*models.Property, error)
	ListDevelopers(ctx context.Context) ([]models.DeveloperSummary, error)
	GetDeveloperProfile(ctx context.Context, developerID id.DeveloperID) (*models.DeveloperProfile, error)
	DeveloperStats(ctx context.Context, developerID id.DeveloperID) (models.DeveloperStats, error)
	CheckMissingData(ctx context.Context) (*models.MissingDataReport, error)
}

// Handler serves the public catalog and its operator checks.
type Handler struct {
	catalog    Service
	logger     *slog.Logger
	metrics    *metrics.Metrics
	adminToken string
}

func New(catalog Service, logger *slog.Logger, metrics *metrics.Metrics, adminToken string) *Handler {
	return &Handler{catalog: catalog, logger: logger, metrics: metrics, adminToken: adminToken}
}

// Register mounts the catalog routes. Listing and detail routes are public.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(30 * time.Second))
		r.Use(request.ContentTypeJSON)
		r.Use(request.Latency(h.metrics))
		r.Get("/properties", h.handleListProperties)
		r.Get("/properties/{id}", h.handleGetProperty)
		r.Get("/developers", h.handleListDevelopers)
		r.Get("/developers/{id}", h.handleGetDeveloper)
		r.Get("/developers/{id}/stats", h.handleDeveloperStats)
	})
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(30 * time.Second))
		r.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
		r.Get("/admin/catalog/missing-data", h.handleMissingData)
	})
}

func (h *Handler) handleListProperties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := filterFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	properties, err := h.catalog.ListProperties(ctx, filter)
	if err != nil {
		h.writeError(ctx, w, "failed to list properties", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"properties": properties})
}

func (h *Handler) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	propertyID, err := id.ParsePropertyID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	property, err := h.catalog.GetProperty(ctx, propertyID)
	if err != nil {
		h.writeError(ctx, w, "failed to get property", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, property)
}

func (h *Handler) handleListDevelopers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	developers, err := h.catalog.ListDevelopers(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to list developers", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"developers": developers})
}

func (h *Handler) handleGetDeveloper(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	developerID, err := id.ParseDeveloperID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	profile, err := h.catalog.GetDeveloperProfile(ctx, developerID)
	if err != nil {
		h.writeError(ctx, w, "failed to get developer profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) handleDeveloperStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	developerID, err := id.ParseDeveloperID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	stats, err := h.catalog.DeveloperStats(ctx, developerID)
	if err != nil {
		h.writeError(ctx, w, "failed to get developer stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleMissingData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.catalog.CheckMissingData(ctx)
	if err != nil {
		h.writeError(ctx, w, "failed to check catalog data", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// writeError logs at warn for client errors and error for the rest.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	requestID := request.GetRequestID(ctx)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, "request_id", requestID, "error", err)
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestID, "error", err)
	}
	httputil.WriteError(w, err)
}

func filterFromQuery(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	filter := models.Filter{
		Type:        models.PropertyType(q.Get("type")),
		CountryCode: q.Get("country"),
		Search:      q.Get("q"),
	}
	var err error
	if filter.MinPrice, err = parsePrice(q.Get("minPrice")); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = parsePrice(q.Get("maxPrice")); err != nil {
		return filter, err
	}
	return filter, nil
}

func parsePrice(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, dErrors.New(dErrors.CodeBadRequest, "price bounds must be whole numbers")
	}
	return v, nil
}
