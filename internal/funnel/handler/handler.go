package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"teranga/internal/funnel/models"
	"teranga/internal/platform/metrics"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/platform/httputil"
	adminmw "teranga/pkg/platform/middleware/admin"
	request "teranga/pkg/platform/middleware/request"
	"teranga/pkg/requestcontext"
)

// Service defines the funnel operations the handler exposes.
type Service interface {
	Load(ctx context.Context, userID id.UserID, step models.Step) (models.Resolution, error)
	SubmitPersonal(ctx context.Context, userID id.UserID, info models.PersonalInfo) (models.Resolution, error)
	SubmitProfessional(ctx context.Context, userID id.UserID, info models.ProfessionalInfo) (models.Resolution, error)
	SubmitResidency(ctx context.Context, userID id.UserID, hasEUResidency bool) (models.Resolution, error)
	EnterKYC(ctx context.Context, userID id.UserID, propertyID *id.PropertyID) (*models.KYCState, error)
	DocumentsSubmitted(ctx context.Context, userID id.UserID, propertyID *id.PropertyID) (*models.KYCOutcome, error)
	MarkKYCInProgress(ctx context.Context, userID id.UserID) (*models.Profile, error)
	Profile(ctx context.Context, userID id.UserID) (*models.ProfileView, error)
}

type Handler struct {
	funnel      Service
	logger      *slog.Logger
	metrics     *metrics.Metrics
	requireAuth func(http.Handler) http.Handler
	adminToken  string
}

func New(funnel Service, logger *slog.Logger, metrics *metrics.Metrics, requireAuth func(http.Handler) http.Handler, adminToken string) *Handler {
	return &Handler{funnel: funnel, logger: logger, metrics: metrics, requireAuth: requireAuth, adminToken: adminToken}
}

// Register mounts the buyer funnel and the verification provider callback.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(30 * time.Second))
		r.Use(request.ContentTypeJSON)
		r.Use(request.Latency(h.metrics))
		r.Use(h.requireAuth)
		r.Get("/funnel/steps/{step}", h.handleLoad)
		r.Put("/funnel/personal", h.handlePersonal)
		r.Put("/funnel/professional", h.handleProfessional)
		r.Put("/funnel/residency", h.handleResidency)
		r.Post("/funnel/kyc", h.handleEnterKYC)
		r.Post("/funnel/kyc/documents", h.handleDocuments)
		r.Get("/profile", h.handleProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(30 * time.Second))
		r.Use(adminmw.RequireAdminToken(h.adminToken, h.logger))
		r.Post("/admin/kyc/{userID}/in-progress", h.handleKYCInProgress)
	})
}

type residencyRequest struct {
	HasEUResidency *bool `json:"has_eu_residency"`
}

type documentsRequest struct {
	PropertyID string `json:"property_id"`
}

func (h *Handler) user(w http.ResponseWriter, r *http.Request) (id.UserID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return userID, false
	}
	return userID, true
}

// optionalProperty parses an optional property id; empty means none.
func optionalProperty(raw string) (*id.PropertyID, error) {
	if raw == "" {
		return nil, nil
	}
	propertyID, err := id.ParsePropertyID(raw)
	if err != nil {
		return nil, err
	}
	return &propertyID, nil
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	step, err := models.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.funnel.Load(r.Context(), userID, step)
	if err != nil {
		h.writeError(r.Context(), w, "failed to load funnel step", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handlePersonal(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req models.PersonalInfo
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.funnel.SubmitPersonal(r.Context(), userID, req)
	if err != nil {
		h.writeError(r.Context(), w, "failed to save personal step", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleProfessional(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req models.ProfessionalInfo
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.funnel.SubmitProfessional(r.Context(), userID, req)
	if err != nil {
		h.writeError(r.Context(), w, "failed to save professional step", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleResidency(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req residencyRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.HasEUResidency == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "has_eu_residency is required"))
		return
	}
	res, err := h.funnel.SubmitResidency(r.Context(), userID, *req.HasEUResidency)
	if err != nil {
		h.writeError(r.Context(), w, "failed to save residency step", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleEnterKYC(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	propertyID, err := optionalProperty(r.URL.Query().Get("propertyId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	state, err := h.funnel.EnterKYC(r.Context(), userID, propertyID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to open verification step", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, state)
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	var req documentsRequest
	if err := httputil.DecodeOptionalJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	propertyID, err := optionalProperty(req.PropertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out, err := h.funnel.DocumentsSubmitted(r.Context(), userID, propertyID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to record submitted documents", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.user(w, r)
	if !ok {
		return
	}
	view, err := h.funnel.Profile(r.Context(), userID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to load profile", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleKYCInProgress(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	profile, err := h.funnel.MarkKYCInProgress(r.Context(), userID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to mark verification in progress", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"kyc_status": profile.KYCStatus()})
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
