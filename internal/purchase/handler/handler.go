package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"teranga/internal/currency"
	"teranga/internal/platform/metrics"
	"teranga/internal/purchase/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/platform/httputil"
	request "teranga/pkg/platform/middleware/request"
	"teranga/pkg/requestcontext"
)

// Service defines the purchase operations the handler exposes.
type Service interface {
	StartAcquisition(ctx context.Context, userID id.UserID, propertyID id.PropertyID) (*models.AcquisitionResult, error)
	AdvanceAfterKYC(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*models.Purchase, error)
	CompleteDirectPayment(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID, method models.PaymentMethod) (*models.PaymentConfirmation, error)
	SubmitLoanApplication(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID, docs []models.LoanDocument) (*models.Purchase, error)
	Delete(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) error
	AppendMessage(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID, content string) (*models.Message, error)
	ListMessages(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) ([]models.Message, error)
	List(ctx context.Context, userID id.UserID) ([]models.View, error)
	Get(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*models.View, error)
	Receipt(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*models.Receipt, error)
}

// Handler serves the buyer's purchases. Every route requires authentication.
type Handler struct {
	purchases   Service
	logger      *slog.Logger
	metrics     *metrics.Metrics
	requireAuth func(http.Handler) http.Handler
}

func New(purchases Service, logger *slog.Logger, metrics *metrics.Metrics, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{purchases: purchases, logger: logger, metrics: metrics, requireAuth: requireAuth}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(30 * time.Second))
		r.Use(request.ContentTypeJSON)
		r.Use(request.Latency(h.metrics))
		r.Use(h.requireAuth)
		r.Get("/purchases", h.handleList)
		r.Post("/purchases", h.handleStart)
		r.Get("/purchases/{id}", h.handleGet)
		r.Delete("/purchases/{id}", h.handleDelete)
		r.Post("/purchases/{id}/advance", h.handleAdvance)
		r.Post("/purchases/{id}/payment", h.handlePayment)
		r.Post("/purchases/{id}/loan-application", h.handleLoanApplication)
		r.Get("/purchases/{id}/messages", h.handleListMessages)
		r.Post("/purchases/{id}/messages", h.handlePostMessage)
		r.Get("/purchases/{id}/receipt", h.handleReceipt)
	})
}

type startRequest struct {
	PropertyID string `json:"property_id"`
}

type paymentRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type loanRequest struct {
	Documents []models.LoanDocument `json:"documents"`
}

type messageRequest struct {
	Content string `json:"content"`
}

// caller returns the authenticated user and the purchase id from the path.
func (h *Handler) caller(w http.ResponseWriter, r *http.Request, withPurchase bool) (id.UserID, id.PurchaseID, bool) {
	userID := requestcontext.UserID(r.Context())
	if userID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return userID, id.PurchaseID{}, false
	}
	if !withPurchase {
		return userID, id.PurchaseID{}, true
	}
	purchaseID, err := id.ParsePurchaseID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return userID, purchaseID, false
	}
	return userID, purchaseID, true
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.caller(w, r, false)
	if !ok {
		return
	}
	views, err := h.purchases.List(r.Context(), userID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to list purchases", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"purchases": views})
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := h.caller(w, r, false)
	if !ok {
		return
	}
	var req startRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	propertyID, err := id.ParsePropertyID(req.PropertyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.purchases.StartAcquisition(r.Context(), userID, propertyID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to start purchase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	userID, purchaseID, ok := h.caller(w, r, true)
	if !ok {
		return
	}
	view, err := h.purchases.Get(r.Context(), userID, purchaseID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to get purchase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID, purchaseID, ok := h.caller(w, r, true)
	if !ok {
		return
	}
	if err := h.purchases.Delete(r.Context(), userID, purchaseID); err != nil {
		h.writeError(r.Context(), w, "failed to delete purchase", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	userID, purchaseID, ok := h.caller(w, r, true)
	if !ok {
		return
	}
	p, err := h.purchases.AdvanceAfterKYC(r.Context(), userID, purchaseID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to advance purchase", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	userID, purchaseID, ok := h.caller(w, r, true)
	if !ok {
		return
	}
	var req paymentRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	conf, err := h.purchases.CompleteDirectPayment(r.Context(), userID, purchaseID, method)
	if err != nil {
		h.writeError(r.Context(), w, "failed to complete payment", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, conf)
}

func (h *Handler) handleLoanApplication(w http.ResponseWriter, r *http.Request) {
	userID, purchaseID, ok := h.caller(w, r, true)
	if !ok {
		return
	}
	var req loanRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.purchases.SubmitLoanApplication(r.Context(), userID, purchaseID, req.Documents)
	if err != nil {
		h.writeError(r.Context(), w, "failed to submit loan application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, purchaseID, ok := h.caller(w, r, true)
	if !ok {
		return
	}
	msgs, err := h.purchases.ListMessages(r.Context(), userID, purchaseID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to list messages", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func (h *Handler) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	userID, purchaseID, ok := h.caller(w, r, true)
	if !ok {
		return
	}
	var req messageRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	msg, err := h.purchases.AppendMessage(r.Context(), userID, purchaseID, req.Content)
	if err != nil {
		h.writeError(r.Context(), w, "failed to post message", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, msg)
}

// handleReceipt downloads the plain-text receipt. ?currency=EUR converts the
// amount; the default is XOF.
func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	userID, purchaseID, ok := h.caller(w, r, true)
	if !ok {
		return
	}
	code, err := currency.ParseCode(r.URL.Query().Get("currency"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	receipt, err := h.purchases.Receipt(r.Context(), userID, purchaseID)
	if err != nil {
		h.writeError(r.Context(), w, "failed to build receipt", err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+receipt.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(receipt.Render(code)))
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
