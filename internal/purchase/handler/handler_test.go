package handler

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"teranga/internal/purchase/handler/mocks"
	"teranga/internal/purchase/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type PurchaseHandlerSuite struct {
	suite.Suite
	service    *mocks.MockService
	router     chi.Router
	userID     id.UserID
	purchaseID id.PurchaseID
}

func TestPurchaseHandlerSuite(t *testing.T) {
	suite.Run(t, new(PurchaseHandlerSuite))
}

func passThrough(next http.Handler) http.Handler { return next }

func (s *PurchaseHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger, nil, passThrough).Register(s.router)
	s.userID = id.UserID(uuid.New())
	s.purchaseID = id.PurchaseID(uuid.New())
}

func (s *PurchaseHandlerSuite) authed(req *http.Request) *http.Request {
	return testutil.WithAuth(req, s.userID.String(), "jti-1")
}

func (s *PurchaseHandlerSuite) path(suffix string) string {
	return "/purchases/" + s.purchaseID.String() + suffix
}

func (s *PurchaseHandlerSuite) TestUnauthenticated() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/purchases")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *PurchaseHandlerSuite) TestStart() {
	s.Run("returns the redirect", func() {
		propertyID := uuid.New()
		s.service.EXPECT().StartAcquisition(gomock.Any(), s.userID, id.PropertyID(propertyID)).
			Return(&models.AcquisitionResult{
				Purchase:   &models.Purchase{ID: s.purchaseID, Status: models.StatusPendingKYC},
				RedirectTo: "/purchase/personal?propertyId=" + propertyID.String(),
			}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/purchases", map[string]string{"property_id": propertyID.String()})
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatus(s.T(), rr, http.StatusCreated)
		testutil.AssertJSONContains(s.T(), rr, "redirect_to", "/purchase/personal?propertyId="+propertyID.String())
	})

	s.Run("invalid property id", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/purchases", map[string]string{"property_id": "nope"})
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("sold property is a conflict", func() {
		s.service.EXPECT().StartAcquisition(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "property is not available"))
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/purchases", map[string]string{"property_id": uuid.NewString()})
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "invalid_state")
	})
}

func (s *PurchaseHandlerSuite) TestPayment() {
	s.Run("completes with the chosen method", func() {
		s.service.EXPECT().CompleteDirectPayment(gomock.Any(), s.userID, s.purchaseID, models.PaymentInstantTransfer).
			Return(&models.PaymentConfirmation{
				PurchaseID: s.purchaseID,
				Reference:  "TRXABC123XYZ",
				Method:     models.PaymentInstantTransfer,
				Amount:     decimal.NewFromInt(18_000_000),
			}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, s.path("/payment"), map[string]string{"payment_method": "instant_transfer"})
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "reference", "TRXABC123XYZ")
	})

	s.Run("unknown method never reaches the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, s.path("/payment"), map[string]string{"payment_method": "cash"})
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *PurchaseHandlerSuite) TestDelete() {
	s.service.EXPECT().Delete(gomock.Any(), s.userID, s.purchaseID).Return(nil)
	req := testutil.NewRequest(s.T(), http.MethodDelete, s.path(""))
	rr := testutil.DoRequest(s.router, s.authed(req))
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *PurchaseHandlerSuite) TestGetNotFound() {
	s.service.EXPECT().Get(gomock.Any(), s.userID, s.purchaseID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "purchase not found"))
	req := testutil.NewRequest(s.T(), http.MethodGet, s.path(""))
	rr := testutil.DoRequest(s.router, s.authed(req))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *PurchaseHandlerSuite) TestMessages() {
	s.service.EXPECT().AppendMessage(gomock.Any(), s.userID, s.purchaseID, "Bonjour").
		Return(&models.Message{ID: id.MessageID(uuid.New()), Content: "Bonjour"}, nil)
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, s.path("/messages"), map[string]string{"content": "Bonjour"})
	rr := testutil.DoRequest(s.router, s.authed(req))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)

	s.service.EXPECT().ListMessages(gomock.Any(), s.userID, s.purchaseID).
		Return([]models.Message{{Content: "Bonjour"}}, nil)
	req = testutil.NewRequest(s.T(), http.MethodGet, s.path("/messages"))
	rr = testutil.DoRequest(s.router, s.authed(req))
	testutil.AssertStatusOK(s.T(), rr)
	s.Contains(rr.Body.String(), "Bonjour")
}

func (s *PurchaseHandlerSuite) TestReceipt() {
	receipt := &models.Receipt{
		Reference:     "TRXABC123XYZ",
		PaidAt:        time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		PropertyTitle: "Villa Almadies",
		Amount:        decimal.NewFromInt(655_957),
		Method:        models.PaymentCard,
	}

	s.Run("defaults to XOF", func() {
		s.service.EXPECT().Receipt(gomock.Any(), s.userID, s.purchaseID).Return(receipt, nil)
		req := testutil.NewRequest(s.T(), http.MethodGet, s.path("/receipt"))
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatusOK(s.T(), rr)
		s.Equal("text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
		s.Contains(rr.Header().Get("Content-Disposition"), "recu-paiement-TRXABC123XYZ.txt")
		s.Contains(rr.Body.String(), "CFA")
	})

	s.Run("converts to EUR", func() {
		s.service.EXPECT().Receipt(gomock.Any(), s.userID, s.purchaseID).Return(receipt, nil)
		req := testutil.NewRequest(s.T(), http.MethodGet, s.path("/receipt?currency=eur"))
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatusOK(s.T(), rr)
		body := strings.NewReplacer("\u202f", " ", "\u00a0", " ").Replace(rr.Body.String())
		s.Contains(body, "1 000 €")
	})

	s.Run("unknown currency", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, s.path("/receipt?currency=usd"))
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}
