package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"teranga/internal/funnel/handler/mocks"
	"teranga/internal/funnel/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	adminmw "teranga/pkg/platform/middleware/admin"
	"teranga/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type FunnelHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	userID  id.UserID
}

func TestFunnelHandlerSuite(t *testing.T) {
	suite.Run(t, new(FunnelHandlerSuite))
}

func (s *FunnelHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	passThrough := func(next http.Handler) http.Handler { return next }
	New(s.service, logger, nil, passThrough, "provider-secret").Register(s.router)
	s.userID = id.UserID(uuid.New())
}

func (s *FunnelHandlerSuite) authed(req *http.Request) *http.Request {
	return testutil.WithAuth(req, s.userID.String(), "jti-1")
}

func (s *FunnelHandlerSuite) TestLoad() {
	s.Run("resolves the requested step", func() {
		s.service.EXPECT().Load(gomock.Any(), s.userID, models.StepResidency).
			Return(models.Resolution{CurrentStep: models.StepKYC, Editable: true, RedirectTo: "/purchase/kyc"}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/funnel/steps/residency")
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "current_step", "kyc")
		testutil.AssertJSONContains(s.T(), rr, "redirect_to", "/purchase/kyc")
	})

	s.Run("unknown step", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/funnel/steps/payment")
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("no user is a 401", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/funnel/steps/personal")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})
}

func (s *FunnelHandlerSuite) TestPersonalLocked() {
	info := models.PersonalInfo{LastName: "Diallo", FirstName: "Awa", Country: "SN", Phone: "+221771234567"}
	s.service.EXPECT().SubmitPersonal(gomock.Any(), s.userID, info).
		Return(models.Resolution{}, dErrors.New(dErrors.CodeProfileLocked, "identity verification has started"))

	req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/funnel/personal", info)
	rr := testutil.DoRequest(s.router, s.authed(req))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "profile_locked")
}

func (s *FunnelHandlerSuite) TestResidency() {
	s.Run("requires an answer", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/funnel/residency", map[string]any{})
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})

	s.Run("false is a valid answer", func() {
		s.service.EXPECT().SubmitResidency(gomock.Any(), s.userID, false).
			Return(models.Resolution{CurrentStep: models.StepKYC}, nil)
		req := testutil.NewJSONRequest(s.T(), http.MethodPut, "/funnel/residency", map[string]any{"has_eu_residency": false})
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusOK(s.T(), rr)
	})
}

func (s *FunnelHandlerSuite) TestEnterKYC() {
	propertyID := id.PropertyID(uuid.New())
	purchaseID := id.PurchaseID(uuid.New())
	s.service.EXPECT().EnterKYC(gomock.Any(), s.userID, &propertyID).
		Return(&models.KYCState{Resolution: models.Resolution{CurrentStep: models.StepKYC, Editable: true}, PurchaseID: &purchaseID}, nil)

	req := testutil.NewRequest(s.T(), http.MethodPost, "/funnel/kyc?propertyId="+propertyID.String())
	rr := testutil.DoRequest(s.router, s.authed(req))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "purchase_id", purchaseID.String())
}

func (s *FunnelHandlerSuite) TestDocuments() {
	s.Run("without property", func() {
		s.service.EXPECT().DocumentsSubmitted(gomock.Any(), s.userID, (*id.PropertyID)(nil)).
			Return(&models.KYCOutcome{RedirectTo: models.ProfilePath}, nil)
		req := testutil.NewRequest(s.T(), http.MethodPost, "/funnel/kyc/documents")
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "redirect_to", "/profile")
	})

	s.Run("chunked body still binds the property", func() {
		propertyID := id.PropertyID(uuid.New())
		purchaseID := id.PurchaseID(uuid.New())
		s.service.EXPECT().DocumentsSubmitted(gomock.Any(), s.userID, &propertyID).
			Return(&models.KYCOutcome{RedirectTo: "/purchases/" + purchaseID.String(), PurchaseID: &purchaseID}, nil)

		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/funnel/kyc/documents", map[string]string{"property_id": propertyID.String()})
		req.ContentLength = -1
		req.TransferEncoding = []string{"chunked"}
		rr := testutil.DoRequest(s.router, s.authed(req))

		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "purchase_id", purchaseID.String())
	})

	s.Run("chunked body with wrong content type is refused", func() {
		req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/funnel/kyc/documents", `property_id=x`)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.ContentLength = -1
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatus(s.T(), rr, http.StatusUnsupportedMediaType)
	})

	s.Run("invalid property id", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/funnel/kyc/documents", map[string]string{"property_id": "x"})
		rr := testutil.DoRequest(s.router, s.authed(req))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})
}

func (s *FunnelHandlerSuite) TestProviderCallback() {
	s.Run("requires the admin token", func() {
		req := testutil.NewRequest(s.T(), http.MethodPost, "/admin/kyc/"+s.userID.String()+"/in-progress")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("marks verification in progress", func() {
		s.service.EXPECT().MarkKYCInProgress(gomock.Any(), s.userID).
			Return(&models.Profile{UserID: s.userID, KYCVerified: models.False}, nil)
		req := testutil.NewRequest(s.T(), http.MethodPost, "/admin/kyc/"+s.userID.String()+"/in-progress")
		req.Header.Set(adminmw.HeaderAdminToken, "provider-secret")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "kyc_status", "in_progress")
	})
}

func (s *FunnelHandlerSuite) TestProfile() {
	s.service.EXPECT().Profile(gomock.Any(), s.userID).
		Return(&models.ProfileView{KYCStatus: models.KYCNotStarted}, nil)
	req := testutil.NewRequest(s.T(), http.MethodGet, "/profile")
	rr := testutil.DoRequest(s.router, s.authed(req))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "kyc_status", "not_started")
}
