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

	"teranga/internal/auth/handler/mocks"
	"teranga/internal/auth/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	"teranga/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type AuthHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	userID  id.UserID
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	passThrough := func(next http.Handler) http.Handler { return next }
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, passThrough, passThrough).Register(s.router)
	s.userID = id.UserID(uuid.New())
}

func (s *AuthHandlerSuite) TestSignUpCreated() {
	creds := models.Credentials{Email: "awa@example.com", Password: "motdepasse"}
	s.service.EXPECT().SignUp(gomock.Any(), creds).
		Return(&models.SignUpResult{UserID: s.userID, Email: creds.Email, VerificationRequired: true}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/signup", creds))
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "verification_required", true)
}

func (s *AuthHandlerSuite) TestSignUpRejectsUnknownFields() {
	req := testutil.NewRequestWithBody(s.T(), http.MethodPost, "/auth/signup", `{"email":"a@example.com","password":"x","role":"admin"}`)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *AuthHandlerSuite) TestSignInUnverified() {
	s.service.EXPECT().SignIn(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeForbidden, "email not verified"))

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/signin",
		models.Credentials{Email: "awa@example.com", Password: "motdepasse"}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
}

func (s *AuthHandlerSuite) TestVerifyReturnsToken() {
	s.service.EXPECT().Verify(gomock.Any(), models.VerifyRequest{Email: "awa@example.com", Code: "123456"}).
		Return(&models.TokenResult{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600, UserID: s.userID}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/verify",
		models.VerifyRequest{Email: "awa@example.com", Code: "123456"}))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "access_token", "tok")
}

func (s *AuthHandlerSuite) TestResendRateLimited() {
	s.service.EXPECT().ResendCode(gomock.Any(), "awa@example.com").
		Return(dErrors.New(dErrors.CodeRateLimited, "please wait before requesting a new code"))

	rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/auth/resend",
		models.ResendRequest{Email: "awa@example.com"}))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusTooManyRequests, "rate_limited")
}

func (s *AuthHandlerSuite) TestSignOutUsesTokenID() {
	s.service.EXPECT().SignOut(gomock.Any(), s.userID, "jti-1").Return(nil)

	req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodPost, "/auth/signout"), s.userID.String(), "jti-1")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *AuthHandlerSuite) TestMe() {
	s.service.EXPECT().Me(gomock.Any(), s.userID).
		Return(&models.UserInfo{ID: s.userID, Email: "awa.sow@example.com", FirstName: "Awa", LastName: "Sow", Verified: true}, nil)

	req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodGet, "/auth/me"), s.userID.String(), "jti-1")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "first_name", "Awa")
}

func (s *AuthHandlerSuite) TestMeWithoutAuth() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/auth/me"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}
