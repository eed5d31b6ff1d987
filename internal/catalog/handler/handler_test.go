package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"teranga/internal/catalog/handler/mocks"
	"teranga/internal/catalog/models"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	adminmw "teranga/pkg/platform/middleware/admin"
	"teranga/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type CatalogHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
}

func TestCatalogHandlerSuite(t *testing.T) {
	suite.Run(t, new(CatalogHandlerSuite))
}

func (s *CatalogHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = chi.NewRouter()
	New(s.service, logger, nil, "operator-secret").Register(s.router)
}

func (s *CatalogHandlerSuite) TestPaymentScheduleIsNumeric() {
	propertyID := "0b7e2f8a-6c1d-4e3f-9a2b-5c4d3e2f1a0b"
	s.service.EXPECT().GetProperty(gomock.Any(), gomock.Any()).Return(&models.Property{
		ID:    propertyID,
		Price: 20_000_000,
		PaymentSchedule: models.PaymentSchedule{
			InitialPayment: decimal.NewFromInt(4_000_000),
			MonthlyPayment: decimal.NewFromInt(16_000_000).Div(decimal.NewFromInt(36)),
			Duration:       36,
		},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/"+propertyID))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	schedule, ok := (*resp)["paymentSchedule"].(map[string]any)
	s.Require().True(ok)
	s.IsType(float64(0), (*resp)["price"])
	s.Equal(float64(4_000_000), schedule["initialPayment"])
	s.IsType(float64(0), schedule["monthlyPayment"])
}

func (s *CatalogHandlerSuite) TestListProperties() {
	s.Run("query parameters become a filter", func() {
		s.service.EXPECT().ListProperties(gomock.Any(), models.Filter{
			Type:        models.PropertyTypeHouse,
			CountryCode: "sn",
			MinPrice:    1000,
			MaxPrice:    5000,
			Search:      "dakar",
		}).Return([]models.Property{{ID: "p1", Title: "Villa"}}, nil)

		req := testutil.NewRequest(s.T(), http.MethodGet, "/properties?type=house&country=sn&minPrice=1000&maxPrice=5000&q=dakar")
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[struct {
			Properties []models.Property `json:"properties"`
		}](s.T(), rr)
		s.Require().Len(resp.Properties, 1)
		s.Equal("Villa", resp.Properties[0].Title)
	})

	s.Run("non-numeric price is a bad request", func() {
		req := testutil.NewRequest(s.T(), http.MethodGet, "/properties?minPrice=cheap")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})

	s.Run("validation errors map to 400", func() {
		s.service.EXPECT().ListProperties(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeValidation, "type must be land or house"))
		req := testutil.NewRequest(s.T(), http.MethodGet, "/properties?type=castle")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
	})
}

func (s *CatalogHandlerSuite) TestGetProperty() {
	propertyID := uuid.New()

	s.Run("not found", func() {
		s.service.EXPECT().GetProperty(gomock.Any(), id.PropertyID(propertyID)).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "property not found"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/"+propertyID.String()))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("malformed id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/nope"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
	})

	s.Run("store failure hides the cause", func() {
		s.service.EXPECT().GetProperty(gomock.Any(), id.PropertyID(propertyID)).
			Return(nil, dErrors.Wrap(io.ErrUnexpectedEOF, dErrors.CodeInternal, "failed to load property"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/properties/"+propertyID.String()))
		testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
		s.NotContains(rr.Body.String(), "unexpected EOF")
	})
}

func (s *CatalogHandlerSuite) TestDeveloperStats() {
	developerID := uuid.New()
	s.service.EXPECT().DeveloperStats(gomock.Any(), id.DeveloperID(developerID)).
		Return(models.DeveloperStats{Sold: 2, Available: 5}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/developers/"+developerID.String()+"/stats"))
	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[models.DeveloperStats](s.T(), rr)
	s.Equal(int64(2), resp.Sold)
	s.Equal(int64(5), resp.Available)
}

func (s *CatalogHandlerSuite) TestMissingDataRequiresAdminToken() {
	s.Run("rejected without token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/admin/catalog/missing-data"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})

	s.Run("served with token", func() {
		s.service.EXPECT().CheckMissingData(gomock.Any()).Return(&models.MissingDataReport{
			MissingDetails:         []models.PropertyRef{{ID: "p1", Title: "Terrain"}},
			MissingPaymentSchedule: []models.PropertyRef{},
		}, nil)
		req := testutil.NewRequest(s.T(), http.MethodGet, "/admin/catalog/missing-data")
		req.Header.Set(adminmw.HeaderAdminToken, "operator-secret")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		s.Contains(rr.Body.String(), "Terrain")
	})
}
