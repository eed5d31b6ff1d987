package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	catalogservice "teranga/internal/catalog/service"
	catalogstore "teranga/internal/catalog/store"
	"teranga/internal/funnel/metrics"
	"teranga/internal/funnel/models"
	"teranga/internal/funnel/store"
	purchase "teranga/internal/purchase/models"
	purchaseservice "teranga/internal/purchase/service"
	purchasestore "teranga/internal/purchase/store"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/platform/audit/publisher"
	auditmemory "teranga/pkg/platform/audit/store/memory"
)

var (
	villaID = id.PropertyID(uuid.MustParse("9b0e4a3c-1d2e-4f5a-8b6c-7d8e9f0a1b2c"))
	salyID  = id.PropertyID(uuid.MustParse("2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f"))
)

type FunnelServiceSuite struct {
	suite.Suite
	store     *store.InMemory
	purchases *purchaseservice.Service
	audit     *auditmemory.InMemoryStore
	service   *Service
	ctx       context.Context
	buyer     id.UserID
}

func TestFunnelServiceSuite(t *testing.T) {
	suite.Run(t, new(FunnelServiceSuite))
}

func (s *FunnelServiceSuite) SetupTest() {
	fixture, err := catalogstore.LoadFixtureFile("../../catalog/store/testdata/catalog.yaml")
	s.Require().NoError(err)
	catalogStore := catalogstore.NewInMemory()
	catalogStore.Load(fixture)

	s.store = store.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	auditor := publisher.NewPublisher(s.audit)
	s.purchases = purchaseservice.New(purchasestore.NewInMemory(), catalogservice.New(catalogStore), s.store,
		purchaseservice.WithAuditPublisher(auditor))
	s.service = New(s.store, s.purchases,
		WithMetrics(metrics.New(prometheus.NewRegistry())),
		WithAuditPublisher(auditor),
	)
	s.ctx = context.Background()
	s.buyer = id.UserID(uuid.New())
}

func (s *FunnelServiceSuite) count(action audit.AuditEvent) int {
	events, err := s.audit.ListAll(s.ctx)
	s.Require().NoError(err)
	n := 0
	for _, e := range events {
		if e.Action == string(action) {
			n++
		}
	}
	return n
}

func (s *FunnelServiceSuite) personal(phone string) {
	_, err := s.service.SubmitPersonal(s.ctx, s.buyer, models.PersonalInfo{
		LastName: "Diallo", FirstName: "Awa", Country: "SN", Phone: phone,
	})
	s.Require().NoError(err)
}

func (s *FunnelServiceSuite) professional() models.Resolution {
	res, err := s.service.SubmitProfessional(s.ctx, s.buyer, models.ProfessionalInfo{
		Activity: "Entrepreneur", RevenueRange: "Plus de 5 000 000 FCFA",
	})
	s.Require().NoError(err)
	return res
}

func (s *FunnelServiceSuite) TestLoadWithoutProfile() {
	res, err := s.service.Load(s.ctx, s.buyer, models.StepKYC)
	s.Require().NoError(err)
	s.Equal(models.StepPersonal, res.CurrentStep)
	s.Equal("/purchase/personal", res.RedirectTo)

	_, err = s.service.Load(s.ctx, s.buyer, "payment")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *FunnelServiceSuite) TestSubmitPersonal() {
	s.Run("rejects missing fields", func() {
		_, err := s.service.SubmitPersonal(s.ctx, s.buyer, models.PersonalInfo{FirstName: "Awa"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("creates the profile and moves to professional", func() {
		res, err := s.service.SubmitPersonal(s.ctx, s.buyer, models.PersonalInfo{
			LastName: " Diallo ", FirstName: "Awa", Country: "sn", Phone: " +221771234567 ",
		})
		s.Require().NoError(err)
		s.Equal(models.StepProfessional, res.CurrentStep)

		p, err := s.store.FindProfile(s.ctx, s.buyer)
		s.Require().NoError(err)
		s.Equal("Diallo", p.LastName)
		s.Equal("+221771234567", p.Phone)
		s.Equal(1, s.count(audit.EventProfileUpdated))
	})
}

func (s *FunnelServiceSuite) TestProfessionalRequiresPersonal() {
	_, err := s.service.SubmitProfessional(s.ctx, s.buyer, models.ProfessionalInfo{
		Activity: "Entrepreneur", RevenueRange: "Plus de 5 000 000 FCFA",
	})
	s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
}

func (s *FunnelServiceSuite) TestBranching() {
	s.Run("non-European phone skips residency", func() {
		s.personal("+221771234567")
		res := s.professional()
		s.Equal(models.StepKYC, res.CurrentStep)
	})

	s.Run("European phone asks for residency", func() {
		s.buyer = id.UserID(uuid.New())
		s.personal("+33612345678")
		res := s.professional()
		s.Equal(models.StepResidency, res.CurrentStep)

		res, err := s.service.SubmitResidency(s.ctx, s.buyer, true)
		s.Require().NoError(err)
		s.Equal(models.StepKYC, res.CurrentStep)

		p, err := s.store.FindProfile(s.ctx, s.buyer)
		s.Require().NoError(err)
		s.True(p.HasEUResidency.IsTrue())
	})
}

func (s *FunnelServiceSuite) TestEnterKYCBindsOnePurchase() {
	s.personal("+221771234567")
	s.professional()

	first, err := s.service.EnterKYC(s.ctx, s.buyer, &villaID)
	s.Require().NoError(err)
	s.Require().NotNil(first.PurchaseID)
	s.True(first.Editable)

	again, err := s.service.EnterKYC(s.ctx, s.buyer, &villaID)
	s.Require().NoError(err)
	s.Equal(*first.PurchaseID, *again.PurchaseID)

	list, err := s.purchases.List(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Len(list, 1)
	s.Equal(purchase.StatusPendingKYC, list[0].Status)
}

func (s *FunnelServiceSuite) TestEnterKYCBeforePrerequisites() {
	s.personal("+221771234567")
	state, err := s.service.EnterKYC(s.ctx, s.buyer, &villaID)
	s.Require().NoError(err)
	s.Equal(models.StepProfessional, state.CurrentStep)
	s.Nil(state.PurchaseID)
}

func (s *FunnelServiceSuite) TestEnterKYCForSoldProperty() {
	s.personal("+221771234567")
	s.professional()
	_, err := s.service.EnterKYC(s.ctx, s.buyer, &salyID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *FunnelServiceSuite) TestDocumentsSubmittedBeforeSteps() {
	s.personal("+221771234567")
	_, err := s.service.DocumentsSubmitted(s.ctx, s.buyer, nil)
	s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
}

func (s *FunnelServiceSuite) TestDocumentsSubmittedWithoutProperty() {
	s.personal("+221771234567")
	s.professional()

	out, err := s.service.DocumentsSubmitted(s.ctx, s.buyer, nil)
	s.Require().NoError(err)
	s.Equal(models.ProfilePath, out.RedirectTo)
	s.Nil(out.PurchaseID)

	p, err := s.store.FindProfile(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Equal(models.KYCVerified, p.KYCStatus())
	s.NotNil(p.KYCVerifiedAt)
}

func (s *FunnelServiceSuite) TestProviderMarksInProgress() {
	s.personal("+221771234567")
	s.professional()

	_, err := s.service.MarkKYCInProgress(s.ctx, s.buyer)
	s.Require().NoError(err)

	res, err := s.service.Load(s.ctx, s.buyer, models.StepPersonal)
	s.Require().NoError(err)
	s.True(res.Locked)
	s.Equal(models.ProfilePath, res.RedirectTo)
	s.Equal(models.KYCInProgress, res.KYCStatus)

	_, err = s.service.SubmitProfessional(s.ctx, s.buyer, models.ProfessionalInfo{
		Activity: "Retraité", RevenueRange: "Moins de 500 000 FCFA",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeProfileLocked))

	out, err := s.service.DocumentsSubmitted(s.ctx, s.buyer, nil)
	s.Require().NoError(err)
	s.Equal(models.ProfilePath, out.RedirectTo)

	_, err = s.service.MarkKYCInProgress(s.ctx, s.buyer)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

// Awa Diallo, Dakar phone, buys the villa: personal, professional, kyc,
// documents, payment page.
func (s *FunnelServiceSuite) TestDialloBuysTheVilla() {
	acq, err := s.purchases.StartAcquisition(s.ctx, s.buyer, villaID)
	s.Require().NoError(err)
	s.Equal("/purchase/personal?propertyId="+villaID.String(), acq.RedirectTo)

	s.personal("+221771234567")
	res := s.professional()
	s.Equal(models.StepKYC, res.CurrentStep)

	state, err := s.service.EnterKYC(s.ctx, s.buyer, &villaID)
	s.Require().NoError(err)
	s.Equal(acq.Purchase.ID, *state.PurchaseID)

	out, err := s.service.DocumentsSubmitted(s.ctx, s.buyer, &villaID)
	s.Require().NoError(err)
	s.Equal("/purchases/"+acq.Purchase.ID.String(), out.RedirectTo)

	view, err := s.purchases.Get(s.ctx, s.buyer, acq.Purchase.ID)
	s.Require().NoError(err)
	s.Equal(purchase.StatusPendingPayment, view.Status)

	s.Run("resubmitting changes nothing", func() {
		again, err := s.service.DocumentsSubmitted(s.ctx, s.buyer, &villaID)
		s.Require().NoError(err)
		s.Equal(out.RedirectTo, again.RedirectTo)
		s.Equal(1, s.count(audit.EventKYCSubmitted))
	})

	s.Run("answers are frozen", func() {
		_, err := s.service.SubmitPersonal(s.ctx, s.buyer, models.PersonalInfo{
			LastName: "Diallo", FirstName: "Aminata", Country: "SN", Phone: "+221771234567",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeProfileLocked))

		p, err := s.store.FindProfile(s.ctx, s.buyer)
		s.Require().NoError(err)
		s.Equal("Awa", p.FirstName)
	})

	s.Run("profile page shows the pending purchase", func() {
		pv, err := s.service.Profile(s.ctx, s.buyer)
		s.Require().NoError(err)
		s.Equal(models.KYCVerified, pv.KYCStatus)
		s.Equal("Sénégal", pv.CountryName)
		s.Equal(100, pv.Completion)
		s.Require().NotNil(pv.PendingPurchase)
		s.Equal(acq.Purchase.ID, pv.PendingPurchase.ID)
	})

	s.Run("a second acquisition goes straight to payment", func() {
		again, err := s.purchases.StartAcquisition(s.ctx, s.buyer, villaID)
		s.Require().NoError(err)
		s.Equal("/purchases/"+acq.Purchase.ID.String(), again.RedirectTo)
	})
}

// failOnceAdvance fails the first AdvanceAfterKYC, standing in for a store
// error between the profile write and the purchase write.
type failOnceAdvance struct {
	Purchases
	failed bool
}

func (f *failOnceAdvance) AdvanceAfterKYC(ctx context.Context, userID id.UserID, purchaseID id.PurchaseID) (*purchase.Purchase, error) {
	if !f.failed {
		f.failed = true
		return nil, dErrors.New(dErrors.CodeInternal, "purchase store unavailable")
	}
	return f.Purchases.AdvanceAfterKYC(ctx, userID, purchaseID)
}

func (s *FunnelServiceSuite) TestDocumentsSubmittedRetryAdvancesPurchase() {
	flaky := &failOnceAdvance{Purchases: s.purchases}
	svc := New(s.store, flaky)

	s.personal("+221771234567")
	s.professional()
	state, err := svc.EnterKYC(s.ctx, s.buyer, &villaID)
	s.Require().NoError(err)
	s.Require().NotNil(state.PurchaseID)

	_, err = svc.DocumentsSubmitted(s.ctx, s.buyer, &villaID)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	// No tx in memory mode: the verification stuck, the advance did not.
	p, err := s.store.FindProfile(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Equal(models.KYCVerified, p.KYCStatus())
	stuck, err := s.purchases.Get(s.ctx, s.buyer, *state.PurchaseID)
	s.Require().NoError(err)
	s.Equal(purchase.StatusPendingKYC, stuck.Status)

	out, err := svc.DocumentsSubmitted(s.ctx, s.buyer, &villaID)
	s.Require().NoError(err)
	s.Equal("/purchases/"+state.PurchaseID.String(), out.RedirectTo)

	advanced, err := s.purchases.Get(s.ctx, s.buyer, *state.PurchaseID)
	s.Require().NoError(err)
	s.Equal(purchase.StatusPendingPayment, advanced.Status)
}

func (s *FunnelServiceSuite) TestProfileWithoutAnswers() {
	pv, err := s.service.Profile(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Nil(pv.Profile)
	s.Equal(models.KYCNotStarted, pv.KYCStatus)
	s.Equal(0, pv.Completion)
	s.Nil(pv.PendingPurchase)
}
