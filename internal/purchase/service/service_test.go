package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	catalogservice "teranga/internal/catalog/service"
	catalogstore "teranga/internal/catalog/store"
	funnel "teranga/internal/funnel/models"
	"teranga/internal/purchase/metrics"
	"teranga/internal/purchase/models"
	"teranga/internal/purchase/store"
	id "teranga/pkg/domain"
	dErrors "teranga/pkg/domain-errors"
	audit "teranga/pkg/platform/audit"
	"teranga/pkg/platform/audit/publisher"
	auditmemory "teranga/pkg/platform/audit/store/memory"
	"teranga/pkg/platform/sentinel"
	"teranga/pkg/requestcontext"
)

var (
	villaID = id.PropertyID(uuid.MustParse("9b0e4a3c-1d2e-4f5a-8b6c-7d8e9f0a1b2c"))
	salyID  = id.PropertyID(uuid.MustParse("2c3d4e5f-6a7b-4c8d-9e0f-1a2b3c4d5e6f"))
)

type stubProfiles struct {
	mu       sync.Mutex
	profiles map[id.UserID]*funnel.Profile
}

func (s *stubProfiles) FindProfile(_ context.Context, userID id.UserID) (*funnel.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p, nil
}

func (s *stubProfiles) verify(userID id.UserID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[userID] = &funnel.Profile{UserID: userID, KYCVerified: funnel.True}
}

type PurchaseServiceSuite struct {
	suite.Suite
	store    *store.InMemory
	profiles *stubProfiles
	audit    *auditmemory.InMemoryStore
	service  *Service
	ctx      context.Context
	buyer    id.UserID
}

func TestPurchaseServiceSuite(t *testing.T) {
	suite.Run(t, new(PurchaseServiceSuite))
}

func (s *PurchaseServiceSuite) SetupTest() {
	fixture, err := catalogstore.LoadFixtureFile("../../catalog/store/testdata/catalog.yaml")
	s.Require().NoError(err)
	catalogStore := catalogstore.NewInMemory()
	catalogStore.Load(fixture)

	s.store = store.NewInMemory()
	s.profiles = &stubProfiles{profiles: map[id.UserID]*funnel.Profile{}}
	s.audit = auditmemory.NewInMemoryStore()
	s.service = New(s.store, catalogservice.New(catalogStore), s.profiles,
		WithMetrics(metrics.New(prometheus.NewRegistry())),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
	)
	s.buyer = id.UserID(uuid.New())
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC))
}

func (s *PurchaseServiceSuite) actions() []string {
	events, err := s.audit.ListAll(s.ctx)
	s.Require().NoError(err)
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

// pendingPayment drives a fresh purchase of the villa to pending_payment.
func (s *PurchaseServiceSuite) pendingPayment() *models.Purchase {
	p, err := s.service.Initiate(s.ctx, s.buyer, villaID)
	s.Require().NoError(err)
	s.profiles.verify(s.buyer)
	p, err = s.service.AdvanceAfterKYC(s.ctx, s.buyer, p.ID)
	s.Require().NoError(err)
	s.Require().Equal(models.StatusPendingPayment, p.Status)
	return p
}

func (s *PurchaseServiceSuite) TestInitiate() {
	s.Run("creates a pending_kyc purchase", func() {
		p, err := s.service.Initiate(s.ctx, s.buyer, villaID)
		s.Require().NoError(err)
		s.Equal(models.StatusPendingKYC, p.Status)
		s.Equal(s.buyer, p.UserID)
		s.Contains(s.actions(), string(audit.EventPurchaseInitiated))
	})

	s.Run("returns the active purchase on repeat", func() {
		first, err := s.service.Initiate(s.ctx, s.buyer, villaID)
		s.Require().NoError(err)
		again, err := s.service.Initiate(s.ctx, s.buyer, villaID)
		s.Require().NoError(err)
		s.Equal(first.ID, again.ID)

		all, err := s.service.List(s.ctx, s.buyer)
		s.Require().NoError(err)
		s.Len(all, 1)
	})

	s.Run("refuses a sold property", func() {
		_, err := s.service.Initiate(s.ctx, s.buyer, salyID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown property is not found", func() {
		_, err := s.service.Initiate(s.ctx, s.buyer, id.PropertyID(uuid.New()))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *PurchaseServiceSuite) TestStartAcquisition() {
	s.Run("unverified buyer goes to the funnel", func() {
		res, err := s.service.StartAcquisition(s.ctx, s.buyer, villaID)
		s.Require().NoError(err)
		s.Equal("/purchase/personal?propertyId="+villaID.String(), res.RedirectTo)
		s.Equal(models.StatusPendingKYC, res.Purchase.Status)
	})

	s.Run("verified buyer goes to the payment page", func() {
		buyer := id.UserID(uuid.New())
		s.profiles.verify(buyer)
		res, err := s.service.StartAcquisition(s.ctx, buyer, villaID)
		s.Require().NoError(err)
		s.Equal(models.StatusPendingPayment, res.Purchase.Status)
		s.Equal("/purchases/"+res.Purchase.ID.String(), res.RedirectTo)
	})
}

func (s *PurchaseServiceSuite) TestAdvanceAfterKYC() {
	p, err := s.service.Initiate(s.ctx, s.buyer, villaID)
	s.Require().NoError(err)

	s.Run("requires a verified profile", func() {
		_, err := s.service.AdvanceAfterKYC(s.ctx, s.buyer, p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("other users cannot see the purchase", func() {
		_, err := s.service.AdvanceAfterKYC(s.ctx, id.UserID(uuid.New()), p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("advances once and is then a no-op", func() {
		s.profiles.verify(s.buyer)
		advanced, err := s.service.AdvanceAfterKYC(s.ctx, s.buyer, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPendingPayment, advanced.Status)

		again, err := s.service.AdvanceAfterKYC(s.ctx, s.buyer, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPendingPayment, again.Status)
		s.Contains(s.actions(), string(audit.EventPurchaseStatusChanged))
	})
}

func (s *PurchaseServiceSuite) TestCompleteDirectPayment() {
	p := s.pendingPayment()

	conf, err := s.service.CompleteDirectPayment(s.ctx, s.buyer, p.ID, models.PaymentCard)
	s.Require().NoError(err)
	s.Regexp(`^TRX[A-Z0-9]{9}$`, conf.Reference)
	s.True(decimal.NewFromInt(18_000_000).Equal(conf.Amount))
	s.Equal(models.PaymentCard, conf.Method)
	s.False(conf.AlreadyCompleted)

	stored, err := s.service.Get(s.ctx, s.buyer, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, stored.Status)
	s.Equal("Achat finalisé", stored.StatusLabel)

	s.Run("paying again returns the stored confirmation", func() {
		again, err := s.service.CompleteDirectPayment(s.ctx, s.buyer, p.ID, models.PaymentBankTransfer)
		s.Require().NoError(err)
		s.True(again.AlreadyCompleted)
		s.Equal(conf.Reference, again.Reference)
		s.Equal(models.PaymentCard, again.Method)
	})

	s.Run("rejects an unknown method", func() {
		_, err := s.service.CompleteDirectPayment(s.ctx, s.buyer, p.ID, "cash")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("completed purchases cannot be deleted", func() {
		err := s.service.Delete(s.ctx, s.buyer, p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

		stored, err := s.service.Get(s.ctx, s.buyer, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, stored.Status)
	})
}

func (s *PurchaseServiceSuite) TestCompleteDirectPaymentBeforeKYC() {
	p, err := s.service.Initiate(s.ctx, s.buyer, villaID)
	s.Require().NoError(err)
	_, err = s.service.CompleteDirectPayment(s.ctx, s.buyer, p.ID, models.PaymentCard)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func (s *PurchaseServiceSuite) TestConcurrentPaymentsCompleteOnce() {
	p := s.pendingPayment()

	var wg sync.WaitGroup
	refs := make([]string, 8)
	for i := range refs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conf, err := s.service.CompleteDirectPayment(s.ctx, s.buyer, p.ID, models.PaymentInstantTransfer)
			if err == nil {
				refs[i] = conf.Reference
			}
		}()
	}
	wg.Wait()

	for _, ref := range refs {
		s.Equal(refs[0], ref)
	}
	paid := 0
	for _, action := range s.actions() {
		if action == string(audit.EventPurchasePaid) {
			paid++
		}
	}
	s.Equal(1, paid)
}

func (s *PurchaseServiceSuite) TestSubmitLoanApplication() {
	p := s.pendingPayment()

	_, err := s.service.SubmitLoanApplication(s.ctx, s.buyer, p.ID, nil)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = s.service.SubmitLoanApplication(s.ctx, s.buyer, p.ID, []models.LoanDocument{{Name: "Bulletin"}})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	updated, err := s.service.SubmitLoanApplication(s.ctx, s.buyer, p.ID, []models.LoanDocument{
		{Name: " Bulletin de salaire ", URL: "https://files.example.com/b.pdf"},
	})
	s.Require().NoError(err)
	s.Equal(models.StatusProcessing, updated.Status)
	s.Require().NotNil(updated.LoanApplication)
	s.Equal(models.LoanPending, updated.LoanApplication.Status)
	s.Equal("Bulletin de salaire", updated.LoanApplication.Documents[0].Name)
	s.NotEmpty(updated.LoanApplication.Documents[0].ID)

	s.Run("processing purchases cannot be deleted", func() {
		err := s.service.Delete(s.ctx, s.buyer, p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func (s *PurchaseServiceSuite) TestDeleteRemovesMessages() {
	p, err := s.service.Initiate(s.ctx, s.buyer, villaID)
	s.Require().NoError(err)
	_, err = s.service.AppendMessage(s.ctx, s.buyer, p.ID, "Bonjour")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(s.ctx, s.buyer, p.ID))

	_, err = s.service.Get(s.ctx, s.buyer, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	msgs, err := s.store.ListMessages(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Empty(msgs)
	s.Contains(s.actions(), string(audit.EventPurchaseDeleted))

	s.Run("a new purchase can start after withdrawal", func() {
		again, err := s.service.Initiate(s.ctx, s.buyer, villaID)
		s.Require().NoError(err)
		s.NotEqual(p.ID, again.ID)
	})
}

func (s *PurchaseServiceSuite) TestDeletePendingPaymentRemovesMessages() {
	p := s.pendingPayment()
	for _, text := range []string{"Bonjour", "Le virement part demain"} {
		_, err := s.service.AppendMessage(s.ctx, s.buyer, p.ID, text)
		s.Require().NoError(err)
	}
	msgs, err := s.service.ListMessages(s.ctx, s.buyer, p.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)

	s.Require().NoError(s.service.Delete(s.ctx, s.buyer, p.ID))

	_, err = s.service.Get(s.ctx, s.buyer, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	msgs, err = s.store.ListMessages(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Empty(msgs)
}

func (s *PurchaseServiceSuite) TestDeleteByStranger() {
	p, err := s.service.Initiate(s.ctx, s.buyer, villaID)
	s.Require().NoError(err)
	err = s.service.Delete(s.ctx, id.UserID(uuid.New()), p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *PurchaseServiceSuite) TestMessages() {
	p, err := s.service.Initiate(s.ctx, s.buyer, villaID)
	s.Require().NoError(err)

	_, err = s.service.AppendMessage(s.ctx, s.buyer, p.ID, "  ")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	first, err := s.service.AppendMessage(s.ctx, s.buyer, p.ID, " Une visite est-elle possible ? ")
	s.Require().NoError(err)
	s.Equal("Une visite est-elle possible ?", first.Content)
	later := requestcontext.WithTime(s.ctx, time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	_, err = s.service.AppendMessage(later, s.buyer, p.ID, "Merci")
	s.Require().NoError(err)

	msgs, err := s.service.ListMessages(s.ctx, s.buyer, p.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 2)
	s.Equal("Merci", msgs[1].Content)

	view, err := s.service.Get(s.ctx, s.buyer, p.ID)
	s.Require().NoError(err)
	s.Len(view.Messages, 2)
	s.Require().NotNil(view.Property)
	s.Equal("Villa Almadies", view.Property.Title)
}

func (s *PurchaseServiceSuite) TestReceipt() {
	p := s.pendingPayment()

	_, err := s.service.Receipt(s.ctx, s.buyer, p.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))

	conf, err := s.service.CompleteDirectPayment(s.ctx, s.buyer, p.ID, models.PaymentBankTransfer)
	s.Require().NoError(err)

	r, err := s.service.Receipt(s.ctx, s.buyer, p.ID)
	s.Require().NoError(err)
	s.Equal(conf.Reference, r.Reference)
	s.Equal("Villa Almadies", r.PropertyTitle)
	s.Equal("Teranga Homes", r.DeveloperName)
	s.True(decimal.NewFromInt(18_000_000).Equal(r.Amount))
}

func (s *PurchaseServiceSuite) TestPending() {
	none, err := s.service.Pending(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Nil(none)

	p, err := s.service.Initiate(s.ctx, s.buyer, villaID)
	s.Require().NoError(err)
	pending, err := s.service.Pending(s.ctx, s.buyer)
	s.Require().NoError(err)
	s.Equal(p.ID, pending.ID)
}

type brokenStore struct {
	*store.InMemory
}

func (brokenStore) ListByUser(context.Context, id.UserID) ([]models.Purchase, error) {
	return nil, errors.New("connection reset")
}

func (s *PurchaseServiceSuite) TestStoreFailureIsInternal() {
	svc := New(brokenStore{store.NewInMemory()}, nil, s.profiles)
	_, err := svc.List(s.ctx, s.buyer)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
