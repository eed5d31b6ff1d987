//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	catalogstore "teranga/internal/catalog/store"
	"teranga/internal/purchase/models"
	"teranga/internal/purchase/store"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
	txcontext "teranga/pkg/platform/tx"
	"teranga/pkg/testutil/containers"
)

var villaID = id.PropertyID(uuid.MustParse("9b0e4a3c-1d2e-4f5a-8b6c-7d8e9f0a1b2c"))

type PostgresPurchaseSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
	buyer    id.UserID
}

func TestPostgresPurchaseSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresPurchaseSuite))
}

func (s *PostgresPurchaseSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresPurchaseSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx,
		"favorites", "purchase_messages", "loan_applications", "purchases", "users",
		"required_documents", "property_details", "property_payment_schedules", "properties",
		"developer_reviews", "developers", "countries",
	))
	fixture, err := catalogstore.LoadFixtureFile("../../catalog/store/testdata/catalog.yaml")
	s.Require().NoError(err)
	s.Require().NoError(catalogstore.NewPostgres(s.postgres.DB).Seed(s.ctx, fixture))

	s.buyer = id.UserID(uuid.New())
	_, err = s.postgres.DB.ExecContext(s.ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'x')`,
		s.buyer.String(), s.buyer.String()+"@example.com")
	s.Require().NoError(err)
}

func (s *PostgresPurchaseSuite) create() *models.Purchase {
	now := time.Now().UTC().Truncate(time.Microsecond)
	p, _, err := s.store.CreateOrGetActive(s.ctx, &models.Purchase{
		ID:         id.PurchaseID(uuid.New()),
		UserID:     s.buyer,
		PropertyID: villaID,
		Status:     models.StatusPendingKYC,
		CreatedAt:  now,
	})
	s.Require().NoError(err)
	s.Require().NotNil(p)
	return p
}

func (s *PostgresPurchaseSuite) TestConcurrentInitiateYieldsOneRow() {
	var wg sync.WaitGroup
	ids := make([]id.PurchaseID, 6)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = s.create().ID
		}()
	}
	wg.Wait()
	for _, got := range ids {
		s.Equal(ids[0], got)
	}

	var count int
	s.Require().NoError(s.postgres.DB.QueryRowContext(s.ctx,
		`SELECT count(*) FROM purchases WHERE user_id = $1`, s.buyer.String()).Scan(&count))
	s.Equal(1, count)
}

func (s *PostgresPurchaseSuite) TestGuardedTransitions() {
	p := s.create()
	now := time.Now().UTC()
	payment := store.Payment{Method: models.PaymentCard, Reference: "TRXABCDEFGHI", Amount: decimal.NewFromInt(18_000_000), PaidAt: now}

	_, err := s.store.CompletePayment(s.ctx, p.ID, payment)
	s.ErrorIs(err, sentinel.ErrInvalidState)

	_, err = s.store.Transition(s.ctx, id.PurchaseID(uuid.New()), models.AwaitingKYC, models.StatusPendingPayment, now)
	s.ErrorIs(err, sentinel.ErrNotFound)

	advanced, err := s.store.Transition(s.ctx, p.ID, models.AwaitingKYC, models.StatusPendingPayment, now)
	s.Require().NoError(err)
	s.Equal(models.StatusPendingPayment, advanced.Status)

	paid, err := s.store.CompletePayment(s.ctx, p.ID, payment)
	s.Require().NoError(err)
	s.Equal(models.StatusCompleted, paid.Status)
	s.Require().NotNil(paid.PaidAmount)
	s.True(decimal.NewFromInt(18_000_000).Equal(*paid.PaidAmount))
	s.Equal("TRXABCDEFGHI", *paid.PaymentReference)

	_, err = s.store.CompletePayment(s.ctx, p.ID, payment)
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *PostgresPurchaseSuite) TestLoanApplicationRoundTrip() {
	p := s.create()
	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := s.store.Transition(s.ctx, p.ID, models.AwaitingKYC, models.StatusPendingPayment, now)
	s.Require().NoError(err)

	updated, err := s.store.SubmitLoanApplication(s.ctx, p.ID, models.LoanApplication{
		Status:      models.LoanPending,
		Documents:   []models.LoanDocument{{ID: "d1", Name: "Bulletin", URL: "https://files.example.com/b.pdf"}},
		SubmittedAt: now,
	})
	s.Require().NoError(err)
	s.Equal(models.StatusProcessing, updated.Status)
	s.Require().NotNil(updated.LoanApplication)
	s.Equal("Bulletin", updated.LoanApplication.Documents[0].Name)
}

func (s *PostgresPurchaseSuite) TestDeleteInTransaction() {
	p := s.create()
	s.Require().NoError(s.store.AppendMessage(s.ctx, models.Message{
		ID: id.MessageID(uuid.New()), PurchaseID: p.ID, SenderID: s.buyer, Content: "Bonjour", CreatedAt: time.Now(),
	}))

	err := txcontext.Run(s.ctx, s.postgres.DB, func(ctx context.Context) error {
		if err := s.store.DeleteMessages(ctx, p.ID); err != nil {
			return err
		}
		return s.store.Delete(ctx, p.ID, models.DeletableStatuses)
	})
	s.Require().NoError(err)

	_, err = s.store.FindByID(s.ctx, p.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresPurchaseSuite) TestMessageForUnknownPurchase() {
	err := s.store.AppendMessage(s.ctx, models.Message{
		ID: id.MessageID(uuid.New()), PurchaseID: id.PurchaseID(uuid.New()), SenderID: s.buyer, Content: "x", CreatedAt: time.Now(),
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}
