//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"teranga/internal/funnel/models"
	"teranga/internal/funnel/store"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
	"teranga/pkg/testutil/containers"
)

type PostgresProfileSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	ctx      context.Context
	user     id.UserID
}

func TestPostgresProfileSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresProfileSuite))
}

func (s *PostgresProfileSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresProfileSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "user_profiles", "users"))
	s.user = id.UserID(uuid.New())
	_, err := s.postgres.DB.ExecContext(s.ctx,
		`INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'x')`,
		s.user.String(), s.user.String()+"@example.com")
	s.Require().NoError(err)
}

func (s *PostgresProfileSuite) personal() *models.Profile {
	p, err := s.store.SavePersonal(s.ctx, s.user, models.PersonalInfo{
		LastName: "Diallo", FirstName: "Awa", Country: "SN", Phone: "+221771234567",
	}, time.Now().UTC())
	s.Require().NoError(err)
	return p
}

func (s *PostgresProfileSuite) TestUpsertAndTristates() {
	p := s.personal()
	s.Equal("Diallo", p.LastName)
	s.False(p.HasEUResidency.IsSet())
	s.False(p.KYCVerified.IsSet())

	_, err := s.store.SaveResidency(s.ctx, s.user, false, time.Now().UTC())
	s.Require().NoError(err)
	got, err := s.store.FindProfile(s.ctx, s.user)
	s.Require().NoError(err)
	s.True(got.HasEUResidency.IsFalse())
}

func (s *PostgresProfileSuite) TestMissingRow() {
	_, err := s.store.SaveProfessional(s.ctx, s.user, models.ProfessionalInfo{Activity: "Autre", RevenueRange: "x"}, time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresProfileSuite) TestVerificationFreezesAnswers() {
	s.personal()
	first := time.Now().UTC().Truncate(time.Microsecond)
	verified, err := s.store.MarkKYCVerified(s.ctx, s.user, first)
	s.Require().NoError(err)
	s.True(verified.KYCVerified.IsTrue())

	_, err = s.store.SavePersonal(s.ctx, s.user, models.PersonalInfo{LastName: "Ba", FirstName: "Awa", Country: "SN", Phone: "+221"}, time.Now())
	s.ErrorIs(err, sentinel.ErrInvalidState)
	_, err = s.store.SaveProfessional(s.ctx, s.user, models.ProfessionalInfo{Activity: "Autre", RevenueRange: "x"}, time.Now())
	s.ErrorIs(err, sentinel.ErrInvalidState)

	again, err := s.store.MarkKYCVerified(s.ctx, s.user, first.Add(time.Hour))
	s.Require().NoError(err)
	s.True(first.Equal(*again.KYCVerifiedAt))
	s.Equal("Diallo", again.LastName)
}

func (s *PostgresProfileSuite) TestConcurrentWritesAgainstVerification() {
	s.personal()
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i == 5 {
				_, _ = s.store.MarkKYCVerified(s.ctx, s.user, time.Now())
				return
			}
			_, _ = s.store.SaveResidency(s.ctx, s.user, i%2 == 0, time.Now())
		}()
	}
	wg.Wait()

	_, err := s.store.SaveResidency(s.ctx, s.user, true, time.Now())
	s.ErrorIs(err, sentinel.ErrInvalidState)
}
