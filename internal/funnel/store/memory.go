package store

import (
	"context"
	"sync"
	"time"

	"teranga/internal/funnel/models"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
)

// InMemory keeps one profile per user. Writes to a profile whose KYC has
// started fail with sentinel.ErrInvalidState, like the SQL guards.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.UserID]*models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.UserID]*models.Profile)}
}

func (s *InMemory) FindProfile(_ context.Context, userID id.UserID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := *p
	return &c, nil
}

// update applies fn to an existing unlocked profile.
func (s *InMemory) update(userID id.UserID, at time.Time, fn func(p *models.Profile)) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if p.IsLocked() {
		return nil, sentinel.ErrInvalidState
	}
	fn(p)
	p.UpdatedAt = at
	c := *p
	return &c, nil
}

func (s *InMemory) SavePersonal(_ context.Context, userID id.UserID, info models.PersonalInfo, at time.Time) (*models.Profile, error) {
	s.mu.Lock()
	if _, ok := s.profiles[userID]; !ok {
		s.profiles[userID] = &models.Profile{UserID: userID, CreatedAt: at}
	}
	s.mu.Unlock()
	return s.update(userID, at, func(p *models.Profile) {
		p.LastName = info.LastName
		p.FirstName = info.FirstName
		p.Country = info.Country
		p.Phone = info.Phone
	})
}

func (s *InMemory) SaveProfessional(_ context.Context, userID id.UserID, info models.ProfessionalInfo, at time.Time) (*models.Profile, error) {
	return s.update(userID, at, func(p *models.Profile) {
		p.ProfessionalActivity = info.Activity
		p.RevenueRange = info.RevenueRange
	})
}

func (s *InMemory) SaveResidency(_ context.Context, userID id.UserID, hasEUResidency bool, at time.Time) (*models.Profile, error) {
	return s.update(userID, at, func(p *models.Profile) {
		p.HasEUResidency = models.TristateOf(hasEUResidency)
	})
}

// MarkKYCVerified records a completed verification. The first verification
// time is kept.
func (s *InMemory) MarkKYCVerified(_ context.Context, userID id.UserID, at time.Time) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p.KYCVerified = models.True
	if p.KYCVerifiedAt == nil {
		verifiedAt := at
		p.KYCVerifiedAt = &verifiedAt
	}
	p.UpdatedAt = at
	c := *p
	return &c, nil
}

// MarkKYCInProgress records that the verification provider accepted the
// documents and is reviewing them.
func (s *InMemory) MarkKYCInProgress(_ context.Context, userID id.UserID, at time.Time) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if p.KYCVerified.IsTrue() {
		return nil, sentinel.ErrInvalidState
	}
	p.KYCVerified = models.False
	p.UpdatedAt = at
	c := *p
	return &c, nil
}
