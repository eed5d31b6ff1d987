package user

import (
	"context"
	"fmt"
	"sync"
	"time"

	"teranga/internal/auth/models"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
)

// InMemoryUserStore keeps users keyed by id with an email index.
type InMemoryUserStore struct {
	mu      sync.RWMutex
	users   map[id.UserID]*models.User
	byEmail map[string]id.UserID
}

func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:   make(map[id.UserID]*models.User),
		byEmail: make(map[string]id.UserID),
	}
}

// Create fails with ErrConflict when the email is taken.
func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return fmt.Errorf("email %s: %w", user.Email, sentinel.ErrConflict)
	}
	cp := *user
	s.users[user.ID] = &cp
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.users[userID]
	return &cp, nil
}

// MarkVerified keeps the first verification time.
func (s *InMemoryUserStore) MarkVerified(_ context.Context, userID id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !u.Verified {
		u.Verified = true
		u.VerifiedAt = &at
	}
	return nil
}
