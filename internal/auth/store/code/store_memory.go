// Package code stores one-time email verification codes keyed by email.
package code

import (
	"context"
	"sync"
	"time"

	"teranga/internal/auth/models"
	"teranga/pkg/platform/sentinel"
)

type entry struct {
	code      models.VerificationCode
	expiresAt time.Time
}

type InMemoryStore struct {
	mu    sync.Mutex
	codes map[string]*entry
	now   func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{codes: make(map[string]*entry), now: time.Now}
}

// Save replaces any previous code for email and resets its attempts.
func (s *InMemoryStore) Save(_ context.Context, email string, code models.VerificationCode, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	code.Attempts = 0
	s.codes[email] = &entry{code: code, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, email string) (*models.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.liveLocked(email)
	if err != nil {
		return nil, err
	}
	cp := e.code
	return &cp, nil
}

// IncrementAttempts records a wrong guess and returns the new count.
func (s *InMemoryStore) IncrementAttempts(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.liveLocked(email)
	if err != nil {
		return 0, err
	}
	e.code.Attempts++
	return e.code.Attempts, nil
}

func (s *InMemoryStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, email)
	return nil
}

func (s *InMemoryStore) liveLocked(email string) (*entry, error) {
	e, ok := s.codes[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.codes, email)
		return nil, sentinel.ErrNotFound
	}
	return e, nil
}
