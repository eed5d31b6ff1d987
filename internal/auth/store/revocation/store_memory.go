package revocation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"teranga/pkg/platform/sentinel"
)

// InMemoryTRL keeps revoked JTIs with their expiry for single-process runs.
type InMemoryTRL struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewInMemoryTRL() *InMemoryTRL {
	return &InMemoryTRL{revoked: make(map[string]time.Time), now: time.Now}
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := requirePositiveTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.now().Add(ttl)
	return nil
}

func (t *InMemoryTRL) IsTokenRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	expiresAt, ok := t.revoked[jti]
	if !ok {
		return false, nil
	}
	if !t.now().Before(expiresAt) {
		delete(t.revoked, jti)
		return false, nil
	}
	return true, nil
}

// A non-positive TTL would make the revocation a no-op.
func requirePositiveTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("revocation ttl %s: %w", ttl, sentinel.ErrInvalidState)
	}
	return nil
}
