package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"teranga/internal/purchase/models"
	id "teranga/pkg/domain"
	"teranga/pkg/platform/sentinel"
)

// InMemory keeps purchases and messages in maps. Each method holds the lock
// for its whole read-check-write, which gives the same guarantees as the
// guarded SQL updates.
type InMemory struct {
	mu        sync.RWMutex
	purchases map[id.PurchaseID]*models.Purchase
	messages  map[id.PurchaseID][]models.Message
}

func NewInMemory() *InMemory {
	return &InMemory{
		purchases: make(map[id.PurchaseID]*models.Purchase),
		messages:  make(map[id.PurchaseID][]models.Message),
	}
}

func clone(p *models.Purchase) *models.Purchase {
	c := *p
	if p.LoanApplication != nil {
		loan := *p.LoanApplication
		loan.Documents = slices.Clone(p.LoanApplication.Documents)
		c.LoanApplication = &loan
	}
	return &c
}

func (s *InMemory) CreateOrGetActive(_ context.Context, p *models.Purchase) (*models.Purchase, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.activeLocked(p.UserID, p.PropertyID); existing != nil {
		return clone(existing), false, nil
	}
	stored := clone(p)
	s.purchases[p.ID] = stored
	return clone(stored), true, nil
}

func (s *InMemory) activeLocked(userID id.UserID, propertyID id.PropertyID) *models.Purchase {
	for _, p := range s.purchases {
		if p.UserID == userID && p.PropertyID == propertyID && p.Status.IsActive() {
			return p
		}
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, purchaseID id.PurchaseID) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.purchases[purchaseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

func (s *InMemory) FindActive(_ context.Context, userID id.UserID, propertyID id.PropertyID) (*models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p := s.activeLocked(userID, propertyID); p != nil {
		return clone(p), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]models.Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Purchase, 0)
	for _, p := range s.purchases {
		if p.UserID == userID {
			out = append(out, *clone(p))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) LatestActive(ctx context.Context, userID id.UserID) (*models.Purchase, error) {
	all, _ := s.ListByUser(ctx, userID)
	for i := range all {
		if all[i].Status.IsActive() {
			return &all[i], nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// guardedLocked returns the purchase when its status is one of from.
func (s *InMemory) guardedLocked(purchaseID id.PurchaseID, from []models.Status) (*models.Purchase, error) {
	p, ok := s.purchases[purchaseID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !slices.Contains(from, p.Status) {
		return nil, sentinel.ErrInvalidState
	}
	return p, nil
}

func (s *InMemory) Transition(_ context.Context, purchaseID id.PurchaseID, from []models.Status, to models.Status, at time.Time) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.guardedLocked(purchaseID, from)
	if err != nil {
		return nil, err
	}
	p.Status = to
	p.UpdatedAt = at
	return clone(p), nil
}

func (s *InMemory) CompletePayment(_ context.Context, purchaseID id.PurchaseID, payment Payment) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.guardedLocked(purchaseID, []models.Status{models.StatusPendingPayment})
	if err != nil {
		return nil, err
	}
	method := payment.Method
	reference := payment.Reference
	amount := payment.Amount
	paidAt := payment.PaidAt
	p.Status = models.StatusCompleted
	p.PaymentMethod = &method
	p.PaymentReference = &reference
	p.PaidAmount = &amount
	p.PaidAt = &paidAt
	p.UpdatedAt = paidAt
	return clone(p), nil
}

func (s *InMemory) SubmitLoanApplication(_ context.Context, purchaseID id.PurchaseID, loan models.LoanApplication) (*models.Purchase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.guardedLocked(purchaseID, []models.Status{models.StatusPendingPayment})
	if err != nil {
		return nil, err
	}
	loan.Documents = slices.Clone(loan.Documents)
	p.Status = models.StatusProcessing
	p.LoanApplication = &loan
	p.UpdatedAt = loan.SubmittedAt
	return clone(p), nil
}

func (s *InMemory) DeleteMessages(_ context.Context, purchaseID id.PurchaseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, purchaseID)
	return nil
}

func (s *InMemory) Delete(_ context.Context, purchaseID id.PurchaseID, statuses []models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.guardedLocked(purchaseID, statuses); err != nil {
		return err
	}
	delete(s.purchases, purchaseID)
	return nil
}

func (s *InMemory) AppendMessage(_ context.Context, msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.purchases[msg.PurchaseID]; !ok {
		return sentinel.ErrNotFound
	}
	s.messages[msg.PurchaseID] = append(s.messages[msg.PurchaseID], msg)
	return nil
}

func (s *InMemory) ListMessages(_ context.Context, purchaseID id.PurchaseID) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := slices.Clone(s.messages[purchaseID])
	if out == nil {
		out = []models.Message{}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
