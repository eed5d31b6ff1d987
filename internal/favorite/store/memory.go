package store

import (
	"context"
	"sort"
	"sync"
	"time"

	id "teranga/pkg/domain"
)

type favoriteKey struct {
	user     id.UserID
	property id.PropertyID
}

// InMemory holds favorites as a set keyed by (user, property).
type InMemory struct {
	mu    sync.RWMutex
	added map[favoriteKey]time.Time
}

func NewInMemory() *InMemory {
	return &InMemory{added: make(map[favoriteKey]time.Time)}
}

func (s *InMemory) Exists(_ context.Context, userID id.UserID, propertyID id.PropertyID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.added[favoriteKey{userID, propertyID}]
	return ok, nil
}

func (s *InMemory) Add(_ context.Context, userID id.UserID, propertyID id.PropertyID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := favoriteKey{userID, propertyID}
	if _, ok := s.added[key]; !ok {
		s.added[key] = at
	}
	return nil
}

func (s *InMemory) Remove(_ context.Context, userID id.UserID, propertyID id.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.added, favoriteKey{userID, propertyID})
	return nil
}

func (s *InMemory) ListPropertyIDs(_ context.Context, userID id.UserID) ([]id.PropertyID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	type entry struct {
		property id.PropertyID
		at       time.Time
	}
	var entries []entry
	for k, at := range s.added {
		if k.user == userID {
			entries = append(entries, entry{k.property, at})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].at.Equal(entries[j].at) {
			return entries[i].property.String() < entries[j].property.String()
		}
		return entries[i].at.After(entries[j].at)
	})
	out := make([]id.PropertyID, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.property)
	}
	return out, nil
}
