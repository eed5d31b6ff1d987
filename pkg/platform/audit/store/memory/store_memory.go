package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	id "teranga/pkg/domain"
	audit "teranga/pkg/platform/audit"
)

type entry struct {
	outbox    audit.OutboxEntry
	event     audit.Event
	published bool
}

// InMemoryStore keeps the outbox in process. The relay drains it the same
// way it drains the Postgres table.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []*entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	eventID := uuid.NewString()
	payload, err := json.Marshal(audit.NewPayload(eventID, event))
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	event.Category = audit.AuditEvent(event.Action).Category()

	aggregateType, aggregateID := "audit", eventID
	if !event.UserID.IsNil() {
		aggregateType, aggregateID = "user", event.UserID.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &entry{
		outbox: audit.OutboxEntry{
			ID:            uuid.NewString(),
			AggregateType: aggregateType,
			AggregateID:   aggregateID,
			EventType:     event.Action,
			Payload:       payload,
			CreatedAt:     time.Now(),
		},
		event: event,
	})
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.entries {
		if e.event.UserID == userID {
			out = append(out, e.event)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// ListAll returns every event in append order.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]audit.Event, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.event)
	}
	return out, nil
}

func (s *InMemoryStore) FetchPending(_ context.Context, limit int) ([]audit.OutboxEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.OutboxEntry
	for _, e := range s.entries {
		if e.published {
			continue
		}
		out = append(out, e.outbox)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkPublished(_ context.Context, ids []string, _ time.Time) error {
	done := make(map[string]struct{}, len(ids))
	for _, entryID := range ids {
		done[entryID] = struct{}{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if _, ok := done[e.outbox.ID]; ok {
			e.published = true
		}
	}
	return nil
}
