package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	audit "docverify/pkg/platform/audit"
)

// InMemoryStore keeps audit events per user for the lifetime of the process.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[uuid.UUID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[uuid.UUID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.UserID] = append(s.events[event.UserID], event)
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[userID]...), nil
}

// Count returns the number of stored events for action across all users.
func (s *InMemoryStore) Count(action audit.AuditEvent) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, userEvents := range s.events {
		for _, e := range userEvents {
			if e.Action == string(action) {
				n++
			}
		}
	}
	return n
}
