// Package store holds the verification record stores.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"docverify/internal/verification"
	"docverify/pkg/platform/sentinel"
	"docverify/pkg/requestcontext"
)

type entry struct {
	rec       verification.Record
	expiresAt time.Time
}

// InMemoryStore keeps records in process memory until their TTL passes.
// Expired entries are dropped lazily on access and on Save.
type InMemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[uuid.UUID]entry
}

func NewInMemoryStore(ttl time.Duration) *InMemoryStore {
	return &InMemoryStore{
		ttl:     ttl,
		records: make(map[uuid.UUID]entry),
	}
}

func (s *InMemoryStore) Save(ctx context.Context, rec *verification.Record) error {
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.records {
		if !now.Before(e.expiresAt) {
			delete(s.records, id)
		}
	}
	s.records[rec.ID] = entry{rec: *rec, expiresAt: now.Add(s.ttl)}
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*verification.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if !requestcontext.Now(ctx).Before(e.expiresAt) {
		delete(s.records, id)
		return nil, sentinel.ErrExpired
	}
	rec := e.rec
	return &rec, nil
}
