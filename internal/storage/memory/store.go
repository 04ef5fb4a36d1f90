// Package memory provides in-memory sink implementations, used by tests
// and by the "memory" storage mode where durability is not wanted.
package memory

import (
	"context"
	"sync"

	"github.com/dpolonia/snshadb/internal/domain"
	"github.com/dpolonia/snshadb/internal/storage"
)

// Store is an in-memory implementation of InteractionStore and AuditLog.
type Store struct {
	mu           sync.RWMutex
	interactions []domain.InteractionRecord
	events       []domain.AuditEvent
}

var (
	_ storage.InteractionStore = (*Store)(nil)
	_ storage.AuditLog         = (*Store)(nil)
)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{}
}

// AppendInteraction stores one interaction record.
func (s *Store) AppendInteraction(ctx context.Context, rec *domain.InteractionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.interactions = append(s.interactions, *rec)
	return nil
}

// ListBySession returns the records for a session in insertion order.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]domain.InteractionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.InteractionRecord
	for _, rec := range s.interactions {
		if rec.SessionID == sessionID {
			result = append(result, rec)
		}
	}
	return result, nil
}

// AppendEvent stores one audit event.
func (s *Store) AppendEvent(ctx context.Context, ev *domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, *ev)
	return nil
}

// Interactions returns a copy of every stored record.
func (s *Store) Interactions() []domain.InteractionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.InteractionRecord, len(s.interactions))
	copy(out, s.interactions)
	return out
}

// Events returns a copy of every stored event in insertion order.
func (s *Store) Events() []domain.AuditEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}
