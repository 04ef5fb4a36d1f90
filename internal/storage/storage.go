// Package storage defines the sink interfaces the orchestrator persists
// through. Both sinks are append-only: records carry their own generated
// identity, so a retried background job may deliver a duplicate without
// corrupting anything, and duplicates stay detectable downstream.
package storage

import (
	"context"

	"github.com/dpolonia/snshadb/internal/domain"
)

// InteractionStore is the transactional sink for prompt/response
// exchanges. Appends must stay bounded in time; failures are reported to
// the caller, never retried here.
type InteractionStore interface {
	// AppendInteraction durably stores one interaction record.
	AppendInteraction(ctx context.Context, rec *domain.InteractionRecord) error

	// ListBySession returns all records sharing a session id, oldest
	// first.
	ListBySession(ctx context.Context, sessionID string) ([]domain.InteractionRecord, error)
}

// AuditLog is the analytical sink for operational events. It is
// insertion-ordered and independent of the interaction store: one being
// unavailable never blocks the other.
type AuditLog interface {
	// AppendEvent durably stores one audit event.
	AppendEvent(ctx context.Context, ev *domain.AuditEvent) error
}
