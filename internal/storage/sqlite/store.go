// Package sqlite implements both persistence sinks on a single SQLite
// database, using sqlx over the CGo-free modernc driver. The interactions
// table is keyed by record id and indexed by session_id, mirroring a
// document container partitioned on the session; audit_events relies on
// rowid for insertion order.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/dpolonia/snshadb/internal/domain"
	"github.com/dpolonia/snshadb/internal/storage"
)

// Store is a SQLite implementation of InteractionStore and AuditLog.
type Store struct {
	db *sqlx.DB
}

var (
	_ storage.InteractionStore = (*Store)(nil)
	_ storage.AuditLog         = (*Store)(nil)
)

// New opens (creating if needed) the database at path and initializes
// the schema.
func New(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS interactions (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			provider TEXT NOT NULL,
			prompt TEXT NOT NULL,
			response TEXT NOT NULL,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			response_tokens INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS audit_events (
			timestamp TIMESTAMP NOT NULL,
			event_type TEXT NOT NULL,
			message TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interactions_session ON interactions(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_events_type ON audit_events(event_type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}

	return nil
}

// AppendInteraction stores one interaction record.
func (s *Store) AppendInteraction(ctx context.Context, rec *domain.InteractionRecord) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO interactions
			(id, session_id, user_id, timestamp, provider, prompt, response, prompt_tokens, response_tokens)
		VALUES
			(:id, :session_id, :user_id, :timestamp, :provider, :prompt, :response, :prompt_tokens, :response_tokens)`,
		rec)
	if err != nil {
		return fmt.Errorf("failed to insert interaction %s: %w", rec.ID, err)
	}
	return nil
}

// ListBySession returns the records for a session, oldest first.
func (s *Store) ListBySession(ctx context.Context, sessionID string) ([]domain.InteractionRecord, error) {
	var recs []domain.InteractionRecord
	err := s.db.SelectContext(ctx, &recs, `
		SELECT id, session_id, user_id, timestamp, provider, prompt, response, prompt_tokens, response_tokens
		FROM interactions
		WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interactions for session %s: %w", sessionID, err)
	}
	return recs, nil
}

// AppendEvent stores one audit event. The message is expected to be
// truncated already by domain.NewAuditEvent.
func (s *Store) AppendEvent(ctx context.Context, ev *domain.AuditEvent) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO audit_events (timestamp, event_type, message)
		VALUES (:timestamp, :event_type, :message)`,
		ev)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// ListEvents returns audit events in insertion order, optionally
// filtered by type. A zero limit returns everything.
func (s *Store) ListEvents(ctx context.Context, eventType domain.EventType, limit int) ([]domain.AuditEvent, error) {
	query := `SELECT timestamp, event_type, message FROM audit_events`
	args := []any{}
	if eventType != "" {
		query += ` WHERE event_type = ?`
		args = append(args, string(eventType))
	}
	query += ` ORDER BY rowid ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var evs []domain.AuditEvent
	if err := s.db.SelectContext(ctx, &evs, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	return evs, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
