package sqlite

import (
	"context"
	"strings"
	"testing"

	"github.com/dpolonia/snshadb/internal/domain"
)

func newTestStore(t *testing.T, name string) *Store {
	t.Helper()
	store, err := New("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_InteractionRoundTrip(t *testing.T) {
	store := newTestStore(t, "interactions1")

	rec := domain.NewInteractionRecord("sess-42", "alice", "google", "2+2?", "4")
	rec.PromptTokens = 3
	rec.ResponseTokens = 1

	if err := store.AppendInteraction(context.Background(), rec); err != nil {
		t.Fatalf("AppendInteraction() error = %v", err)
	}

	got, err := store.ListBySession(context.Background(), "sess-42")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(got))
	}

	r := got[0]
	if r.ID != rec.ID {
		t.Errorf("ID = %v, want %v", r.ID, rec.ID)
	}
	if r.Prompt != "2+2?" || r.Response != "4" {
		t.Errorf("prompt/response = (%q, %q), want (2+2?, 4)", r.Prompt, r.Response)
	}
	if r.Provider != "google" || r.UserID != "alice" {
		t.Errorf("provider/user = (%q, %q), want (google, alice)", r.Provider, r.UserID)
	}
	if r.PromptTokens != 3 || r.ResponseTokens != 1 {
		t.Errorf("tokens = (%d, %d), want (3, 1)", r.PromptTokens, r.ResponseTokens)
	}
}

func TestStore_ListBySession_FiltersOtherSessions(t *testing.T) {
	store := newTestStore(t, "interactions2")

	a := domain.NewInteractionRecord("sess-a", "u", "google", "p1", "r1")
	b := domain.NewInteractionRecord("sess-b", "u", "google", "p2", "r2")
	for _, rec := range []*domain.InteractionRecord{a, b} {
		if err := store.AppendInteraction(context.Background(), rec); err != nil {
			t.Fatalf("AppendInteraction() error = %v", err)
		}
	}

	got, err := store.ListBySession(context.Background(), "sess-a")
	if err != nil {
		t.Fatalf("ListBySession() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(got))
	}
	if got[0].Prompt != "p1" {
		t.Errorf("Prompt = %q, want p1", got[0].Prompt)
	}
}

func TestStore_DuplicateDeliveryDetectable(t *testing.T) {
	store := newTestStore(t, "interactions3")

	rec := domain.NewInteractionRecord("sess-dup", "u", "google", "p", "r")
	if err := store.AppendInteraction(context.Background(), rec); err != nil {
		t.Fatalf("first AppendInteraction() error = %v", err)
	}

	// Same record id appended twice: rejected by the primary key, so the
	// duplicate never silently doubles the session history.
	if err := store.AppendInteraction(context.Background(), rec); err == nil {
		t.Error("second append of the same record should fail on the primary key")
	}
}

func TestStore_AuditEvents(t *testing.T) {
	store := newTestStore(t, "audit1")

	events := []*domain.AuditEvent{
		domain.NewAuditEvent(domain.EventSystem, "startup check"),
		domain.NewAuditEvent(domain.EventAPISuccess, "Session: s1 | User: u1"),
		domain.NewAuditEvent(domain.EventAPIError, "provider timeout"),
	}
	for _, ev := range events {
		if err := store.AppendEvent(context.Background(), ev); err != nil {
			t.Fatalf("AppendEvent() error = %v", err)
		}
	}

	all, err := store.ListEvents(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(all))
	}
	if all[0].EventType != domain.EventSystem {
		t.Errorf("first event type = %v, want %v (insertion order)", all[0].EventType, domain.EventSystem)
	}

	errs, err := store.ListEvents(context.Background(), domain.EventAPIError, 0)
	if err != nil {
		t.Fatalf("ListEvents(API_ERROR) error = %v", err)
	}
	if len(errs) != 1 || errs[0].Message != "provider timeout" {
		t.Errorf("API_ERROR events = %+v, want exactly the timeout event", errs)
	}
}

func TestStore_AuditMessageStoredTruncated(t *testing.T) {
	store := newTestStore(t, "audit2")

	ev := domain.NewAuditEvent(domain.EventAPIError, strings.Repeat("e", domain.MaxAuditMessageLen*2))
	if err := store.AppendEvent(context.Background(), ev); err != nil {
		t.Fatalf("AppendEvent() error = %v", err)
	}

	got, err := store.ListEvents(context.Background(), domain.EventAPIError, 1)
	if err != nil {
		t.Fatalf("ListEvents() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(got))
	}
	if len(got[0].Message) != domain.MaxAuditMessageLen {
		t.Errorf("stored message length = %d, want %d", len(got[0].Message), domain.MaxAuditMessageLen)
	}
}
