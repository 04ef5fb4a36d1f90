package domain

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestNewAuditEvent_Truncation(t *testing.T) {
	long := strings.Repeat("x", MaxAuditMessageLen+500)

	ev := NewAuditEvent(EventAPIError, long)

	if len(ev.Message) != MaxAuditMessageLen {
		t.Errorf("len(Message) = %d, want %d", len(ev.Message), MaxAuditMessageLen)
	}
	if ev.EventType != EventAPIError {
		t.Errorf("EventType = %v, want %v", ev.EventType, EventAPIError)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestNewAuditEvent_ShortMessageUntouched(t *testing.T) {
	ev := NewAuditEvent(EventAPISuccess, "Session: abc | User: default_user")

	if ev.Message != "Session: abc | User: default_user" {
		t.Errorf("Message = %q, want original message", ev.Message)
	}
}

func TestNewInteractionRecord(t *testing.T) {
	rec := NewInteractionRecord("sess-1", "user-1", "google", "2+2?", "4")

	if rec.ID == "" {
		t.Error("ID should be generated")
	}
	if rec.ID == rec.SessionID {
		t.Error("ID must be distinct from SessionID")
	}
	if rec.SessionID != "sess-1" || rec.UserID != "user-1" {
		t.Errorf("identity fields = (%q, %q), want (sess-1, user-1)", rec.SessionID, rec.UserID)
	}
	if rec.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}

func TestErrorStatusCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &ValidationError{Field: "prompt", Reason: "must not be empty"}, http.StatusBadRequest},
		{"unknown provider", &UnknownProviderError{Name: "bogus"}, http.StatusBadRequest},
		{"provider call", &ProviderCallError{Provider: "google", Err: errors.New("timeout")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, ok := tt.err.(StatusCoder)
			if !ok {
				t.Fatalf("%T does not implement StatusCoder", tt.err)
			}
			if got := sc.HTTPStatusCode(); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestProviderCallError_Unwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := &ProviderCallError{Provider: "google", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var pce *ProviderCallError
	if !errors.As(error(err), &pce) {
		t.Error("errors.As should match ProviderCallError")
	}
}
