package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRequestIDMiddleware(t *testing.T) {
	var ctxID string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	headerID := rec.Header().Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("X-Request-ID header should be set")
	}
	if _, err := uuid.Parse(headerID); err != nil {
		t.Errorf("X-Request-ID = %q is not a valid UUID", headerID)
	}
	if ctxID != headerID {
		t.Errorf("context id = %q, header id = %q, want equal", ctxID, headerID)
	}
}

func TestLoggingMiddleware_EmitsHandlerFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestIDMiddleware(LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddLogField(r.Context(), "session_id", "sess-123")
		w.WriteHeader(http.StatusTeapot)
	})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/chat", nil))

	out := buf.String()
	if !strings.Contains(out, "request completed") {
		t.Errorf("log output %q should contain the completion line", out)
	}
	if !strings.Contains(out, "sess-123") {
		t.Errorf("log output %q should contain the handler field", out)
	}
	if !strings.Contains(out, "418") {
		t.Errorf("log output %q should record the response status", out)
	}
}

func TestAddLogField_NoMiddlewareIsNoop(t *testing.T) {
	// Must not panic when the middleware did not run.
	AddLogField(context.Background(), "key", "value")
	AddLogField(context.Background(), "key", "")
}

func TestTimeoutMiddleware(t *testing.T) {
	expired := make(chan bool, 1)
	handler := TimeoutMiddleware(10 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			expired <- true
		case <-time.After(time.Second):
			expired <- false
		}
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !<-expired {
		t.Error("request context should expire at the middleware timeout")
	}
}
