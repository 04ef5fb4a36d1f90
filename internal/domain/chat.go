// Package domain defines the core data contracts of the SNSHADB
// controller: the chat request/response pair, the provider reply, and the
// records persisted by the background pipeline.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultUserID is applied when a request does not identify its caller.
const DefaultUserID = "default_user"

// ChatRequest is the inbound contract of POST /chat. It is immutable once
// decoded; the orchestrator owns it for the duration of the call.
type ChatRequest struct {
	// Prompt is the question or command for the AI. Required.
	Prompt string `json:"prompt"`

	// UserID identifies the caller. Defaults to DefaultUserID.
	UserID string `json:"user_id"`

	// Provider selects the AI backend (e.g. "google", "azure").
	// Defaults to the configured default provider.
	Provider string `json:"provider"`
}

// ChatResponse is the synchronous reply of POST /chat. SessionID is
// generated fresh per request and is the join key between this response
// and the records the background pipeline eventually persists.
type ChatResponse struct {
	Response  string    `json:"response"`
	SessionID string    `json:"session_id"`
	Provider  string    `json:"provider"`
	Timestamp time.Time `json:"timestamp"`
}

// Reply is the output of a provider call. Degraded marks a clearly
// labeled stub answer from a backend whose integration is not wired yet,
// so the audit trail can tell it apart from a true success.
type Reply struct {
	Text     string
	Degraded bool
}

// InteractionRecord is the durable record of one prompt/response
// exchange. It is created only after a successful provider call and is
// never mutated or deleted. ID is the record identity; SessionID groups
// records belonging to the same returned response.
type InteractionRecord struct {
	ID             string    `json:"id" db:"id"`
	SessionID      string    `json:"session_id" db:"session_id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Timestamp      time.Time `json:"timestamp" db:"timestamp"`
	Provider       string    `json:"provider" db:"provider"`
	Prompt         string    `json:"prompt" db:"prompt"`
	Response       string    `json:"response" db:"response"`
	PromptTokens   int       `json:"prompt_tokens" db:"prompt_tokens"`
	ResponseTokens int       `json:"response_tokens" db:"response_tokens"`
}

// NewInteractionRecord assembles a record with a fresh identity. Token
// counts are filled in by the caller when an estimator is available.
func NewInteractionRecord(sessionID, userID, provider, prompt, response string) *InteractionRecord {
	return &InteractionRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Provider:  provider,
		Prompt:    prompt,
		Response:  response,
	}
}
