// Package orchestrator implements the chat request lifecycle: validate,
// route to a provider synchronously, finalize the response, then hand
// the interaction record and audit event to the background pool. Sink
// availability never adds latency or failure modes to the user-facing
// reply.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dpolonia/snshadb/internal/background"
	"github.com/dpolonia/snshadb/internal/domain"
	"github.com/dpolonia/snshadb/internal/storage"
	"github.com/dpolonia/snshadb/internal/tokens"
)

// Generator routes a prompt to a named provider. Implemented by
// provider.Gateway.
type Generator interface {
	Generate(ctx context.Context, name, prompt string) (*domain.Reply, error)
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithDefaultProvider sets the provider applied when a request omits
// one.
func WithDefaultProvider(name string) Option {
	return func(o *Orchestrator) {
		o.defaultProvider = name
	}
}

// WithTokenCounter sets the counter used for usage estimates on stored
// interactions.
func WithTokenCounter(c tokens.Counter) Option {
	return func(o *Orchestrator) {
		o.counter = c
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// Orchestrator owns the POST /chat lifecycle. Its collaborators are
// process-wide and read-only per request, so a single instance serves
// all requests concurrently.
type Orchestrator struct {
	gateway      Generator
	interactions storage.InteractionStore
	audit        storage.AuditLog
	pool         *background.Pool

	defaultProvider string
	counter         tokens.Counter
	logger          *slog.Logger
}

// New creates an orchestrator over the given gateway, sinks, and pool.
func New(gateway Generator, interactions storage.InteractionStore, audit storage.AuditLog, pool *background.Pool, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:         gateway,
		interactions:    interactions,
		audit:           audit,
		pool:            pool,
		defaultProvider: "google",
		counter:         tokens.NewEstimator(),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Chat processes one request and returns the response to deliver.
//
// Validation failures and unknown providers return before any backend
// call, with no background work. A failed provider call schedules
// exactly one API_ERROR audit job and returns the error. On success the
// response value is finalized first; only then are the interaction
// record and the API_SUCCESS event submitted as two independent
// fire-and-forget jobs whose outcome the caller never observes.
func (o *Orchestrator) Chat(ctx context.Context, req *domain.ChatRequest) (*domain.ChatResponse, error) {
	if req.Prompt == "" {
		return nil, &domain.ValidationError{Field: "prompt", Reason: "must not be empty"}
	}

	userID := req.UserID
	if userID == "" {
		userID = domain.DefaultUserID
	}
	providerName := req.Provider
	if providerName == "" {
		providerName = o.defaultProvider
	}

	sessionID := uuid.New().String()

	reply, err := o.gateway.Generate(ctx, providerName, req.Prompt)
	if err != nil {
		var pce *domain.ProviderCallError
		if errors.As(err, &pce) {
			o.scheduleErrorAudit(err)
		}
		return nil, err
	}

	resp := &domain.ChatResponse{
		Response:  reply.Text,
		SessionID: sessionID,
		Provider:  providerName,
		Timestamp: time.Now().UTC(),
	}

	// The response is final from here on; the jobs below run detached
	// and cannot affect it.
	o.scheduleInteraction(sessionID, userID, providerName, req.Prompt, reply.Text)
	o.scheduleSuccessAudit(sessionID, userID, reply.Degraded)

	return resp, nil
}

func (o *Orchestrator) scheduleInteraction(sessionID, userID, providerName, prompt, response string) {
	o.pool.Submit("store_interaction", func(ctx context.Context) error {
		rec := domain.NewInteractionRecord(sessionID, userID, providerName, prompt, response)
		if o.counter != nil {
			rec.PromptTokens = o.counter.Count(prompt)
			rec.ResponseTokens = o.counter.Count(response)
		}
		if err := o.interactions.AppendInteraction(ctx, rec); err != nil {
			return fmt.Errorf("append interaction %s: %w", rec.ID, err)
		}
		o.logger.Debug("interaction stored",
			slog.String("session_id", sessionID),
			slog.String("record_id", rec.ID),
		)
		return nil
	})
}

func (o *Orchestrator) scheduleSuccessAudit(sessionID, userID string, degraded bool) {
	o.pool.Submit("audit_success", func(ctx context.Context) error {
		message := fmt.Sprintf("Session: %s | User: %s", sessionID, userID)
		if degraded {
			message += " | degraded provider reply"
		}
		return o.audit.AppendEvent(ctx, domain.NewAuditEvent(domain.EventAPISuccess, message))
	})
}

func (o *Orchestrator) scheduleErrorAudit(callErr error) {
	detail := callErr.Error()
	o.pool.Submit("audit_error", func(ctx context.Context) error {
		return o.audit.AppendEvent(ctx, domain.NewAuditEvent(domain.EventAPIError, detail))
	})
}
