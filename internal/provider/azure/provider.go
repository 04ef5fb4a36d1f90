// Package azure holds the Azure OpenAI slot of the provider registry.
// The backend integration is not wired yet: the provider answers with a
// clearly labeled stub reply instead of silently succeeding with wrong
// content, and marks it degraded so the audit trail can tell it apart
// from a real success.
package azure

import (
	"context"

	"github.com/dpolonia/snshadb/internal/config"
	"github.com/dpolonia/snshadb/internal/domain"
	"github.com/dpolonia/snshadb/internal/provider"
)

// ProviderType is the registry key for this backend.
const ProviderType = "azure"

// StubReply is returned until the Azure endpoint integration is wired.
const StubReply = "[degraded] Azure OpenAI support will be reactivated shortly; no model was called."

// Provider is the placeholder Azure backend. It keeps the configured
// endpoint and deployment so wiring the real client later is a local
// change.
type Provider struct {
	endpoint   string
	deployment string
}

// New creates the stub Azure provider.
func New(endpoint, deployment string) *Provider {
	return &Provider{endpoint: endpoint, deployment: deployment}
}

// Name returns the registry key of this backend.
func (p *Provider) Name() string { return ProviderType }

// Generate returns the labeled stub reply. It never fails: the provider
// is registered, only its backend is unwired.
func (p *Provider) Generate(ctx context.Context, prompt string) (*domain.Reply, error) {
	return &domain.Reply{Text: StubReply, Degraded: true}, nil
}

// RegisterProviderFactory wires this backend into the provider registry.
func RegisterProviderFactory() {
	provider.RegisterFactory(provider.Factory{
		Type:        ProviderType,
		Description: "Azure OpenAI backend (stub until the endpoint is wired)",
		Create: func(cfg config.ProviderConfig) (provider.Provider, error) {
			return New(cfg.BaseURL, cfg.Deployment), nil
		},
	})
}
