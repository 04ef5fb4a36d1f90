package google

import (
	"context"
	"errors"
	"net/http"

	"github.com/dpolonia/snshadb/internal/config"
	"github.com/dpolonia/snshadb/internal/domain"
	"github.com/dpolonia/snshadb/internal/provider"
)

// ProviderType is the registry key for this backend.
const ProviderType = "google"

const defaultModel = "gemini-2.5-pro"

// ProviderOption configures the provider.
type ProviderOption func(*Provider)

// WithModel overrides the model id.
func WithModel(model string) ProviderOption {
	return func(p *Provider) {
		p.model = model
	}
}

// WithProviderBaseURL sets a custom API base URL.
func WithProviderBaseURL(baseURL string) ProviderOption {
	return func(p *Provider) {
		p.baseURL = baseURL
	}
}

// WithProviderHTTPClient sets a custom HTTP client.
func WithProviderHTTPClient(httpClient *http.Client) ProviderOption {
	return func(p *Provider) {
		p.httpClient = httpClient
	}
}

// Provider implements provider.Provider against the Gemini API.
type Provider struct {
	client     *Client
	model      string
	baseURL    string
	httpClient *http.Client
}

// New creates a Gemini provider.
func New(apiKey string, opts ...ProviderOption) *Provider {
	p := &Provider{model: defaultModel}
	for _, opt := range opts {
		opt(p)
	}

	var clientOpts []ClientOption
	if p.baseURL != "" {
		clientOpts = append(clientOpts, WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		clientOpts = append(clientOpts, WithHTTPClient(p.httpClient))
	}
	p.client = NewClient(apiKey, clientOpts...)

	return p
}

// Name returns the registry key of this backend.
func (p *Provider) Name() string { return ProviderType }

// Generate asks Gemini to answer the prompt.
func (p *Provider) Generate(ctx context.Context, prompt string) (*domain.Reply, error) {
	resp, err := p.client.GenerateContent(ctx, p.model, prompt)
	if err != nil {
		return nil, err
	}

	text := resp.Text()
	if text == "" {
		return nil, errors.New("model returned no candidate text")
	}

	return &domain.Reply{Text: text}, nil
}

// RegisterProviderFactory wires this backend into the provider registry.
// Called explicitly from the cmds and tests.
func RegisterProviderFactory() {
	provider.RegisterFactory(provider.Factory{
		Type:        ProviderType,
		Description: "Google Gemini generateContent backend",
		Create: func(cfg config.ProviderConfig) (provider.Provider, error) {
			var opts []ProviderOption
			if cfg.Model != "" {
				opts = append(opts, WithModel(cfg.Model))
			}
			if cfg.BaseURL != "" {
				opts = append(opts, WithProviderBaseURL(cfg.BaseURL))
			}
			return New(cfg.APIKey, opts...), nil
		},
	})
}
