// Package provider defines the AI-backend capability and the registry
// that builds configured backends. A provider is a single operation, not
// a hierarchy: it turns a prompt into a reply. Unregistered names fail
// closed with domain.UnknownProviderError; there is no default fallthrough.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dpolonia/snshadb/internal/config"
	"github.com/dpolonia/snshadb/internal/domain"
)

// Provider is a configured AI backend capable of turning a prompt into
// generated text.
type Provider interface {
	// Name returns the registry key of this backend.
	Name() string

	// Generate produces a reply for the prompt. A single attempt, no
	// retries; the caller bounds the call with its context.
	Generate(ctx context.Context, prompt string) (*domain.Reply, error)
}

// Factory describes how to create a provider of a specific type from
// configuration. Provider packages expose a RegisterProviderFactory
// function that the cmds (and tests) call explicitly, avoiding init()
// side effects.
type Factory struct {
	// Type is the provider type identifier used in configuration.
	Type string

	// Description is a human-readable summary of the backend.
	Description string

	// Create instantiates a provider from its configuration.
	Create func(cfg config.ProviderConfig) (Provider, error)
}

var (
	factoryMu  sync.RWMutex
	factoryMap = make(map[string]Factory)
)

// RegisterFactory registers a factory for a provider type. Registering
// the same type twice is a no-op so cmds and tests can both wire
// builtins safely.
func RegisterFactory(f Factory) {
	if f.Type == "" {
		panic("provider factory type cannot be empty")
	}
	if f.Create == nil {
		panic(fmt.Sprintf("provider factory %q must have a Create function", f.Type))
	}

	factoryMu.Lock()
	defer factoryMu.Unlock()

	if _, exists := factoryMap[f.Type]; exists {
		return
	}
	factoryMap[f.Type] = f
}

// GetFactory returns the factory for a provider type, if registered.
func GetFactory(providerType string) (Factory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factoryMap[providerType]
	return f, ok
}

// ListTypes returns all registered provider type names, sorted.
func ListTypes() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	types := make([]string, 0, len(factoryMap))
	for t := range factoryMap {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// ClearFactories removes all registered factories. For testing only.
func ClearFactories() {
	factoryMu.Lock()
	defer factoryMu.Unlock()

	factoryMap = make(map[string]Factory)
}

// Build creates the named providers from configuration using the
// registered factories.
func Build(configs []config.ProviderConfig) (map[string]Provider, error) {
	providers := make(map[string]Provider)
	for _, cfg := range configs {
		f, ok := GetFactory(cfg.Type)
		if !ok {
			return nil, fmt.Errorf("no factory registered for provider type %q", cfg.Type)
		}
		p, err := f.Create(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create provider %s: %w", cfg.Name, err)
		}
		name := cfg.Name
		if name == "" {
			name = cfg.Type
		}
		providers[name] = p
	}
	return providers, nil
}
