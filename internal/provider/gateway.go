package provider

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/dpolonia/snshadb/internal/domain"
)

// ErrEmptyReply is wrapped by ProviderCallError when a backend call
// succeeds but yields no usable text.
var ErrEmptyReply = errors.New("provider returned an empty reply")

// Gateway routes a named provider to its capability and isolates
// provider-specific failures behind the domain error taxonomy. The
// provider map is built once at startup and read-only afterwards, so the
// gateway is safe for concurrent use without locking.
type Gateway struct {
	providers map[string]Provider
	timeout   time.Duration
}

// NewGateway creates a gateway over the built providers. timeout bounds
// each synchronous backend call; zero disables the bound.
func NewGateway(providers map[string]Provider, timeout time.Duration) *Gateway {
	return &Gateway{providers: providers, timeout: timeout}
}

// Generate routes prompt to the named provider.
//
// An unregistered name returns domain.UnknownProviderError. A backend
// failure, timeout, or empty reply returns domain.ProviderCallError
// wrapping the cause. Exactly one attempt is made.
func (g *Gateway) Generate(ctx context.Context, name, prompt string) (*domain.Reply, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, &domain.UnknownProviderError{Name: name}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	reply, err := p.Generate(ctx, prompt)
	if err != nil {
		return nil, &domain.ProviderCallError{Provider: name, Err: err}
	}
	if reply == nil || reply.Text == "" {
		return nil, &domain.ProviderCallError{Provider: name, Err: ErrEmptyReply}
	}

	return reply, nil
}

// Names returns the registered provider names, sorted.
func (g *Gateway) Names() []string {
	names := make([]string, 0, len(g.providers))
	for name := range g.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
