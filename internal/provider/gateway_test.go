package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dpolonia/snshadb/internal/config"
	"github.com/dpolonia/snshadb/internal/domain"
)

type fakeProvider struct {
	name  string
	reply *domain.Reply
	err   error
	slow  time.Duration
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (*domain.Reply, error) {
	if f.slow > 0 {
		select {
		case <-time.After(f.slow):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.reply, f.err
}

func TestGateway_Generate(t *testing.T) {
	gw := NewGateway(map[string]Provider{
		"google": &fakeProvider{name: "google", reply: &domain.Reply{Text: "4"}},
	}, time.Second)

	reply, err := gw.Generate(context.Background(), "google", "2+2?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if reply.Text != "4" {
		t.Errorf("Text = %q, want 4", reply.Text)
	}
}

func TestGateway_UnknownProvider(t *testing.T) {
	gw := NewGateway(map[string]Provider{}, time.Second)

	_, err := gw.Generate(context.Background(), "bogus", "hi")

	var upe *domain.UnknownProviderError
	if !errors.As(err, &upe) {
		t.Fatalf("error = %v, want UnknownProviderError", err)
	}
	if upe.Name != "bogus" {
		t.Errorf("Name = %q, want bogus", upe.Name)
	}
}

func TestGateway_BackendFailure(t *testing.T) {
	cause := errors.New("quota exhausted")
	gw := NewGateway(map[string]Provider{
		"google": &fakeProvider{name: "google", err: cause},
	}, time.Second)

	_, err := gw.Generate(context.Background(), "google", "hi")

	var pce *domain.ProviderCallError
	if !errors.As(err, &pce) {
		t.Fatalf("error = %v, want ProviderCallError", err)
	}
	if !errors.Is(err, cause) {
		t.Error("ProviderCallError should wrap the backend cause")
	}
}

func TestGateway_EmptyReplyIsCallError(t *testing.T) {
	gw := NewGateway(map[string]Provider{
		"google": &fakeProvider{name: "google", reply: &domain.Reply{}},
	}, time.Second)

	_, err := gw.Generate(context.Background(), "google", "hi")

	if !errors.Is(err, ErrEmptyReply) {
		t.Errorf("error = %v, want wrapped ErrEmptyReply", err)
	}
	var pce *domain.ProviderCallError
	if !errors.As(err, &pce) {
		t.Errorf("error = %v, want ProviderCallError", err)
	}
}

func TestGateway_TimeoutIsCallError(t *testing.T) {
	gw := NewGateway(map[string]Provider{
		"google": &fakeProvider{name: "google", reply: &domain.Reply{Text: "late"}, slow: time.Second},
	}, 10*time.Millisecond)

	_, err := gw.Generate(context.Background(), "google", "hi")

	var pce *domain.ProviderCallError
	if !errors.As(err, &pce) {
		t.Fatalf("error = %v, want ProviderCallError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want wrapped deadline exceeded", err)
	}
}

func TestRegistry_BuildFromFactories(t *testing.T) {
	ClearFactories()
	t.Cleanup(ClearFactories)

	RegisterFactory(Factory{
		Type:        "fake",
		Description: "test backend",
		Create: func(cfg config.ProviderConfig) (Provider, error) {
			return &fakeProvider{name: cfg.Name, reply: &domain.Reply{Text: "ok"}}, nil
		},
	})
	// Re-registration of the same type is a no-op, not a panic.
	RegisterFactory(Factory{Type: "fake", Create: func(cfg config.ProviderConfig) (Provider, error) { return nil, nil }})

	if got := ListTypes(); len(got) != 1 || got[0] != "fake" {
		t.Errorf("ListTypes() = %v, want [fake]", got)
	}

	providers, err := Build([]config.ProviderConfig{{Name: "primary", Type: "fake"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, ok := providers["primary"]; !ok {
		t.Error("Build() should key the provider by its configured name")
	}
}

func TestRegistry_BuildUnknownType(t *testing.T) {
	ClearFactories()
	t.Cleanup(ClearFactories)

	_, err := Build([]config.ProviderConfig{{Name: "x", Type: "nope"}})
	if err == nil {
		t.Error("Build() with unregistered type should fail")
	}
}
