package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/dpolonia/snshadb/internal/background"
	"github.com/dpolonia/snshadb/internal/config"
	"github.com/dpolonia/snshadb/internal/domain"
	"github.com/dpolonia/snshadb/internal/orchestrator"
	"github.com/dpolonia/snshadb/internal/provider"
	"github.com/dpolonia/snshadb/internal/provider/azure"
	"github.com/dpolonia/snshadb/internal/provider/google"
	"github.com/dpolonia/snshadb/internal/storage/sqlite"
	"github.com/dpolonia/snshadb/internal/tokens"
)

// snshadb-ask sends a single prompt through the same orchestration path the
// HTTP server uses, without starting a server. Useful for smoke-testing a
// deployment's provider credentials and storage wiring.
func main() {
	ask := flag.String("ask", "", "prompt to send to the configured provider")
	providerName := flag.String("provider", "", "provider to route to (defaults to the configured default)")
	user := flag.String("user", "", "user id recorded with the interaction")
	configPath := flag.String("config", "config.yaml", "path to the YAML config file (skipped when missing)")
	flag.Parse()

	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Storage.SQLite.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *ask == "" {
		flag.Usage()
		// With no prompt, still exercise the audit path so operators can
		// confirm the database is reachable.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.AppendEvent(ctx, domain.NewAuditEvent(domain.EventSystem, "connectivity check from snshadb-ask")); err != nil {
			fmt.Fprintf(os.Stderr, "connectivity check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("storage reachable; pass -ask to send a prompt")
		return
	}

	google.RegisterProviderFactory()
	azure.RegisterProviderFactory()

	providers, err := provider.Build(cfg.Providers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build providers: %v\n", err)
		os.Exit(1)
	}
	gateway := provider.NewGateway(providers, cfg.ProviderTimeout())

	pool := background.NewPool(cfg.Background.Workers, cfg.Background.QueueSize, cfg.JobTimeout(), logger)

	orch := orchestrator.New(gateway, store, store, pool,
		orchestrator.WithDefaultProvider(cfg.Routing.DefaultProvider),
		orchestrator.WithTokenCounter(tokens.NewCounter()),
		orchestrator.WithLogger(logger),
	)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ProviderTimeout()+10*time.Second)
	defer cancel()

	resp, err := orch.Chat(ctx, &domain.ChatRequest{
		Prompt:   *ask,
		UserID:   *user,
		Provider: *providerName,
	})
	// Flush the queued persistence jobs before the store closes.
	pool.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "chat failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(resp.Response)
	fmt.Fprintf(os.Stderr, "session: %s provider: %s\n", resp.SessionID, resp.Provider)

	// The pool is drained, so the interaction should be readable now.
	verifyCtx, verifyCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer verifyCancel()
	records, err := store.ListBySession(verifyCtx, resp.SessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read-back failed: %v\n", err)
		return
	}
	fmt.Fprintf(os.Stderr, "stored: %d interaction(s) for this session\n", len(records))
}
