package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dpolonia/snshadb/internal/background"
	"github.com/dpolonia/snshadb/internal/config"
	"github.com/dpolonia/snshadb/internal/domain"
	"github.com/dpolonia/snshadb/internal/orchestrator"
	"github.com/dpolonia/snshadb/internal/provider"
	"github.com/dpolonia/snshadb/internal/provider/azure"
	"github.com/dpolonia/snshadb/internal/provider/google"
	"github.com/dpolonia/snshadb/internal/server"
	"github.com/dpolonia/snshadb/internal/storage"
	"github.com/dpolonia/snshadb/internal/storage/memory"
	"github.com/dpolonia/snshadb/internal/storage/sqlite"
	"github.com/dpolonia/snshadb/internal/telemetry"
	"github.com/dpolonia/snshadb/internal/tokens"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file (skipped when missing)")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("snshadb-controller", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	google.RegisterProviderFactory()
	azure.RegisterProviderFactory()

	providers, err := provider.Build(cfg.Providers)
	if err != nil {
		log.Fatalf("Failed to build providers: %v", err)
	}
	gateway := provider.NewGateway(providers, cfg.ProviderTimeout())

	interactions, audit, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	pool := background.NewPool(cfg.Background.Workers, cfg.Background.QueueSize, cfg.JobTimeout(), logger)

	orch := orchestrator.New(gateway, interactions, audit, pool,
		orchestrator.WithDefaultProvider(cfg.Routing.DefaultProvider),
		orchestrator.WithTokenCounter(tokens.NewCounter()),
		orchestrator.WithLogger(logger),
	)

	srv := server.New(cfg.Server.Port, server.NewHandler(orch, logger), logger)

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := audit.AppendEvent(startupCtx, domain.NewAuditEvent(domain.EventSystem, "controller started")); err != nil {
		logger.Warn("startup audit event failed", slog.String("error", err.Error()))
	}
	startupCancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("controller started",
		slog.Int("port", cfg.Server.Port),
		slog.String("storage", cfg.Storage.Type),
		slog.String("default_provider", cfg.Routing.DefaultProvider),
		slog.Any("providers", gateway.Names()),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	// Drain queued persistence jobs before the stores close.
	pool.Close()

	logger.Info("controller shutdown complete")
}

// openStore builds the configured sinks. The sqlite store serves as both the
// interaction store and the audit log, mirroring a single database file.
func openStore(cfg *config.Config) (storage.InteractionStore, storage.AuditLog, func() error, error) {
	switch cfg.Storage.Type {
	case "memory":
		s := memory.New()
		return s, s, func() error { return nil }, nil
	default:
		path := cfg.Storage.SQLite.Path
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, nil, err
			}
		}
		s, err := sqlite.New(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return s, s, s.Close, nil
	}
}
