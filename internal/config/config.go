// Package config loads the controller configuration from an optional
// YAML file overlaid with SNSHADB_-prefixed environment variables. The
// loaded struct is constructed once at process start and injected into
// every component; nothing reads ambient environment state at request
// time.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// SystemName is reported by the liveness endpoint.
const SystemName = "SNSHADB Controller"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Providers  []ProviderConfig `koanf:"providers"`
	Routing    RoutingConfig    `koanf:"routing"`
	Background BackgroundConfig `koanf:"background"`
	// Flat per-provider sections used when no providers list is given.
	Google GoogleConfig `koanf:"google"`
	Azure  AzureConfig  `koanf:"azure"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type StorageConfig struct {
	// Type selects the sink implementation: sqlite or memory.
	Type   string       `koanf:"type"`
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type ProviderConfig struct {
	Name       string `koanf:"name"`
	Type       string `koanf:"type"`
	APIKey     string `koanf:"api_key"`
	BaseURL    string `koanf:"base_url"`
	Model      string `koanf:"model"`
	Deployment string `koanf:"deployment"`
}

type RoutingConfig struct {
	// DefaultProvider is applied when a chat request omits the provider.
	DefaultProvider string `koanf:"default_provider"`
	// ProviderTimeout bounds the synchronous backend call, e.g. "60s".
	ProviderTimeout string `koanf:"provider_timeout"`
}

type BackgroundConfig struct {
	Workers   int `koanf:"workers"`
	QueueSize int `koanf:"queue_size"`
	// JobTimeout bounds each persistence job, e.g. "5s".
	JobTimeout string `koanf:"job_timeout"`
}

type GoogleConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

type AzureConfig struct {
	Endpoint   string `koanf:"endpoint"`
	APIKey     string `koanf:"api_key"`
	Deployment string `koanf:"deployment"`
}

// Load reads configuration from path (skipped when empty or missing) and
// then from the environment, applying defaults for everything not set.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	// Double underscore separates levels so snake_case keys survive:
	// SNSHADB_GOOGLE__API_KEY -> google.api_key.
	if err := k.Load(env.Provider("SNSHADB_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "SNSHADB_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	defaults := map[string]any{
		"server.port":              8000,
		"storage.type":             "sqlite",
		"storage.sqlite.path":      "./data/snshadb.db",
		"routing.default_provider": "google",
		"routing.provider_timeout": "60s",
		"background.workers":       4,
		"background.queue_size":    64,
		"background.job_timeout":   "5s",
		"google.model":             "gemini-2.5-pro",
	}
	for key, val := range defaults {
		if !k.Exists(key) {
			k.Set(key, val)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = defaultProviders(&cfg)
	}

	return &cfg, nil
}

// defaultProviders mirrors the original deployment shape: a Google
// backend plus the Azure slot, built from the flat sections.
func defaultProviders(cfg *Config) []ProviderConfig {
	return []ProviderConfig{
		{
			Name:    "google",
			Type:    "google",
			APIKey:  cfg.Google.APIKey,
			BaseURL: cfg.Google.BaseURL,
			Model:   cfg.Google.Model,
		},
		{
			Name:       "azure",
			Type:       "azure",
			APIKey:     cfg.Azure.APIKey,
			BaseURL:    cfg.Azure.Endpoint,
			Deployment: cfg.Azure.Deployment,
		},
	}
}

// ProviderTimeout returns the parsed synchronous call bound.
func (c *Config) ProviderTimeout() time.Duration {
	return parseDuration(c.Routing.ProviderTimeout, 60*time.Second)
}

// JobTimeout returns the parsed background job bound.
func (c *Config) JobTimeout() time.Duration {
	return parseDuration(c.Background.JobTimeout, 5*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
