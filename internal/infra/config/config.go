// Package config loads the CLI configuration from a YAML file with
// SEMANTEST_* environment overrides.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/semantest/go.client/internal/infra/logger"
	"github.com/semantest/go.client/internal/infra/tracer"
	"github.com/semantest/go.client/pkg/client"
)

// envPrefix is the prefix for environment overrides, e.g.
// SEMANTEST_BASE_URL or SEMANTEST_LOG_LEVEL.
const envPrefix = "semantest"

// Config is the top-level CLI configuration.
type Config struct {
	Client    client.Config   `yaml:"client"`
	Extension ExtensionConfig `yaml:"extension"`
	Logger    logger.Config   `yaml:"logger"`
	Tracer    tracer.Config   `yaml:"tracer"`
	Journal   JournalConfig   `yaml:"journal"`
	Stream    StreamConfig    `yaml:"stream"`
}

// ExtensionConfig addresses the browser extension instance and tab that
// dispatched events target.
type ExtensionConfig struct {
	ID    string `yaml:"id" envconfig:"EXTENSION_ID"`
	TabID int    `yaml:"tab_id" envconfig:"TAB_ID"`
}

// JournalConfig controls the local dispatch journal.
type JournalConfig struct {
	Enabled bool   `yaml:"enabled" envconfig:"JOURNAL_ENABLED"`
	Path    string `yaml:"path" envconfig:"JOURNAL_PATH"`
}

// StreamConfig controls the WebSocket response stream. When the URL is empty
// the client falls back to the stub waiter.
type StreamConfig struct {
	URL string `yaml:"url" envconfig:"STREAM_URL"`
}

// Defaults returns the baseline configuration.
func Defaults() *Config {
	return &Config{
		Client: client.Config{
			BaseURL: "http://localhost:8080",
			Timeout: client.DefaultTimeoutSeconds,
			Retries: client.DefaultRetries,
		},
		Logger: logger.Config{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Journal: JournalConfig{
			Path: "semantest-journal.db",
		},
	}
}

// Load reads the YAML file at path, then applies environment overrides. A
// missing file is not an error; defaults plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// fall through to env overrides
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the client cannot run with.
func Validate(cfg *Config) error {
	if cfg.Client.BaseURL == "" {
		return fmt.Errorf("client.base_url is required")
	}
	if cfg.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must not be negative")
	}
	if cfg.Client.Retries < 0 {
		return fmt.Errorf("client.retries must not be negative")
	}
	if cfg.Journal.Enabled && cfg.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}
	return nil
}
