package client

import (
	"time"

	"github.com/semantest/go.client/internal/transport"
)

// Configuration defaults.
const (
	DefaultTimeoutSeconds = 30
	DefaultRetries        = 3
	DefaultUserAgent      = transport.DefaultUserAgent
)

// Config is the client configuration surface.
type Config struct {
	BaseURL   string `yaml:"base_url" envconfig:"BASE_URL"`
	APIKey    string `yaml:"api_key" envconfig:"API_KEY"`
	Timeout   int    `yaml:"timeout" envconfig:"TIMEOUT"` // seconds
	Retries   int    `yaml:"retries" envconfig:"RETRIES"`
	UserAgent string `yaml:"user_agent" envconfig:"USER_AGENT"`
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeoutSeconds
	}
	if c.Retries <= 0 {
		c.Retries = DefaultRetries
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

// Update applies the recognized keys from updates and silently ignores
// everything else, mistyped values included. Known keys: base_url, api_key,
// timeout, retries, user_agent.
//
// The silent ignore is deliberate contract, not an oversight; callers that
// need strictness should set fields directly.
func (c *Config) Update(updates map[string]any) {
	for key, value := range updates {
		switch key {
		case "base_url":
			if v, ok := value.(string); ok {
				c.BaseURL = v
			}
		case "api_key":
			if v, ok := value.(string); ok {
				c.APIKey = v
			}
		case "timeout":
			if v, ok := asInt(value); ok {
				c.Timeout = v
			}
		case "retries":
			if v, ok := asInt(value); ok {
				c.Retries = v
			}
		case "user_agent":
			if v, ok := value.(string); ok {
				c.UserAgent = v
			}
		}
	}
}

// asInt accepts int and float64 so JSON-decoded update maps work too.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

func (c Config) transportConfig() transport.Config {
	return transport.Config{
		BaseURL:   c.BaseURL,
		APIKey:    c.APIKey,
		Timeout:   time.Duration(c.Timeout) * time.Second,
		Retries:   c.Retries,
		UserAgent: c.UserAgent,
	}
}
