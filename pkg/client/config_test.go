package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{BaseURL: "http://localhost:8080"}.withDefaults()
	assert.Equal(t, DefaultTimeoutSeconds, cfg.Timeout)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestConfigUpdateAppliesKnownKeys(t *testing.T) {
	cfg := Config{BaseURL: "http://old", APIKey: "old-key"}
	cfg.Update(map[string]any{
		"base_url":   "http://new",
		"api_key":    "new-key",
		"timeout":    60,
		"retries":    5,
		"user_agent": "UA/2",
	})
	assert.Equal(t, "http://new", cfg.BaseURL)
	assert.Equal(t, "new-key", cfg.APIKey)
	assert.Equal(t, 60, cfg.Timeout)
	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, "UA/2", cfg.UserAgent)
}

func TestConfigUpdateIgnoresUnknownKeys(t *testing.T) {
	cfg := Config{BaseURL: "http://old"}
	cfg.Update(map[string]any{
		"unknown":     "value",
		"max_retries": 9,
	})
	assert.Equal(t, "http://old", cfg.BaseURL)
	assert.Equal(t, 0, cfg.Retries)
}

func TestConfigUpdateIgnoresMistypedValues(t *testing.T) {
	cfg := Config{Timeout: 30, UserAgent: "UA/1"}
	cfg.Update(map[string]any{
		"timeout":    "sixty",
		"user_agent": 12,
	})
	assert.Equal(t, 30, cfg.Timeout)
	assert.Equal(t, "UA/1", cfg.UserAgent)
}

func TestConfigUpdateAcceptsJSONNumbers(t *testing.T) {
	cfg := Config{}
	cfg.Update(map[string]any{"timeout": float64(45), "retries": float64(2)})
	assert.Equal(t, 45, cfg.Timeout)
	assert.Equal(t, 2, cfg.Retries)
}
