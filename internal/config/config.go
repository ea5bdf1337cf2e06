// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	DBPath      string // empty = in-memory store (nothing survives restart)
	FrontendURL string
	Anthropic   AnthropicConfig
}

// AnthropicConfig controls the completion relay.
type AnthropicConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	maxTokens := getEnvInt("ANTHROPIC_MAX_TOKENS", 1024)

	cfg := &Config{
		Port:        getEnv("PORT", "4000"),
		DBPath:      getEnv("DB_PATH", "./data/charchat.db"),
		FrontendURL: getEnv("FRONTEND_URL", ""),
		Anthropic: AnthropicConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:   getEnv("ANTHROPIC_BASE_URL", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307"),
			MaxTokens: maxTokens,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Anthropic.Model == "" {
		return fmt.Errorf("ANTHROPIC_MODEL cannot be empty")
	}
	if c.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("ANTHROPIC_MAX_TOKENS must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
