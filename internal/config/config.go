// Package config handles global metabase-mcp configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	defaultTimeoutSeconds = 30

	// EnvURL and EnvAPIKey override the corresponding config file values.
	EnvURL    = "MB_URL"
	EnvAPIKey = "MB_API_KEY"
)

// Config represents the global metabase-mcp configuration.
type Config struct {
	// URL is the base URL of the Metabase instance (e.g. "https://bi.example.com").
	URL string `toml:"url"`

	// APIKey authenticates requests to the Metabase API.
	APIKey string `toml:"api_key"`

	// TimeoutSeconds bounds each Metabase API request (default: 30).
	TimeoutSeconds int `toml:"timeout_seconds"`

	// MetadataFetchConcurrency bounds the table metadata fan-out per
	// extraction. Zero means the built-in default.
	MetadataFetchConcurrency int `toml:"metadata_fetch_concurrency"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// UIConfig represents optional CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color for CLI output and markdown rendering.
	// Supported values are ANSI color codes ("0" to "255") or hex colors ("#RRGGBB").
	Accent string `toml:"accent"`

	// CodeTheme sets the Glamour/Chroma theme used for rendered markdown code blocks.
	// Example values: "monokai", "dracula", "github", "nord".
	CodeTheme string `toml:"code_theme"`
}

// Timeout returns the configured request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load loads the configuration from the default location, then applies
// MB_URL / MB_API_KEY environment overrides. Returns a default config if the
// file doesn't exist.
func Load() (*Config, error) {
	configPath := DefaultPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := &Config{}
		applyEnv(cfg)
		return cfg, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from a specific path and applies
// environment overrides.
func LoadFrom(path string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyEnv(&config)
	return &config, nil
}

func applyEnv(c *Config) {
	if url := os.Getenv(EnvURL); url != "" {
		c.URL = url
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		c.APIKey = key
	}
}

// DefaultPath returns the default config file path.
// Checks ~/.config/metabase-mcp/config.toml first (XDG style),
// then falls back to OS-specific location.
func DefaultPath() string {
	// Prefer XDG-style ~/.config/metabase-mcp/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		xdgPath := filepath.Join(home, ".config", "metabase-mcp", "config.toml")
		if _, err := os.Stat(xdgPath); err == nil {
			return xdgPath
		}
	}

	// Fall back to XDG config dir or OS-specific location
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "metabase-mcp", "config.toml")
	}

	// Last resort fallback
	return filepath.Join(".", "config.toml")
}

// CreateDefault creates a default config file at the default path if it
// doesn't exist.
func CreateDefault() (string, error) {
	return CreateDefaultAt(DefaultPath())
}

// CreateDefaultAt creates a default config file at the given path if it
// doesn't exist.
func CreateDefaultAt(configPath string) (string, error) {
	if _, err := os.Stat(configPath); err == nil {
		return configPath, nil // Already exists
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := `# metabase-mcp configuration

# Base URL of your Metabase instance.
# url = "https://bi.example.com"

# API key for the Metabase API (Settings -> Authentication -> API keys).
# Can also be set via the MB_API_KEY environment variable.
# api_key = "mb_..."

# Request timeout in seconds (default: 30).
# timeout_seconds = 30

# How many table metadata requests to run in parallel per dashboard (default: 4).
# metadata_fetch_concurrency = 4

# Optional UI accent color for headers/links in terminal output.
# Supports ANSI color codes (0-255) or hex (#RRGGBB).
# [ui]
# accent = "39"
# code_theme = "monokai"
`

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0644); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return configPath, nil
}
