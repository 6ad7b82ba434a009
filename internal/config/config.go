// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for pwchange.
//
// Configuration file location:
//   - ~/.pwchange/config.toml (optional)
//   - Built-in defaults
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete pwchange configuration.
type Config struct {
	// Auth API configuration
	Auth AuthConfig `toml:"auth"`

	// UI configuration
	UI UIConfig `toml:"ui"`

	// Logging configuration
	Log LogConfig `toml:"log"`
}

// AuthConfig describes how to reach the auth API.
type AuthConfig struct {
	// BaseURL is the root of the auth API (e.g. "https://api.example.com")
	BaseURL string `toml:"base_url"`
	// Token is the bearer token of the signed-in user
	Token string `toml:"token"`
	// ChangePasswordPath is appended to BaseURL for the change-password call
	ChangePasswordPath string `toml:"change_password_path"`
	// TimeoutSecs bounds a single request, including reading the response
	TimeoutSecs int `toml:"timeout_secs"`
	// MinIntervalMs is the minimum spacing between two change-password calls
	MinIntervalMs int `toml:"min_interval_ms"`
}

// Timeout returns TimeoutSecs as a duration.
func (a AuthConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSecs) * time.Second
}

// MinInterval returns MinIntervalMs as a duration.
func (a AuthConfig) MinInterval() time.Duration {
	return time.Duration(a.MinIntervalMs) * time.Millisecond
}

// UIConfig contains dialog behavior settings.
type UIConfig struct {
	// ValidateOnChange re-validates on every keystroke instead of only
	// after the first submit
	ValidateOnChange bool `toml:"validate_on_change"`
	// Prefill seeds both fields with a sample password (demos only)
	Prefill bool `toml:"prefill"`
	// ASCIISpinner uses an ASCII spinner instead of braille dots
	ASCIISpinner bool `toml:"ascii_spinner"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is a zerolog level name: debug, info, warn, error
	Level string `toml:"level"`
	// Format is "console" or "json"
	Format string `toml:"format"`
	// File is where logs are written; the TUI owns stdout
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultChangePasswordPath is the endpoint used when none is configured.
const DefaultChangePasswordPath = "/auth/change-password"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Auth: AuthConfig{
			BaseURL:            "http://127.0.0.1:8080",
			ChangePasswordPath: DefaultChangePasswordPath,
			TimeoutSecs:        30,
			MinIntervalMs:      1000,
		},
		UI: UIConfig{
			ValidateOnChange: false,
			Prefill:          false,
			ASCIISpinner:     false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the pwchange configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".pwchange"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultLogPath returns the log file used when log.file is empty.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pwchange.log"), nil
}

// ensureSecurePermissions tightens the config file to 0600.
// SECURITY: The file may hold a bearer token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads ~/.pwchange/config.toml if it exists, otherwise the defaults.
// Environment overrides are applied last. The result is not validated;
// callers apply their own overrides and then call Validate.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err == nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	return cfg, nil
}

// LoadFromPath loads configuration from a specific TOML file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if err := ensureSecurePermissions(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		// Permissions might not be fixable on all systems
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	return cfg, nil
}

// SetDefaults fills zero values left by a partial config file.
func (c *Config) SetDefaults() {
	d := Default()
	if c.Auth.ChangePasswordPath == "" {
		c.Auth.ChangePasswordPath = d.Auth.ChangePasswordPath
	}
	if c.Auth.TimeoutSecs == 0 {
		c.Auth.TimeoutSecs = d.Auth.TimeoutSecs
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if !strings.HasPrefix(c.Auth.ChangePasswordPath, "/") {
		c.Auth.ChangePasswordPath = "/" + c.Auth.ChangePasswordPath
	}
	c.Auth.BaseURL = strings.TrimSuffix(c.Auth.BaseURL, "/")
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - PWCHANGE_API_URL: overrides auth.base_url
//   - PWCHANGE_TOKEN: overrides auth.token
//   - PWCHANGE_LOG_LEVEL: overrides log.level
//   - PWCHANGE_LOG_FORMAT: overrides log.format
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PWCHANGE_API_URL"); v != "" {
		c.Auth.BaseURL = v
	}
	if v := os.Getenv("PWCHANGE_TOKEN"); v != "" {
		c.Auth.Token = v
	}
	if v := os.Getenv("PWCHANGE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("PWCHANGE_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Auth.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "auth.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Auth.BaseURL),
		})
	}

	if c.Auth.TimeoutSecs < 0 || c.Auth.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "auth.timeout_secs",
			Message: fmt.Sprintf("must be between 0 and 300, got %d", c.Auth.TimeoutSecs),
		})
	}

	if c.Auth.MinIntervalMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "auth.min_interval_ms",
			Message: fmt.Sprintf("must not be negative, got %d", c.Auth.MinIntervalMs),
		})
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "disabled": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: trace, debug, info, warn, error, disabled", c.Log.Level),
		})
	}

	validFormats := map[string]bool{"console": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: console, json", c.Log.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
