// Package config provides configuration loading and validation for the
// interview simulator.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the application configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must be
// provided via CLI flags and environment variables.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`         // HTTP listen port
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key

	// Agent calls
	AgentTimeoutSeconds int `json:"agent_timeout_seconds,omitempty"` // Per-call deadline before fallback engages
	AgentRetryDelayMS   int `json:"agent_retry_delay_ms,omitempty"`  // Backoff before the single retry

	// Interview behavior
	MaxFollowUps      int     `json:"max_follow_ups,omitempty"`      // Follow-up cap per round
	FollowUpThreshold float64 `json:"follow_up_threshold,omitempty"` // Score below this triggers a follow-up
	ExcludeSkipped    bool    `json:"exclude_skipped,omitempty"`     // Drop skipped rounds from the weighted score
	RoundsFile        string  `json:"rounds_file,omitempty"`         // Path to the YAML rounds file

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// Default values applied where the config file and flags are silent.
const (
	DefaultPort                = 8080
	DefaultAgentTimeoutSeconds = 30
	DefaultAgentRetryDelayMS   = 500
	DefaultMaxFollowUps        = 1
	DefaultFollowUpThreshold   = 5
)

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be a valid TCP port")
	}
	if c.AgentTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'agent_timeout_seconds' must be non-negative")
	}
	if c.AgentRetryDelayMS < 0 {
		return fmt.Errorf("config error: 'agent_retry_delay_ms' must be non-negative")
	}
	if c.MaxFollowUps < 0 {
		return fmt.Errorf("config error: 'max_follow_ups' must be non-negative")
	}
	if c.FollowUpThreshold < 0 || c.FollowUpThreshold > 10 {
		return fmt.Errorf("config error: 'follow_up_threshold' must be within 0-10")
	}
	if c.RoundsFile != "" {
		if _, err := os.Stat(c.RoundsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: rounds file not found: %s", c.RoundsFile)
		}
	}
	return nil
}

// ApplyDefaults fills zero-valued fields with the package defaults.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.AgentTimeoutSeconds == 0 {
		c.AgentTimeoutSeconds = DefaultAgentTimeoutSeconds
	}
	if c.AgentRetryDelayMS == 0 {
		c.AgentRetryDelayMS = DefaultAgentRetryDelayMS
	}
	if c.MaxFollowUps == 0 {
		c.MaxFollowUps = DefaultMaxFollowUps
	}
	if c.FollowUpThreshold == 0 {
		c.FollowUpThreshold = DefaultFollowUpThreshold
	}
}

// AgentTimeout returns the per-call deadline as a duration.
func (c *Config) AgentTimeout() time.Duration {
	return time.Duration(c.AgentTimeoutSeconds) * time.Second
}

// AgentRetryDelay returns the retry backoff as a duration.
func (c *Config) AgentRetryDelay() time.Duration {
	return time.Duration(c.AgentRetryDelayMS) * time.Millisecond
}
