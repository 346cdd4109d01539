// Package config loads the engine configuration. Files may be YAML or
// JSON. A config that fails validation aborts the process before any
// work starts; from there on failures are handled per entity.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete engine configuration.
type Config struct {
	Store      StoreConfig      `json:"store" yaml:"store"`
	MarketData MarketDataConfig `json:"market_data" yaml:"market_data"`
	Terminal   TerminalConfig   `json:"terminal" yaml:"terminal"`
	Engine     EngineConfig     `json:"engine" yaml:"engine"`
}

// StoreConfig locates the SQLite metrics store.
type StoreConfig struct {
	Path string `json:"path" yaml:"path"`
}

// MarketDataConfig contains the daily-bars API connection parameters.
type MarketDataConfig struct {
	BaseURL   string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	KeyID     string `json:"key_id" yaml:"key_id"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
}

// TerminalConfig contains the trading-terminal connection parameters
// for the deal-history path. The section is optional; when disabled,
// only holdings-based strategies are updated.
type TerminalConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	BridgeURL string `json:"bridge_url,omitempty" yaml:"bridge_url,omitempty"`
	Server    string `json:"server,omitempty" yaml:"server,omitempty"`
	Login     int64  `json:"login,omitempty" yaml:"login,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`
}

// EngineConfig contains scheduling parameters.
type EngineConfig struct {
	Interval     string `json:"interval" yaml:"interval"`
	LookbackDays int    `json:"lookback_days" yaml:"lookback_days"`
}

// ParseInterval converts the interval string to time.Duration.
func (e EngineConfig) ParseInterval() (time.Duration, error) {
	if e.Interval == "" {
		return 0, nil
	}
	return time.ParseDuration(e.Interval)
}

// LoadFromFile loads configuration from a file (JSON or YAML)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine format by extension
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return fmt.Errorf("store.path is required")
	}
	if c.MarketData.KeyID == "" {
		return fmt.Errorf("market_data.key_id is required")
	}
	if c.MarketData.SecretKey == "" {
		return fmt.Errorf("market_data.secret_key is required")
	}
	if _, err := c.Engine.ParseInterval(); err != nil {
		return fmt.Errorf("engine.interval: %w", err)
	}
	if c.Engine.LookbackDays < 0 {
		return fmt.Errorf("engine.lookback_days must not be negative")
	}
	if c.Terminal.Enabled {
		if c.Terminal.BridgeURL == "" {
			return fmt.Errorf("terminal.bridge_url required when terminal is enabled")
		}
		if c.Terminal.Server == "" {
			return fmt.Errorf("terminal.server required when terminal is enabled")
		}
		if c.Terminal.Login == 0 {
			return fmt.Errorf("terminal.login required when terminal is enabled")
		}
		if c.Terminal.Password == "" {
			return fmt.Errorf("terminal.password required when terminal is enabled")
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults. API keys
// have no default and must come from the file or flags.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "./algohive.db",
		},
		Engine: EngineConfig{
			Interval:     "20m",
			LookbackDays: 3 * 365,
		},
	}
}
