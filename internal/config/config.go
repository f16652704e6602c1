// Package config provides configuration loading and management for
// xray-edge-tools. It handles loading configuration from YAML files and
// provides default values for every pipeline constant.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/xray-edge-tools/internal/pipeline"
)

// Transport names accepted in Server.Transport.
const (
	TransportMCP  = "mcp"
	TransportHTTP = "http"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Pipeline holds every algorithm constant.
	Pipeline pipeline.Params `yaml:"pipeline"`

	// Server parameters
	Server struct {
		// Transport is "mcp" (JSON-RPC over stdio) or "http".
		Transport string `yaml:"transport"`

		// Addr is the HTTP listen address.
		Addr string `yaml:"addr"`

		// MaxUploadBytes bounds a single upload (image or ZIP).
		MaxUploadBytes int64 `yaml:"maxUploadBytes"`
	} `yaml:"server"`

	// Batch parameters
	Batch struct {
		// Workers is the number of images processed concurrently.
		Workers int `yaml:"workers"`

		// MaxEntries bounds the number of images taken from one archive;
		// 0 takes all.
		MaxEntries int `yaml:"maxEntries"`
	} `yaml:"batch"`

	// Store parameters
	Store struct {
		// Capacity is the number of processed images kept; 0 keeps all.
		Capacity int `yaml:"capacity"`
	} `yaml:"store"`

	// Logging parameters
	Logging struct {
		// Level is a logrus level name: debug, info, warn, error.
		Level string `yaml:"level"`

		// Format is "text" or "json".
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Pipeline = pipeline.DefaultParams()

	cfg.Server.Transport = TransportMCP
	cfg.Server.Addr = ":8000"
	cfg.Server.MaxUploadBytes = 64 << 20

	cfg.Batch.Workers = runtime.NumCPU() // Use all available cores by default
	cfg.Batch.MaxEntries = 500

	cfg.Store.Capacity = 1000

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	return cfg
}

// Validate checks the configuration for values the program cannot run with.
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	switch c.Server.Transport {
	case TransportMCP, TransportHTTP:
	default:
		return fmt.Errorf("server: unknown transport %q", c.Server.Transport)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server: maxUploadBytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("batch: workers must be at least 1, got %d", c.Batch.Workers)
	}
	if c.Batch.MaxEntries < 0 {
		return fmt.Errorf("batch: maxEntries must be non-negative, got %d", c.Batch.MaxEntries)
	}
	if c.Store.Capacity < 0 {
		return fmt.Errorf("store: capacity must be non-negative, got %d", c.Store.Capacity)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}
