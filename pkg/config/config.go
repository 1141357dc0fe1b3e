/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/cccc/pkg/cccc"
	"github.com/ssargent/cccc/pkg/codec"
	"github.com/ssargent/cccc/pkg/logging"
)

// Config represents the cccc tool configuration
type Config struct {
	ByteOrder   string  `yaml:"byte_order"`
	ChunkSize   int     `yaml:"chunk_size"`
	BufferSize  int     `yaml:"buffer_size"`
	AtomicWrite bool    `yaml:"atomic_write"`
	IndexDir    string  `yaml:"index_dir"`
	Logging     Logging `yaml:"logging"`
	Metrics     Metrics `yaml:"metrics"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics configures the Prometheus textfile written when a command exits.
type Metrics struct {
	File string `yaml:"file"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		ByteOrder:   "little",
		ChunkSize:   codec.DefaultChunkSize,
		BufferSize:  64 * 1024,
		AtomicWrite: true,
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from the specified path. Fields missing from
// the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Newf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, errors.Wrap(err, "invalid config path")
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", configPath)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}

	return nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := c.Order(); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return errors.Newf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.BufferSize < 0 {
		return errors.Newf("buffer_size must not be negative, got %d", c.BufferSize)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return errors.Newf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// Order returns the configured binary byte order.
func (c *Config) Order() (binary.ByteOrder, error) {
	switch strings.ToLower(c.ByteOrder) {
	case "", "little", "little-endian":
		return binary.LittleEndian, nil
	case "big", "big-endian":
		return binary.BigEndian, nil
	default:
		return nil, errors.WithHint(
			errors.Newf("unknown byte_order %q", c.ByteOrder),
			"use little or big",
		)
	}
}

// FileOptions translates the configuration into file session options.
func (c *Config) FileOptions() ([]cccc.Option, error) {
	order, err := c.Order()
	if err != nil {
		return nil, err
	}
	return []cccc.Option{
		cccc.WithByteOrder(order),
		cccc.WithChunkSize(c.ChunkSize),
		cccc.WithBufferSize(c.BufferSize),
		cccc.WithAtomicWrite(c.AtomicWrite),
	}, nil
}

// LoggingConfig returns the logging settings for logging.Init.
func (c *Config) LoggingConfig() logging.Config {
	cfg := logging.DefaultConfig()
	if c.Logging.Level != "" {
		cfg.Level = c.Logging.Level
	}
	if c.Logging.Format != "" {
		cfg.Format = c.Logging.Format
	}
	return cfg
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./cccc.yaml"
	}

	configDir := filepath.Join(homeDir, ".config", "cccc")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
