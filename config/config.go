// Package config loads connection and logging settings from an optional
// YAML file and GEDIS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. GEDIS_REDIS_URL.
const EnvPrefix = "GEDIS"

// DefaultAddr is where gedis-server listens unless told otherwise, so the
// lessons reach it with no --url.
const DefaultAddr = "127.0.0.1:6379"

const (
	DefaultURL          = "redis://" + DefaultAddr + "/0"
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
)

// Config is the full runtime configuration.
type Config struct {
	Redis Redis `yaml:"redis" envconfig:"REDIS"`
	Log   Log   `yaml:"log" envconfig:"LOG"`
}

// Redis describes the single server connection.
type Redis struct {
	URL          string        `yaml:"url" envconfig:"URL"`
	ClientName   string        `yaml:"client_name" envconfig:"CLIENT_NAME"`
	DialTimeout  time.Duration `yaml:"dial_timeout" envconfig:"DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
}

// Log mirrors logger.Config.
type Log struct {
	Level  string `yaml:"level" envconfig:"LEVEL"`
	Format string `yaml:"format" envconfig:"FORMAT"`
	Output string `yaml:"output" envconfig:"OUTPUT"`
}

// Load reads path (if non-empty), applies environment overrides and fills
// in defaults for anything still unset.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Redis.URL == "" {
		c.Redis.URL = DefaultURL
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = DefaultDialTimeout
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = DefaultReadTimeout
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = DefaultWriteTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate rejects negative timeouts.
func (c *Config) Validate() error {
	if c.Redis.DialTimeout < 0 || c.Redis.ReadTimeout < 0 || c.Redis.WriteTimeout < 0 {
		return errors.New("redis timeouts must not be negative")
	}
	return nil
}
