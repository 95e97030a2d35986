// Package config loads service settings from defaults, an optional YAML
// file named by CONFIG_FILE, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the server settings.
type Config struct {
	Port        string        `yaml:"port"`
	DatabaseURL string        `yaml:"database_url"`
	RedisURL    string        `yaml:"redis_url"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`

	// MaxIterations is the hard spin ceiling of a single run. It also
	// bounds the max_spins a client may request.
	MaxIterations int `yaml:"max_iterations"`

	// FibCacheLimit bounds each run's multiplier table.
	FibCacheLimit int `yaml:"fib_cache_limit"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:            "8080",
		CacheTTL:        5 * time.Minute,
		MaxIterations:   100_000,
		FibCacheLimit:   256,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Load builds the configuration from defaults, the CONFIG_FILE YAML file
// if set, and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}
	if v := os.Getenv("MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: MAX_ITERATIONS: %w", err)
		}
		c.MaxIterations = n
	}
	if v := os.Getenv("FIB_CACHE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: FIB_CACHE_LIMIT: %w", err)
		}
		c.FibCacheLimit = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: port must not be empty")
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("config: max_iterations must be >= 1, got %d", c.MaxIterations)
	}
	if c.FibCacheLimit < 3 {
		return fmt.Errorf("config: fib_cache_limit must be >= 3, got %d", c.FibCacheLimit)
	}
	return nil
}
