package config

import (
	"fmt"
	"time"

	"github.com/Sri-Rahul/linkanalysis/internal/shortener"
)

// Cache backend identifiers
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Recorder  RecorderConfig
	Logging   LoggingConfig
	Allocator shortener.Config
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port      string
	ServerURL string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string
}

// CacheConfig holds link-cache configuration
type CacheConfig struct {
	Backend  string
	RedisURL string
	TTL      time.Duration
}

// RecorderConfig holds visit-event recorder configuration
type RecorderConfig struct {
	QueueSize int
	Workers   int
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Verbose bool
}

// New creates a new config with the given parameters
func New(server ServerConfig, database DatabaseConfig, cacheCfg CacheConfig, recorder RecorderConfig, logging LoggingConfig, allocator shortener.Config) (*Config, error) {
	cfg := &Config{
		Server:    server,
		Database:  database,
		Cache:     cacheCfg,
		Recorder:  recorder,
		Logging:   logging,
		Allocator: allocator,
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate validates the configuration values
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Server.ServerURL == "" {
		return fmt.Errorf("server URL cannot be empty")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("redis URL cannot be empty for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend: %q", c.Cache.Backend)
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got: %v", c.Cache.TTL)
	}

	if c.Recorder.QueueSize <= 0 {
		return fmt.Errorf("recorder queue size must be positive, got: %d", c.Recorder.QueueSize)
	}

	if c.Recorder.Workers <= 0 {
		return fmt.Errorf("recorder workers must be positive, got: %d", c.Recorder.Workers)
	}

	if c.Allocator.CodeLength <= 0 {
		return fmt.Errorf("allocator code length must be positive, got: %d", c.Allocator.CodeLength)
	}

	if c.Allocator.MaxAttempts <= 0 {
		return fmt.Errorf("allocator max attempts must be positive, got: %d", c.Allocator.MaxAttempts)
	}

	return nil
}
