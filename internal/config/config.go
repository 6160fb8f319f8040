// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

// Package config loads and validates service configuration from
// layered sources: built-in defaults, an optional YAML file, and
// environment variables, in increasing precedence.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Session   SessionConfig   `koanf:"session"`
	Extractor ExtractorConfig `koanf:"extractor"`
	Security  SecurityConfig  `koanf:"security"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // "json" or "console"
	Caller bool   `koanf:"caller"`
}

// CatalogConfig locates the movie feed.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// RecommendConfig tunes the recommendation engine.
type RecommendConfig struct {
	DefaultResults int   `koanf:"default_results"`
	MaxResults     int   `koanf:"max_results"`
	ShuffleTies    bool  `koanf:"shuffle_ties"`
	Seed           int64 `koanf:"seed"`
}

// SessionConfig selects and tunes the session memory backend.
type SessionConfig struct {
	Backend string        `koanf:"backend"` // "memory" or "badger"
	Path    string        `koanf:"path"`    // badger directory
	TTL     time.Duration `koanf:"ttl"`
}

// ExtractorConfig configures the preference extraction client.
type ExtractorConfig struct {
	URL           string        `koanf:"url"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	Burst         int           `koanf:"burst"`
}

// SecurityConfig holds the outer-surface protections.
type SecurityConfig struct {
	RateLimitPerMinute int      `koanf:"rate_limit_per_minute"`
	CORSOrigins        []string `koanf:"cors_origins"`
}

// defaultConfig returns the built-in defaults, applied before the
// config file and environment layers.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			Path: "data/movies.csv",
		},
		Recommend: RecommendConfig{
			DefaultResults: 5,
			MaxResults:     20,
			ShuffleTies:    true,
			Seed:           0, // time-based unless pinned
		},
		Session: SessionConfig{
			Backend: "memory",
			Path:    "data/sessions",
			TTL:     2 * time.Hour,
		},
		Extractor: ExtractorConfig{
			URL:           "",
			Timeout:       5 * time.Second,
			RatePerSecond: 10,
			Burst:         5,
		},
		Security: SecurityConfig{
			RateLimitPerMinute: 120,
			CORSOrigins:        []string{"*"},
		},
	}
}

// Validate checks the configuration for values the service cannot
// start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path must be set")
	}
	if c.Recommend.DefaultResults < 1 {
		return fmt.Errorf("recommend.default_results must be at least 1")
	}
	if c.Recommend.MaxResults < c.Recommend.DefaultResults {
		return fmt.Errorf("recommend.max_results %d below default_results %d",
			c.Recommend.MaxResults, c.Recommend.DefaultResults)
	}
	switch c.Session.Backend {
	case "memory":
	case "badger":
		if c.Session.Path == "" {
			return fmt.Errorf("session.path must be set for the badger backend")
		}
	default:
		return fmt.Errorf("session.backend %q unknown (memory, badger)", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Extractor.RatePerSecond < 0 {
		return fmt.Errorf("extractor.rate_per_second must not be negative")
	}
	if c.Security.RateLimitPerMinute < 0 {
		return fmt.Errorf("security.rate_limit_per_minute must not be negative")
	}
	return nil
}
