// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Session.Backend != "memory" {
		t.Errorf("Session.Backend = %q, want memory", cfg.Session.Backend)
	}
	if cfg.Recommend.DefaultResults != 5 || cfg.Recommend.MaxResults != 20 {
		t.Errorf("Recommend defaults = %d/%d, want 5/20",
			cfg.Recommend.DefaultResults, cfg.Recommend.MaxResults)
	}
}

func TestLoadYAMLFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
catalog:
  path: /tmp/movies.csv
recommend:
  default_results: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000 from file", cfg.Server.Port)
	}
	if cfg.Catalog.Path != "/tmp/movies.csv" {
		t.Errorf("Catalog.Path = %q, want file value", cfg.Catalog.Path)
	}
	if cfg.Recommend.DefaultResults != 3 {
		t.Errorf("Recommend.DefaultResults = %d, want 3 from file", cfg.Recommend.DefaultResults)
	}
	// Untouched values keep their defaults.
	if cfg.Recommend.MaxResults != 20 {
		t.Errorf("Recommend.MaxResults = %d, want default 20", cfg.Recommend.MaxResults)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100 from env", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug from env", cfg.Logging.Level)
	}
	if cfg.Session.TTL != 30*time.Minute {
		t.Errorf("Session.TTL = %v, want 30m from env", cfg.Session.TTL)
	}
}

func TestLoadCORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Security.CORSOrigins) != 2 ||
		cfg.Security.CORSOrigins[0] != "https://a.example" ||
		cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
}

func TestEnvTransformDropsUnknownVariables(t *testing.T) {
	if got := envTransform("PATH"); got != "" {
		t.Errorf("envTransform(PATH) = %q, want empty", got)
	}
	if got := envTransform("SERVER_PORT"); got != "server.port" {
		t.Errorf("envTransform(SERVER_PORT) = %q, want server.port", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"missing catalog path", func(c *Config) { c.Catalog.Path = "" }, "catalog.path"},
		{"zero default results", func(c *Config) { c.Recommend.DefaultResults = 0 }, "default_results"},
		{"max below default", func(c *Config) { c.Recommend.MaxResults = 2 }, "max_results"},
		{"unknown session backend", func(c *Config) { c.Session.Backend = "redis" }, "session.backend"},
		{"badger without path", func(c *Config) { c.Session.Backend = "badger"; c.Session.Path = "" }, "session.path"},
		{"negative session ttl", func(c *Config) { c.Session.TTL = -time.Minute }, "session.ttl"},
		{"negative extractor rate", func(c *Config) { c.Extractor.RatePerSecond = -1 }, "rate_per_second"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
