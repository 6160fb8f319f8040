// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

// Package main is the entry point for the MovieBuddy server application.
//
// MovieBuddy is a self-hosted movie recommendation service. It loads a
// movie catalog from a CSV feed, builds a TF-IDF content-similarity
// index over it, and serves preference-aware recommendations over a
// REST API with session memory so repeat callers are not shown the
// same titles twice.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Catalog: Parse the CSV feed into the in-memory movie store
//  3. Similarity: Build the TF-IDF cosine-similarity index
//  4. Engine: Wire the scorer, diversity selector, and fallback ladder
//  5. Sessions: Open the session memory backend (in-memory or BadgerDB)
//  6. Extractor: Configure the optional preference extraction client
//  7. HTTP Server: REST API under /api/v1 plus /healthz and /metrics
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables (SERVER_PORT, CATALOG_PATH, SESSION_BACKEND, ...)
//   - Config file (config.yaml, or the path in CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: in-flight
// requests are drained for up to server.shutdown_timeout before the
// process exits.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/moviebuddy/internal/api"
	"github.com/tomtom215/moviebuddy/internal/catalog"
	"github.com/tomtom215/moviebuddy/internal/config"
	"github.com/tomtom215/moviebuddy/internal/extractor"
	"github.com/tomtom215/moviebuddy/internal/logging"
	"github.com/tomtom215/moviebuddy/internal/metrics"
	"github.com/tomtom215/moviebuddy/internal/recommend"
	"github.com/tomtom215/moviebuddy/internal/session"
	"github.com/tomtom215/moviebuddy/internal/similarity"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("catalog", cfg.Catalog.Path).
		Str("session_backend", cfg.Session.Backend).
		Bool("extractor_enabled", cfg.Extractor.URL != "").
		Msg("Starting MovieBuddy server")

	// A missing or malformed feed is a deployment problem, not a
	// runtime condition the server can limp through.
	store, err := catalog.LoadFile(cfg.Catalog.Path, logging.Logger())
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load movie catalog")
	}

	index := similarity.Build(store.Movies(), logging.Logger())
	if index.Degenerate() {
		logging.Warn().Msg("Similarity index is degenerate, similarity scores default to identity")
	}

	engine := recommend.NewEngine(store, index, recommend.Options{
		DefaultK:    cfg.Recommend.DefaultResults,
		MaxK:        cfg.Recommend.MaxResults,
		ShuffleTies: cfg.Recommend.ShuffleTies,
		Seed:        cfg.Recommend.Seed,
	})

	metrics.CatalogSize.Set(float64(store.Len()))
	metrics.CatalogVersion.Set(float64(engine.Snapshot().Version))
	metrics.SimilarityBuildDuration.Observe(index.BuildDuration().Seconds())

	sessions, err := newSessionStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("backend", cfg.Session.Backend).Msg("Failed to open session store")
	}
	defer func() {
		if cerr := sessions.Close(); cerr != nil {
			logging.Warn().Err(cerr).Msg("Failed to close session store")
		}
	}()

	ex := extractor.NewClient(extractor.Config{
		URL:           cfg.Extractor.URL,
		Timeout:       cfg.Extractor.Timeout,
		RatePerSecond: cfg.Extractor.RatePerSecond,
		Burst:         cfg.Extractor.Burst,
	})
	if !ex.Enabled() {
		logging.Info().Msg("Preference extractor disabled, requests rely on structured preferences")
	}

	srv := api.NewServer(cfg, engine, sessions, ex)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", httpServer.Addr).Msg("HTTP server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server error")
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
		os.Exit(1)
	}

	logging.Info().Msg("Application stopped gracefully")
}

// newSessionStore opens the backend named in the configuration.
func newSessionStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Backend {
	case "badger":
		return session.NewBadgerStore(cfg.Session.Path, cfg.Session.TTL)
	default:
		return session.NewMemoryStore(cfg.Session.TTL), nil
	}
}
