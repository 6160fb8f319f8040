// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the chi router with its middleware stack and
// routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(requestLogger)
	r.Use(corsHandler(s.cfg.Security.CORSOrigins))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(s.cfg.Security.RateLimitPerMinute))

		r.Post("/recommendations", s.handleRecommend)
		r.Get("/recommendations/similar/{title}", s.handleSimilar)

		r.Get("/catalog/movies/{title}", s.handleMovie)
		r.Post("/catalog/reload", s.handleReload)

		r.Delete("/sessions/{id}", s.handleClearSession)
	})

	return r
}
