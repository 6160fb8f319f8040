// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

// Package metrics exposes Prometheus collectors for the service:
// API latency and throughput, recommendation pipeline behavior,
// catalog state, and the preference-extractor circuit breaker.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics.
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moviebuddy_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebuddy_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Recommendation pipeline metrics.
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebuddy_recommendations_total",
			Help: "Total recommendation requests by the deepest tier that produced results",
		},
		[]string{"tier"}, // "primary", "genre_fallback", "quality_fallback"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviebuddy_recommendation_duration_seconds",
			Help:    "Duration of the scoring and selection pipeline in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviebuddy_recommendation_results",
			Help:    "Number of movies returned per recommendation request",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 20},
		},
	)

	// Catalog metrics.
	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebuddy_catalog_movies",
			Help: "Number of movies in the active catalog snapshot",
		},
	)

	CatalogVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebuddy_catalog_version",
			Help: "Version counter of the active catalog snapshot",
		},
	)

	SimilarityBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "moviebuddy_similarity_build_duration_seconds",
			Help:    "Duration of similarity index builds in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		},
	)

	// Preference extractor metrics.
	ExtractorRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moviebuddy_extractor_requests_total",
			Help: "Total preference extractor calls by outcome",
		},
		[]string{"outcome"}, // "success", "error", "breaker_open", "rate_limited"
	)

	ExtractorBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebuddy_extractor_breaker_state",
			Help: "Extractor circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Session metrics.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "moviebuddy_sessions_active",
			Help: "Number of live conversation sessions",
		},
	)
)

// ObserveAPIRequest records one handled API request.
func ObserveAPIRequest(endpoint, method string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	APIRequestDuration.WithLabelValues(endpoint, method, code).Observe(duration.Seconds())
	APIRequestsTotal.WithLabelValues(endpoint, method, code).Inc()
}

// ObserveRecommendation records one pipeline run.
func ObserveRecommendation(tier string, results int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(tier).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	RecommendationResults.Observe(float64(results))
}
