// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

// Package extractor calls the external preference extraction service
// that turns free text (and a detected emotion) into a structured
// PreferencePacket. The call path is protected by a circuit breaker
// and an outbound rate limiter; every failure mode degrades to the
// preferences the request already carried, never to an error.
package extractor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/moviebuddy/internal/logging"
	"github.com/tomtom215/moviebuddy/internal/metrics"
	"github.com/tomtom215/moviebuddy/internal/recommend"
)

// Config configures the extractor client.
type Config struct {
	// URL of the extraction endpoint. Empty disables remote
	// extraction entirely; Extract then just returns the carried
	// preferences.
	URL string
	// Timeout per extraction call.
	Timeout time.Duration
	// RatePerSecond caps outbound calls; zero means no limit.
	RatePerSecond float64
	// Burst is the limiter burst size.
	Burst int
}

// Client is the preference extraction client. Safe for concurrent
// use.
type Client struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*recommend.PreferencePacket]
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// extractRequest is the wire request to the extraction service.
type extractRequest struct {
	Text string `json:"text"`
}

// NewClient builds an extractor client. The breaker opens after a 60%
// failure rate over at least 10 calls and retries after 30 seconds.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	logger := logging.With().Str("component", "extractor").Logger()

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	breaker := gobreaker.NewCircuitBreaker[*recommend.PreferencePacket](gobreaker.Settings{
		Name:        "preference-extractor",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Extractor circuit breaker state change")
			metrics.ExtractorBreakerState.Set(breakerStateValue(to))
		},
	})

	return &Client{
		url:     cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		limiter: limiter,
		logger:  logger,
	}
}

// Enabled reports whether remote extraction is configured.
func (c *Client) Enabled() bool { return c.url != "" }

// Extract turns free text into a PreferencePacket, merged over the
// preferences the request already carried. Breaker-open, rate-limit
// and transport failures all degrade to the carried preferences.
func (c *Client) Extract(ctx context.Context, text string, carried recommend.PreferencePacket) recommend.PreferencePacket {
	if c.url == "" || text == "" {
		return carried
	}

	if c.limiter != nil && !c.limiter.Allow() {
		metrics.ExtractorRequestsTotal.WithLabelValues("rate_limited").Inc()
		c.logger.Debug().Msg("Extractor call rate limited, using carried preferences")
		return carried
	}

	extracted, err := c.breaker.Execute(func() (*recommend.PreferencePacket, error) {
		return c.call(ctx, text)
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "breaker_open"
		}
		metrics.ExtractorRequestsTotal.WithLabelValues(outcome).Inc()
		c.logger.Warn().Err(err).Str("outcome", outcome).Msg("Preference extraction failed, using carried preferences")
		return carried
	}

	metrics.ExtractorRequestsTotal.WithLabelValues("success").Inc()
	return merge(extracted, carried)
}

func (c *Client) call(ctx context.Context, text string) (*recommend.PreferencePacket, error) {
	body, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling extractor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("extractor returned status %d", resp.StatusCode)
	}

	var packet recommend.PreferencePacket
	if err := json.NewDecoder(resp.Body).Decode(&packet); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &packet, nil
}

// merge overlays extracted preferences on the carried ones. Extracted
// fields win where present; carried fields fill the gaps.
func merge(extracted *recommend.PreferencePacket, carried recommend.PreferencePacket) recommend.PreferencePacket {
	out := *extracted
	if len(out.Genres) == 0 {
		out.Genres = carried.Genres
	}
	if len(out.ExcludedGenres) == 0 {
		out.ExcludedGenres = carried.ExcludedGenres
	}
	if out.Mood == "" {
		out.Mood = carried.Mood
	}
	if out.Era == "" {
		out.Era = carried.Era
	}
	if len(out.Actors) == 0 {
		out.Actors = carried.Actors
	}
	if len(out.Directors) == 0 {
		out.Directors = carried.Directors
	}
	if out.ReferenceTitle == "" {
		out.ReferenceTitle = carried.ReferenceTitle
	}
	if out.Emotion == "" {
		out.Emotion = carried.Emotion
		out.EmotionConfidence = carried.EmotionConfidence
	}
	return out
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
