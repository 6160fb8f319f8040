// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebuddy/internal/catalog"
	"github.com/tomtom215/moviebuddy/internal/config"
	"github.com/tomtom215/moviebuddy/internal/extractor"
	"github.com/tomtom215/moviebuddy/internal/logging"
	"github.com/tomtom215/moviebuddy/internal/metrics"
	"github.com/tomtom215/moviebuddy/internal/recommend"
	"github.com/tomtom215/moviebuddy/internal/session"
	"github.com/tomtom215/moviebuddy/internal/similarity"
)

// Server holds the dependencies of the HTTP surface.
type Server struct {
	cfg       *config.Config
	engine    *recommend.Engine
	sessions  session.Store
	extractor *extractor.Client
	logger    zerolog.Logger
	startedAt time.Time
}

// NewServer wires the API around its collaborators.
func NewServer(cfg *config.Config, engine *recommend.Engine, sessions session.Store, ex *extractor.Client) *Server {
	return &Server{
		cfg:       cfg,
		engine:    engine,
		sessions:  sessions,
		extractor: ex,
		logger:    logging.With().Str("component", "api").Logger(),
		startedAt: time.Now(),
	}
}

// recommendRequest is the body of POST /api/v1/recommendations.
type recommendRequest struct {
	Text        string                     `json:"text,omitempty"`
	Preferences recommend.PreferencePacket `json:"preferences"`
	K           int                        `json:"k,omitempty"`
	SessionID   string                     `json:"session_id,omitempty"`
}

// recommendResponse is the data payload of a recommendation call.
type recommendResponse struct {
	Items          []recommend.Item `json:"items"`
	Tier           recommend.Tier   `json:"tier"`
	SessionID      string           `json:"session_id,omitempty"`
	CatalogVersion uint64           `json:"catalog_version"`
}

// handleRecommend runs the full request pipeline: optional remote
// preference extraction, session memory lookup, the recommendation
// engine, then session memory update.
func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid request body")
		return
	}
	if req.K < 0 {
		rw.BadRequest("k must not be negative")
		return
	}

	prefs := s.extractor.Extract(r.Context(), req.Text, req.Preferences)

	// Assign a session on first contact so follow-up requests get
	// continuity without the client inventing an identifier.
	var shown []string
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	} else {
		var err error
		shown, err = s.sessions.Shown(r.Context(), req.SessionID)
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", req.SessionID).Msg("Session lookup failed, continuing without memory")
		}
	}

	start := time.Now()
	resp := s.engine.Recommend(&recommend.Request{
		Preferences:  prefs,
		K:            req.K,
		AlreadyShown: shown,
	})
	metrics.ObserveRecommendation(string(resp.Tier), len(resp.Items), time.Since(start))

	if req.SessionID != "" && len(resp.Items) > 0 {
		titles := make([]string, len(resp.Items))
		for i, it := range resp.Items {
			titles[i] = it.Movie.Title
		}
		if err := s.sessions.MarkShown(r.Context(), req.SessionID, titles); err != nil {
			s.logger.Warn().Err(err).Str("session_id", req.SessionID).Msg("Failed to record shown titles")
		}
	}

	rw.Success(recommendResponse{
		Items:          resp.Items,
		Tier:           resp.Tier,
		SessionID:      req.SessionID,
		CatalogVersion: resp.CatalogVersion,
	})
}

// similarResponse is the payload of the similar-titles endpoint.
type similarResponse struct {
	Reference catalog.Movie            `json:"reference"`
	Similar   []recommend.SimilarMovie `json:"similar"`
}

// handleSimilar resolves {title} and returns its content neighbors.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	title, err := url.PathUnescape(chi.URLParam(r, "title"))
	if err != nil || title == "" {
		rw.BadRequest("missing title")
		return
	}

	k := 0
	if raw := r.URL.Query().Get("k"); raw != "" {
		k, err = strconv.Atoi(raw)
		if err != nil || k < 0 {
			rw.BadRequest("k must be a non-negative integer")
			return
		}
	}

	ref, similar, err := s.engine.SimilarTo(title, k)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			rw.NotFound("title not found in catalog")
			return
		}
		rw.InternalError("similarity lookup failed")
		return
	}

	rw.Success(similarResponse{Reference: *ref, Similar: similar})
}

// handleMovie looks up a single catalog entry by title.
func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	title, err := url.PathUnescape(chi.URLParam(r, "title"))
	if err != nil || title == "" {
		rw.BadRequest("missing title")
		return
	}

	snap := s.engine.Snapshot()
	idx, err := snap.Store.FindTitle(title)
	if err != nil {
		rw.NotFound("title not found in catalog")
		return
	}
	movie, err := snap.Store.ByIndex(idx)
	if err != nil {
		rw.InternalError("catalog lookup failed")
		return
	}

	rw.Success(movie)
}

// reloadResponse is the payload of the catalog reload endpoint.
type reloadResponse struct {
	Movies         int    `json:"movies"`
	CatalogVersion uint64 `json:"catalog_version"`
}

// handleReload re-reads the catalog feed, rebuilds the similarity
// index and swaps the engine snapshot. In-flight requests finish
// against the old snapshot.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	store, err := catalog.LoadFile(s.cfg.Catalog.Path, s.logger)
	if err != nil {
		s.logger.Error().Err(err).Str("path", s.cfg.Catalog.Path).Msg("Catalog reload failed")
		rw.InternalError("catalog reload failed")
		return
	}

	index := similarity.Build(store.Movies(), s.logger)
	snap := s.engine.Swap(store, index)

	metrics.CatalogSize.Set(float64(store.Len()))
	metrics.CatalogVersion.Set(float64(snap.Version))
	metrics.SimilarityBuildDuration.Observe(index.BuildDuration().Seconds())

	rw.Success(reloadResponse{Movies: store.Len(), CatalogVersion: snap.Version})
}

// handleClearSession forgets one conversation's memory.
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	if id == "" {
		rw.BadRequest("missing session id")
		return
	}
	if err := s.sessions.Clear(r.Context(), id); err != nil {
		rw.InternalError("failed to clear session")
		return
	}
	rw.Success(map[string]string{"session_id": id, "status": "cleared"})
}

// healthResponse is the payload of /healthz.
type healthResponse struct {
	Status        string          `json:"status"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Engine        recommend.Stats `json:"engine"`
	Extractor     bool            `json:"extractor_enabled"`
}

// handleHealth reports liveness and engine counters.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Engine:        s.engine.Stats(),
		Extractor:     s.extractor.Enabled(),
	})
}
