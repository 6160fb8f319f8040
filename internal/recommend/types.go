// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package recommend

import (
	"time"

	"github.com/tomtom215/moviebuddy/internal/catalog"
	"github.com/tomtom215/moviebuddy/internal/similarity"
)

// Tier identifies which stage of the pipeline produced (part of) a
// result list.
type Tier string

const (
	// TierPrimary covers results from the hybrid scorer plus diversity
	// selection.
	TierPrimary Tier = "primary"
	// TierGenreFallback covers results from the genre-only rescoring
	// pass with a strict quality floor.
	TierGenreFallback Tier = "genre_fallback"
	// TierQualityFallback covers results taken purely from the
	// quality ranking of the catalog.
	TierQualityFallback Tier = "quality_fallback"
)

// PreferencePacket is the structured preference input to the scorer.
// Every field has a usable zero value meaning "unconstrained"; the
// scorer never treats a missing field as an error.
type PreferencePacket struct {
	Genres            []string `json:"genres,omitempty"`
	ExcludedGenres    []string `json:"excluded_genres,omitempty"`
	Mood              string   `json:"mood,omitempty"`
	Era               string   `json:"era,omitempty"`
	Actors            []string `json:"actors,omitempty"`
	Directors         []string `json:"directors,omitempty"`
	ReferenceTitle    string   `json:"reference_title,omitempty"`
	Emotion           string   `json:"emotion,omitempty"`
	EmotionConfidence float64  `json:"emotion_confidence,omitempty"`
}

// Empty reports whether the packet carries no signal at all.
func (p *PreferencePacket) Empty() bool {
	return len(p.Genres) == 0 &&
		len(p.ExcludedGenres) == 0 &&
		p.Mood == "" &&
		p.Era == "" &&
		len(p.Actors) == 0 &&
		len(p.Directors) == 0 &&
		p.ReferenceTitle == "" &&
		p.Emotion == ""
}

// ScoredCandidate pairs a catalog movie with its request-scoped score
// and the human-readable reasons behind it. Reasons are explanation
// only and carry no ranking semantics. Matched records whether any
// preference signal fired beyond the quality baseline; it decides
// whether the fallback ladder is needed, not how candidates rank.
type ScoredCandidate struct {
	Movie   *catalog.Movie
	Score   float64
	Reasons []string
	Matched bool
}

// Request is a single recommendation call.
type Request struct {
	Preferences  PreferencePacket
	K            int
	AlreadyShown []string
}

// Item is one entry of a recommendation response.
type Item struct {
	Movie   catalog.Movie `json:"movie"`
	Score   float64       `json:"score"`
	Reasons []string      `json:"reasons,omitempty"`
	Tier    Tier          `json:"tier"`
}

// Response is the outcome of a recommendation call. Tier records the
// deepest pipeline stage that contributed results.
type Response struct {
	Items          []Item `json:"items"`
	Tier           Tier   `json:"tier"`
	CatalogVersion uint64 `json:"catalog_version"`
}

// SimilarMovie is one entry of a "similar to X" ranking.
type SimilarMovie struct {
	Movie      catalog.Movie `json:"movie"`
	Similarity float64       `json:"similarity"`
}

// Snapshot is an immutable pairing of a catalog store with the
// similarity index built from it. Engines swap whole snapshots on
// reload; nothing inside one is ever mutated.
type Snapshot struct {
	Store   *catalog.Store
	Index   *similarity.Index
	Version uint64
	BuiltAt time.Time
}
