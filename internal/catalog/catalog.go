// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

// Package catalog provides the in-memory movie catalog.
//
// The catalog is built once at startup from a row-oriented tabular feed and
// is immutable afterward. Every movie carries a dense index 0..N-1 that is
// the join key with the similarity matrix; refreshing the feed produces a
// whole new Store rather than mutating an existing one.
package catalog

import (
	"errors"
	"strings"
)

// Common catalog errors.
var (
	// ErrNotFound indicates a title or index lookup failed.
	ErrNotFound = errors.New("catalog: movie not found")

	// ErrMissingTitleColumn indicates the source feed has no usable title
	// column. The service must not start serving against such a feed.
	ErrMissingTitleColumn = errors.New("catalog: source has no title column")

	// ErrEmptySource indicates the source feed contained no rows at all.
	ErrEmptySource = errors.New("catalog: source is empty")
)

// Movie is a single catalog entry. Movies are immutable after load; the
// Index field is the position in the similarity matrix row order and is
// assigned exactly once.
type Movie struct {
	// Title is the display title, unique within the catalog
	// (case-insensitively) for lookup purposes.
	Title string `json:"title"`

	// Year is the release year, 0 when unknown.
	Year int `json:"year,omitempty"`

	// Genres in source order, duplicates removed.
	Genres []string `json:"genres"`

	// Actors with top billing first.
	Actors []string `json:"actors,omitempty"`

	// Directors credited on the movie.
	Directors []string `json:"directors,omitempty"`

	// MoodTags are free-form descriptors from the feed, may be empty.
	MoodTags []string `json:"mood_tags,omitempty"`

	// QualityScore is the externally supplied rating (0-10), 0 if unknown.
	QualityScore float64 `json:"quality_score"`

	// Plot is used only for similarity vectorization. It is synthesized
	// from genres when the feed has no plot text.
	Plot string `json:"plot,omitempty"`

	// Index is the dense position in the similarity matrix ordering.
	Index int `json:"index"`
}

// Decade returns the movie's decade (year // 10 * 10), 0 when the year
// is unknown.
func (m *Movie) Decade() int {
	return m.Year / 10 * 10
}

// Store is a read-only collection of movies with title lookup.
// It is safe for concurrent use once constructed.
type Store struct {
	movies  []Movie
	byTitle map[string]int // lowercased title -> index
}

// NewStore builds a Store from the given movies, assigning dense indexes
// in slice order. Later duplicates of a title (case-insensitive) do not
// displace the first occurrence in the lookup table.
func NewStore(movies []Movie) *Store {
	s := &Store{
		movies:  make([]Movie, len(movies)),
		byTitle: make(map[string]int, len(movies)),
	}
	copy(s.movies, movies)

	for i := range s.movies {
		s.movies[i].Index = i
		key := strings.ToLower(s.movies[i].Title)
		if _, ok := s.byTitle[key]; !ok {
			s.byTitle[key] = i
		}
	}

	return s
}

// Len returns the number of movies in the catalog.
func (s *Store) Len() int {
	return len(s.movies)
}

// Movies returns the full movie slice in index order. Callers must treat
// the returned slice as read-only.
func (s *Store) Movies() []Movie {
	return s.movies
}

// ByIndex returns the movie at the given catalog index.
func (s *Store) ByIndex(i int) (*Movie, error) {
	if i < 0 || i >= len(s.movies) {
		return nil, ErrNotFound
	}
	return &s.movies[i], nil
}

// FindTitle resolves a title to a catalog index using exact
// case-insensitive match first, then substring match in index order.
func (s *Store) FindTitle(title string) (int, error) {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return 0, ErrNotFound
	}

	if i, ok := s.byTitle[needle]; ok {
		return i, nil
	}

	for i := range s.movies {
		if strings.Contains(strings.ToLower(s.movies[i].Title), needle) {
			return i, nil
		}
	}

	return 0, ErrNotFound
}
