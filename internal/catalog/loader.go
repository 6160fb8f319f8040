// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Feed column names. The loader is header-driven: columns may appear in any
// order and all but the title column are optional.
const (
	colTitle    = "movie_title"
	colGenres   = "genres"
	colDirector = "director_name"
	colMood     = "mood"
	colScore    = "imdb_score"
	colPlot     = "plot"
)

// actorColumns lists the billed-actor columns in billing order.
var actorColumns = [...]string{"actor_1_name", "actor_2_name", "actor_3_name"}

// yearSuffix matches a trailing "(1994)" style year annotation on a title.
var yearSuffix = regexp.MustCompile(`\s*\((\d{4})\)\s*$`)

// LoadFile reads the catalog feed at path and builds a Store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func LoadFile(path string, logger zerolog.Logger) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog feed: %w", err)
	}
	defer f.Close()

	store, err := Load(f, logger)
	if err != nil {
		return nil, fmt.Errorf("load catalog feed %s: %w", path, err)
	}
	return store, nil
}

// Load reads a CSV catalog feed and builds a Store.
//
// Rows without a title are skipped; every other field defaults to
// empty/zero rather than rejecting the row. A feed whose header lacks the
// title column entirely is a configuration error: the caller must not
// start serving without a valid (even if empty) catalog.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Load(r io.Reader, logger zerolog.Logger) (*Store, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrEmptySource
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols[colTitle]; !ok {
		return nil, ErrMissingTitleColumn
	}

	var (
		movies  []Movie
		skipped int
	)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows degrade to a skip, not a failed load.
			skipped++
			continue
		}

		movie, ok := parseRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		movies = append(movies, movie)
	}

	logger.Info().
		Int("movies", len(movies)).
		Int("skipped", skipped).
		Msg("catalog loaded")

	return NewStore(movies), nil
}

// parseRow converts a single feed row into a Movie. Returns false when the
// row has no usable title.
func parseRow(row []string, cols map[string]int) (Movie, bool) {
	title := strings.TrimSpace(field(row, cols, colTitle))
	if title == "" {
		return Movie{}, false
	}

	year := 0
	if m := yearSuffix.FindStringSubmatch(title); m != nil {
		year, _ = strconv.Atoi(m[1])
		title = strings.TrimSpace(yearSuffix.ReplaceAllString(title, ""))
		if title == "" {
			return Movie{}, false
		}
	}

	genres := splitPipeList(field(row, cols, colGenres))

	var actors []string
	for _, col := range actorColumns {
		if a := strings.TrimSpace(field(row, cols, col)); a != "" {
			actors = append(actors, a)
		}
	}

	var directors []string
	if d := strings.TrimSpace(field(row, cols, colDirector)); d != "" {
		directors = append(directors, d)
	}

	moods := splitPipeList(field(row, cols, colMood))

	score := 0.0
	if raw := strings.TrimSpace(field(row, cols, colScore)); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			score = v
		}
	}

	plot := strings.TrimSpace(field(row, cols, colPlot))
	if plot == "" {
		plot = synthesizePlot(genres)
	}

	return Movie{
		Title:        title,
		Year:         year,
		Genres:       genres,
		Actors:       actors,
		Directors:    directors,
		MoodTags:     moods,
		QualityScore: score,
		Plot:         plot,
	}, true
}

// field returns the named column of a row, or "" when the column is absent
// or the row is too short.
func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// splitPipeList splits a pipe-delimited feed field into trimmed values,
// dropping empties and duplicates while preserving source order.
func splitPipeList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var (
		out  []string
		seen = make(map[string]struct{})
	)
	for _, part := range strings.Split(raw, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key := strings.ToLower(part)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, part)
	}
	return out
}

// synthesizePlot builds a minimal plot string from genres so that every
// movie contributes some feature text to the similarity index.
func synthesizePlot(genres []string) string {
	if len(genres) == 0 {
		return ""
	}
	return "a " + strings.ToLower(strings.Join(genres, ", ")) + " movie"
}
