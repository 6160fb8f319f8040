// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package recommend

import (
	"math/rand"
	"testing"

	"github.com/tomtom215/moviebuddy/internal/catalog"
)

func candidatesFrom(movies []catalog.Movie, scores []float64) []ScoredCandidate {
	out := make([]ScoredCandidate, len(movies))
	for i := range movies {
		movies[i].Index = i
		out[i] = ScoredCandidate{Movie: &movies[i], Score: scores[i]}
	}
	return out
}

func TestSelectDiverseSpreadsDecades(t *testing.T) {
	// Ten movies across three genres, two decades, three directors.
	// The top-3 selection must touch at least two distinct decades.
	movies := []catalog.Movie{
		{Title: "A", Genres: []string{"Action"}, Year: 1995, Directors: []string{"D1"}, QualityScore: 8.0},
		{Title: "B", Genres: []string{"Action"}, Year: 1996, Directors: []string{"D1"}, QualityScore: 7.9},
		{Title: "C", Genres: []string{"Action"}, Year: 1997, Directors: []string{"D1"}, QualityScore: 7.8},
		{Title: "D", Genres: []string{"Comedy"}, Year: 2005, Directors: []string{"D2"}, QualityScore: 7.7},
		{Title: "E", Genres: []string{"Comedy"}, Year: 2006, Directors: []string{"D2"}, QualityScore: 7.6},
		{Title: "F", Genres: []string{"Comedy"}, Year: 1998, Directors: []string{"D2"}, QualityScore: 7.5},
		{Title: "G", Genres: []string{"Drama"}, Year: 2007, Directors: []string{"D3"}, QualityScore: 7.4},
		{Title: "H", Genres: []string{"Drama"}, Year: 1999, Directors: []string{"D3"}, QualityScore: 7.3},
		{Title: "I", Genres: []string{"Drama"}, Year: 2008, Directors: []string{"D3"}, QualityScore: 7.2},
		{Title: "J", Genres: []string{"Action"}, Year: 2009, Directors: []string{"D3"}, QualityScore: 7.1},
	}
	scores := []float64{10, 9.5, 9, 8.5, 8, 7.5, 7, 6.5, 6, 5.5}

	picked := selectDiverse(candidatesFrom(movies, scores), 3, nil)
	if len(picked) != 3 {
		t.Fatalf("picked %d movies, want 3", len(picked))
	}

	decades := make(map[int]struct{})
	for _, c := range picked {
		decades[c.Movie.Decade()] = struct{}{}
	}
	if len(decades) < 2 {
		t.Errorf("top-3 touches %d decades, want at least 2: %+v", len(decades), picked)
	}
}

func TestSelectDiverseHigherScoreFirst(t *testing.T) {
	movies := []catalog.Movie{
		{Title: "Low", Genres: []string{"Action"}, Year: 1995, QualityScore: 8.0},
		{Title: "High", Genres: []string{"Comedy"}, Year: 2005, QualityScore: 8.0},
	}
	scores := []float64{2, 9}

	picked := selectDiverse(candidatesFrom(movies, scores), 2, nil)
	if len(picked) != 2 {
		t.Fatalf("picked %d, want 2", len(picked))
	}
	if picked[0].Movie.Title != "High" {
		t.Errorf("first pick = %q, want the higher-scored movie", picked[0].Movie.Title)
	}
}

func TestSelectDiverseTieBreaksByQualityThenIndex(t *testing.T) {
	movies := []catalog.Movie{
		{Title: "LowQuality", Genres: []string{"Action"}, QualityScore: 6.0},
		{Title: "HighQuality", Genres: []string{"Comedy"}, QualityScore: 8.0},
	}
	scores := []float64{5, 5}

	picked := selectDiverse(candidatesFrom(movies, scores), 2, nil)
	if picked[0].Movie.Title != "HighQuality" {
		t.Errorf("first pick = %q, want quality tie-break winner", picked[0].Movie.Title)
	}
}

func TestSelectDiverseRelaxedSecondPass(t *testing.T) {
	// Homogeneous catalog: after the first two permissive picks every
	// further candidate fails the strict diversity minimum, so filling
	// to n requires the relaxed pass, which needs quality >= 5.0.
	movies := []catalog.Movie{
		{Title: "A", Genres: []string{"Action", "Thriller", "Crime"}, Year: 1995, Directors: []string{"D"}, QualityScore: 5.5},
		{Title: "B", Genres: []string{"Action", "Thriller", "Crime"}, Year: 1996, Directors: []string{"D"}, QualityScore: 5.4},
		{Title: "C", Genres: []string{"Action", "Thriller", "Crime"}, Year: 1997, Directors: []string{"D"}, QualityScore: 5.3},
		{Title: "D", Genres: []string{"Action", "Thriller", "Crime"}, Year: 1998, Directors: []string{"D"}, QualityScore: 4.0},
	}
	scores := []float64{8, 7, 6, 5}

	picked := selectDiverse(candidatesFrom(movies, scores), 4, nil)
	if len(picked) != 3 {
		t.Fatalf("picked %d, want 3 (relaxed pass rejects quality < 5.0)", len(picked))
	}
	for _, c := range picked {
		if c.Movie.Title == "D" {
			t.Error("movie below the relaxed quality floor was picked")
		}
	}
}

func TestSelectDiverseNoDuplicates(t *testing.T) {
	movies := []catalog.Movie{
		{Title: "A", Genres: []string{"Action"}, Year: 1995, QualityScore: 7.0},
		{Title: "B", Genres: []string{"Comedy"}, Year: 2005, QualityScore: 7.0},
		{Title: "C", Genres: []string{"Drama"}, Year: 2015, QualityScore: 7.0},
	}
	scores := []float64{9, 8, 7}

	picked := selectDiverse(candidatesFrom(movies, scores), 5, nil)
	seen := make(map[string]struct{})
	for _, c := range picked {
		if _, dup := seen[c.Movie.Title]; dup {
			t.Fatalf("duplicate pick %q", c.Movie.Title)
		}
		seen[c.Movie.Title] = struct{}{}
	}
}

func TestShuffleTiesNeverCrossesScoreTiers(t *testing.T) {
	movies := []catalog.Movie{
		{Title: "T1", Genres: []string{"Action"}, Year: 1991, QualityScore: 7.0},
		{Title: "T2", Genres: []string{"Comedy"}, Year: 2002, QualityScore: 7.0},
		{Title: "T3", Genres: []string{"Drama"}, Year: 2013, QualityScore: 7.0},
		{Title: "Top", Genres: []string{"Horror"}, Year: 1985, QualityScore: 7.0},
	}
	scores := []float64{5, 5, 5, 9}

	for seed := int64(0); seed < 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		picked := selectDiverse(candidatesFrom(movies, scores), 4, rng)
		if len(picked) == 0 || picked[0].Movie.Title != "Top" {
			t.Fatalf("seed %d: top-scored movie displaced by tie shuffle: %+v", seed, picked)
		}
		for i := 1; i < len(picked); i++ {
			if picked[i].Score > picked[i-1].Score {
				t.Fatalf("seed %d: scores not non-increasing at %d", seed, i)
			}
		}
	}
}

func TestSelectDiverseEmptyInput(t *testing.T) {
	if got := selectDiverse(nil, 3, nil); got != nil {
		t.Errorf("selectDiverse(nil) = %v, want nil", got)
	}
	movies := []catalog.Movie{{Title: "A", QualityScore: 7.0}}
	if got := selectDiverse(candidatesFrom(movies, []float64{5}), 0, nil); got != nil {
		t.Errorf("selectDiverse(n=0) = %v, want nil", got)
	}
}
