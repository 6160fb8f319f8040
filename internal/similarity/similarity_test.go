// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package similarity

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/tomtom215/moviebuddy/internal/catalog"
	"github.com/tomtom215/moviebuddy/internal/logging"
)

func testMovies() []catalog.Movie {
	return []catalog.Movie{
		{Title: "Space War", Year: 1999, Genres: []string{"Sci-Fi", "Action"}, Plot: "a war among the stars", Directors: []string{"Ray Rivera"}},
		{Title: "Star Battle", Year: 2001, Genres: []string{"Sci-Fi", "Action"}, Plot: "a battle among the stars", Directors: []string{"Ray Rivera"}},
		{Title: "Quiet Garden", Year: 1965, Genres: []string{"Drama"}, Plot: "an old gardener tends roses", Directors: []string{"Mia Moon"}},
	}
}

func buildIndex(t *testing.T, movies []catalog.Movie) *Index {
	t.Helper()
	return Build(movies, logging.NewTestLogger(io.Discard))
}

func TestBuildSelfSimilarity(t *testing.T) {
	idx := buildIndex(t, testMovies())
	for i := 0; i < idx.Len(); i++ {
		got, err := idx.Score(i, i)
		if err != nil {
			t.Fatalf("Score(%d, %d) error: %v", i, i, err)
		}
		if math.Abs(got-1.0) > 1e-9 {
			t.Errorf("Score(%d, %d) = %v, want 1.0", i, i, got)
		}
	}
}

func TestBuildSymmetric(t *testing.T) {
	idx := buildIndex(t, testMovies())
	for i := 0; i < idx.Len(); i++ {
		for j := 0; j < idx.Len(); j++ {
			a, _ := idx.Score(i, j)
			b, _ := idx.Score(j, i)
			if math.Abs(a-b) > 1e-9 {
				t.Errorf("Score(%d,%d)=%v != Score(%d,%d)=%v", i, j, a, j, i, b)
			}
		}
	}
}

func TestSimilarToRanksSharedFeaturesFirst(t *testing.T) {
	idx := buildIndex(t, testMovies())

	got, err := idx.SimilarTo(0, 2)
	if err != nil {
		t.Fatalf("SimilarTo() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("SimilarTo() returned %d neighbors, want 2", len(got))
	}
	if got[0].Index != 1 {
		t.Errorf("top neighbor of Space War = index %d, want 1 (Star Battle)", got[0].Index)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("neighbor scores not descending: %v", got)
	}
}

func TestSimilarToExcludesSelf(t *testing.T) {
	idx := buildIndex(t, testMovies())
	got, err := idx.SimilarTo(1, 10)
	if err != nil {
		t.Fatalf("SimilarTo() error: %v", err)
	}
	for _, n := range got {
		if n.Index == 1 {
			t.Fatalf("SimilarTo(1) returned the movie itself: %v", got)
		}
	}
}

func TestSimilarToTiesPreferLowerIndex(t *testing.T) {
	// Two identical movies tie exactly for the third movie's neighbors.
	movies := []catalog.Movie{
		{Title: "Twin A", Genres: []string{"Comedy"}, Plot: "twins swap places"},
		{Title: "Twin B", Genres: []string{"Comedy"}, Plot: "twins swap places"},
		{Title: "Probe", Genres: []string{"Comedy"}, Plot: "twins swap places"},
	}
	idx := buildIndex(t, movies)

	got, err := idx.SimilarTo(2, 2)
	if err != nil {
		t.Fatalf("SimilarTo() error: %v", err)
	}
	if got[0].Index != 0 || got[1].Index != 1 {
		t.Errorf("tie order = [%d %d], want [0 1]", got[0].Index, got[1].Index)
	}
}

func TestSimilarToOutOfRange(t *testing.T) {
	idx := buildIndex(t, testMovies())
	for _, i := range []int{-1, 3, 100} {
		if _, err := idx.SimilarTo(i, 2); !errors.Is(err, ErrNotFound) {
			t.Errorf("SimilarTo(%d) error = %v, want ErrNotFound", i, err)
		}
	}
}

func TestBuildDegenerateCorpus(t *testing.T) {
	movies := []catalog.Movie{{Title: "???"}, {Title: "!!!"}}
	idx := buildIndex(t, movies)

	if !idx.Degenerate() {
		t.Fatal("Degenerate() = false, want true for featureless corpus")
	}
	self, _ := idx.Score(0, 0)
	cross, _ := idx.Score(0, 1)
	if self != 1.0 || cross != 0.0 {
		t.Errorf("identity fallback scores = (%v, %v), want (1, 0)", self, cross)
	}
}

func TestBuildEmptyCatalog(t *testing.T) {
	idx := buildIndex(t, nil)
	if idx.Len() != 0 {
		t.Errorf("Len() = %d, want 0", idx.Len())
	}
	if _, err := idx.SimilarTo(0, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("SimilarTo on empty index error = %v, want ErrNotFound", err)
	}
}

func TestBuildDeterministic(t *testing.T) {
	movies := testMovies()
	a := buildIndex(t, movies)
	b := buildIndex(t, movies)
	for i := 0; i < a.Len(); i++ {
		for j := 0; j < a.Len(); j++ {
			x, _ := a.Score(i, j)
			y, _ := b.Score(i, j)
			if x != y {
				t.Fatalf("rebuild changed Score(%d,%d): %v vs %v", i, j, x, y)
			}
		}
	}
}

func TestFeatureText(t *testing.T) {
	m := &catalog.Movie{
		Title:     "Space War",
		Year:      1999,
		Genres:    []string{"Sci-Fi", "Action"},
		Plot:      "A war among the stars",
		Actors:    []string{"Ann Able"},
		Directors: []string{"Ray Rivera"},
	}
	got := FeatureText(m)
	for _, want := range []string{"sci-fi", "action", "war among the stars", "ann able", "ray rivera", "year_1999"} {
		if !strings.Contains(got, want) {
			t.Errorf("FeatureText() = %q, missing %q", got, want)
		}
	}
	if got != strings.ToLower(got) {
		t.Errorf("FeatureText() not lowercased: %q", got)
	}
}

func TestTokenizeKeepsYearTokens(t *testing.T) {
	got := tokenize("sci-fi action year_1999 (remastered)")
	want := map[string]bool{"sci": true, "fi": true, "action": true, "year_1999": true, "remastered": true}
	if len(got) != len(want) {
		t.Fatalf("tokenize() = %v, want %d tokens", got, len(want))
	}
	for _, tok := range got {
		if !want[tok] {
			t.Errorf("unexpected token %q in %v", tok, got)
		}
	}
}
