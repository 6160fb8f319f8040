// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package catalog

import (
	"errors"
	"testing"
)

func TestNewStoreAssignsDenseIndexes(t *testing.T) {
	movies := []Movie{
		{Title: "Alpha"},
		{Title: "Beta"},
		{Title: "Gamma"},
	}

	s := NewStore(movies)

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	for i, m := range s.Movies() {
		if m.Index != i {
			t.Errorf("movie %q Index = %d, want %d", m.Title, m.Index, i)
		}
	}
}

func TestStoreByIndex(t *testing.T) {
	s := NewStore([]Movie{{Title: "Alpha"}, {Title: "Beta"}})

	m, err := s.ByIndex(1)
	if err != nil {
		t.Fatalf("ByIndex(1) error: %v", err)
	}
	if m.Title != "Beta" {
		t.Errorf("ByIndex(1).Title = %q, want %q", m.Title, "Beta")
	}

	for _, i := range []int{-1, 2} {
		if _, err := s.ByIndex(i); !errors.Is(err, ErrNotFound) {
			t.Errorf("ByIndex(%d) error = %v, want ErrNotFound", i, err)
		}
	}
}

func TestStoreFindTitle(t *testing.T) {
	s := NewStore([]Movie{
		{Title: "The Matrix"},
		{Title: "The Matrix Reloaded"},
		{Title: "Titanic"},
	})

	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "exact match", query: "Titanic", want: 2},
		{name: "exact case-insensitive", query: "the matrix", want: 0},
		{name: "substring falls back to first index", query: "matrix rel", want: 1},
		{name: "substring prefers lowest index", query: "matrix", want: 0},
		{name: "missing title", query: "Inception", wantErr: true},
		{name: "blank query", query: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindTitle(tt.query)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("FindTitle(%q) error = %v, want ErrNotFound", tt.query, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindTitle(%q) error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("FindTitle(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestStoreDuplicateTitlesKeepFirst(t *testing.T) {
	s := NewStore([]Movie{
		{Title: "Heat", Year: 1995},
		{Title: "Heat", Year: 1972},
	})

	got, err := s.FindTitle("heat")
	if err != nil {
		t.Fatalf("FindTitle error: %v", err)
	}
	if got != 0 {
		t.Errorf("FindTitleduplicate = %d, want first index 0", got)
	}
}

func TestMovieDecade(t *testing.T) {
	tests := []struct {
		year int
		want int
	}{
		{1994, 1990},
		{2000, 2000},
		{2009, 2000},
		{0, 0},
	}
	for _, tt := range tests {
		m := Movie{Year: tt.year}
		if got := m.Decade(); got != tt.want {
			t.Errorf("Decade() for year %d = %d, want %d", tt.year, got, tt.want)
		}
	}
}
