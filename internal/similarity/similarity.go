// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

// Package similarity builds a content similarity index over the movie
// catalog. Each movie is flattened into a feature document (genres,
// plot, cast, directors, release year token), vectorized with TF-IDF
// and compared pairwise by cosine similarity. The resulting matrix is
// immutable after Build and safe for concurrent reads.
package similarity

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebuddy/internal/catalog"
)

// ErrNotFound is returned when a movie index is outside the corpus.
var ErrNotFound = errors.New("similarity: movie index not found")

// Neighbor is a single entry of a similarity ranking.
type Neighbor struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// Index holds the pairwise cosine similarity matrix for a catalog.
type Index struct {
	n          int
	matrix     [][]float64
	degenerate bool
	builtIn    time.Duration
}

// sparseVec is a TF-IDF document vector keyed by vocabulary term id.
type sparseVec map[int]float64

// Build vectorizes every movie and computes the full pairwise cosine
// matrix. Row construction is fanned out across CPUs since the matrix
// is quadratic in catalog size.
func Build(movies []catalog.Movie, logger zerolog.Logger) *Index {
	start := time.Now()
	n := len(movies)

	idx := &Index{
		n:      n,
		matrix: make([][]float64, n),
	}
	if n == 0 {
		idx.builtIn = time.Since(start)
		return idx
	}

	docs := make([][]string, n)
	for i := range movies {
		docs[i] = tokenize(FeatureText(&movies[i]))
	}

	vecs, vocabSize := vectorize(docs)
	if vocabSize == 0 {
		// Nothing to compare on. Every movie is only similar to itself.
		idx.degenerate = true
		for i := 0; i < n; i++ {
			row := make([]float64, n)
			row[i] = 1.0
			idx.matrix[i] = row
		}
		idx.builtIn = time.Since(start)
		logger.Warn().
			Int("movies", n).
			Msg("Similarity corpus has no usable features, falling back to identity matrix")
		return idx
	}

	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	rows := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rows {
				row := make([]float64, n)
				for j := 0; j < n; j++ {
					if i == j {
						row[j] = 1.0
						continue
					}
					row[j] = dot(vecs[i], vecs[j])
				}
				idx.matrix[i] = row
			}
		}()
	}
	for i := 0; i < n; i++ {
		rows <- i
	}
	close(rows)
	wg.Wait()

	idx.builtIn = time.Since(start)
	logger.Info().
		Int("movies", n).
		Int("vocabulary", vocabSize).
		Dur("elapsed", idx.builtIn).
		Msg("Similarity index built")
	return idx
}

// Len returns the number of movies in the index.
func (x *Index) Len() int { return x.n }

// Degenerate reports whether the corpus had no usable feature text and
// the index degraded to an identity matrix.
func (x *Index) Degenerate() bool { return x.degenerate }

// BuildDuration returns how long the matrix construction took.
func (x *Index) BuildDuration() time.Duration { return x.builtIn }

// Score returns the cosine similarity between two movies.
func (x *Index) Score(i, j int) (float64, error) {
	if i < 0 || i >= x.n || j < 0 || j >= x.n {
		return 0, fmt.Errorf("%w: pair (%d, %d) of %d", ErrNotFound, i, j, x.n)
	}
	return x.matrix[i][j], nil
}

// SimilarTo returns up to k neighbors of movie i ranked by descending
// similarity. The movie itself is excluded. Ties rank the lower catalog
// index first so results are stable across rebuilds.
func (x *Index) SimilarTo(i, k int) ([]Neighbor, error) {
	if i < 0 || i >= x.n {
		return nil, fmt.Errorf("%w: index %d of %d", ErrNotFound, i, x.n)
	}
	if k <= 0 {
		return nil, nil
	}

	neighbors := make([]Neighbor, 0, x.n-1)
	for j, score := range x.matrix[i] {
		if j == i {
			continue
		}
		neighbors = append(neighbors, Neighbor{Index: j, Score: score})
	}
	sort.SliceStable(neighbors, func(a, b int) bool {
		if neighbors[a].Score != neighbors[b].Score {
			return neighbors[a].Score > neighbors[b].Score
		}
		return neighbors[a].Index < neighbors[b].Index
	})

	if k > len(neighbors) {
		k = len(neighbors)
	}
	return neighbors[:k], nil
}

// FeatureText flattens a movie into the document string fed to the
// vectorizer. Genres are repeated via both the list and the plot
// synthesis path upstream, which weights them naturally.
func FeatureText(m *catalog.Movie) string {
	parts := make([]string, 0, 8)
	if len(m.Genres) > 0 {
		parts = append(parts, strings.Join(m.Genres, " "))
	}
	if m.Plot != "" {
		parts = append(parts, m.Plot)
	}
	if len(m.Actors) > 0 {
		parts = append(parts, strings.Join(m.Actors, " "))
	}
	if len(m.Directors) > 0 {
		parts = append(parts, strings.Join(m.Directors, " "))
	}
	if m.Year > 0 {
		parts = append(parts, fmt.Sprintf("year_%d", m.Year))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// tokenize lowercases and splits feature text on non-word runes,
// keeping underscores so year tokens survive intact.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z':
			return false
		case r >= '0' && r <= '9':
			return false
		case r == '_':
			return false
		default:
			return true
		}
	})
}

// vectorize turns token documents into l2-normalized TF-IDF vectors
// using smoothed document frequencies, so unseen-term weights stay
// finite even for single-document corpora.
func vectorize(docs [][]string) ([]sparseVec, int) {
	n := len(docs)

	vocab := make(map[string]int)
	df := make(map[int]int)
	counts := make([]map[int]int, n)

	for i, doc := range docs {
		tf := make(map[int]int, len(doc))
		for _, tok := range doc {
			id, ok := vocab[tok]
			if !ok {
				id = len(vocab)
				vocab[tok] = id
			}
			tf[id]++
		}
		for id := range tf {
			df[id]++
		}
		counts[i] = tf
	}

	idf := make([]float64, len(vocab))
	for id, freq := range df {
		idf[id] = math.Log(float64(1+n)/float64(1+freq)) + 1.0
	}

	vecs := make([]sparseVec, n)
	for i, tf := range counts {
		vec := make(sparseVec, len(tf))
		var norm float64
		for id, count := range tf {
			w := float64(count) * idf[id]
			vec[id] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for id := range vec {
				vec[id] /= norm
			}
		}
		vecs[i] = vec
	}
	return vecs, len(vocab)
}

// dot computes the inner product of two normalized sparse vectors,
// iterating the smaller one.
func dot(a, b sparseVec) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for id, wa := range a {
		if wb, ok := b[id]; ok {
			sum += wa * wb
		}
	}
	if sum > 1.0 {
		sum = 1.0
	}
	return sum
}
