// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package recommend

import (
	"math/rand"
	"sort"
	"strings"
)

// Diversity acceptance weights and thresholds.
const (
	diversityGenreFresh   = 4.0 // at most one genre already used
	diversityGenreNear    = 2.0 // at most two genres already used
	diversityNewDecade    = 3.0
	diversityNewDirectors = 2.0
	diversityQualityHigh  = 2.0 // quality score 7.0 or above
	diversityQualityGood  = 1.0 // 6.0 or above

	diversityMinStrict  = 4.0 // once two slots are filled
	diversityMinLenient = 2.0 // first two picks

	relaxedQualityFloor = 5.0
)

// selectDiverse picks up to n candidates from the scored pool,
// preferring results that spread genres, decades and directors.
//
// Candidates are walked in descending score order with ties broken by
// higher quality then lower catalog index. When rng is non-nil, runs
// of equal scores are shuffled before the walk; shuffling never moves
// a candidate across a score boundary, so a lower-scored movie cannot
// outrank a higher-scored one.
func selectDiverse(candidates []ScoredCandidate, n int, rng *rand.Rand) []ScoredCandidate {
	if n <= 0 || len(candidates) == 0 {
		return nil
	}

	pool := make([]ScoredCandidate, len(candidates))
	copy(pool, candidates)
	sort.SliceStable(pool, func(a, b int) bool {
		if pool[a].Score != pool[b].Score {
			return pool[a].Score > pool[b].Score
		}
		if pool[a].Movie.QualityScore != pool[b].Movie.QualityScore {
			return pool[a].Movie.QualityScore > pool[b].Movie.QualityScore
		}
		return pool[a].Movie.Index < pool[b].Movie.Index
	})
	if rng != nil {
		shuffleTies(pool, rng)
	}

	var (
		picked        = make([]ScoredCandidate, 0, n)
		pickedTitles  = make(map[string]struct{}, n)
		usedGenres    = make(map[string]struct{})
		usedDecades   = make(map[int]struct{})
		usedDirectors = make(map[string]struct{})
	)

	for _, cand := range pool {
		if len(picked) >= n {
			break
		}

		var score float64

		overlap := 0
		for _, g := range cand.Movie.Genres {
			if _, ok := usedGenres[strings.ToLower(g)]; ok {
				overlap++
			}
		}
		switch {
		case overlap <= 1:
			score += diversityGenreFresh
		case overlap <= 2:
			score += diversityGenreNear
		}

		if _, ok := usedDecades[cand.Movie.Decade()]; !ok {
			score += diversityNewDecade
		}

		newDirectors := true
		for _, d := range cand.Movie.Directors {
			if _, ok := usedDirectors[strings.ToLower(d)]; ok {
				newDirectors = false
				break
			}
		}
		if newDirectors {
			score += diversityNewDirectors
		}

		switch {
		case cand.Movie.QualityScore >= 7.0:
			score += diversityQualityHigh
		case cand.Movie.QualityScore >= 6.0:
			score += diversityQualityGood
		}

		required := diversityMinLenient
		if len(picked) >= 2 {
			required = diversityMinStrict
		}
		if score < required {
			continue
		}

		picked = append(picked, cand)
		pickedTitles[strings.ToLower(cand.Movie.Title)] = struct{}{}
		for _, g := range cand.Movie.Genres {
			usedGenres[strings.ToLower(g)] = struct{}{}
		}
		usedDecades[cand.Movie.Decade()] = struct{}{}
		for _, d := range cand.Movie.Directors {
			usedDirectors[strings.ToLower(d)] = struct{}{}
		}
	}

	// Relaxed second pass: fill remaining slots with any decent movie,
	// diversity constraints dropped.
	if len(picked) < n {
		for _, cand := range pool {
			if len(picked) >= n {
				break
			}
			if _, ok := pickedTitles[strings.ToLower(cand.Movie.Title)]; ok {
				continue
			}
			if cand.Movie.QualityScore < relaxedQualityFloor {
				continue
			}
			picked = append(picked, cand)
			pickedTitles[strings.ToLower(cand.Movie.Title)] = struct{}{}
		}
	}

	return picked
}

// shuffleTies reshuffles each maximal run of equal-score candidates in
// place, leaving the run boundaries fixed.
func shuffleTies(pool []ScoredCandidate, rng *rand.Rand) {
	start := 0
	for i := 1; i <= len(pool); i++ {
		if i < len(pool) && pool[i].Score == pool[start].Score {
			continue
		}
		run := pool[start:i]
		if len(run) > 1 {
			rng.Shuffle(len(run), func(a, b int) {
				run[a], run[b] = run[b], run[a]
			})
		}
		start = i
	}
}
