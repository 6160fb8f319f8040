// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package recommend

import (
	"fmt"
	"sort"
	"strings"
)

// fallbackQualityFloor is the strict quality cut for the genre-only
// retry tier.
const fallbackQualityFloor = 5.5

// fallbackGenres is the small table used by the genre-only retry. It
// is intentionally simpler than the mood and emotion tables of the
// primary scorer; the tier only needs a coarse direction.
var fallbackGenres = map[string][]string{
	"sad":      {"comedy", "family"},
	"stressed": {"comedy", "family"},
	"angry":    {"comedy", "romance"},
	"fearful":  {"comedy", "family"},
	"excited":  {"action", "adventure"},
	"happy":    {"comedy", "adventure"},
	"bored":    {"action", "thriller"},
}

// defaultFallbackGenres covers packets with no mood or emotion at all.
var defaultFallbackGenres = []string{"comedy", "drama", "romance"}

// fallbackGenreOnly rescores the catalog using only genre matches and
// the quality baseline, with a strict quality floor. The genre set is
// derived from the packet's emotion first, then mood, then a broad
// default. Titles in skip are excluded.
func fallbackGenreOnly(snap *Snapshot, p *PreferencePacket, skip map[string]struct{}) []ScoredCandidate {
	genres := defaultFallbackGenres
	if set, ok := fallbackGenres[strings.ToLower(p.Emotion)]; ok {
		genres = set
	} else if set, ok := fallbackGenres[strings.ToLower(p.Mood)]; ok {
		genres = set
	}

	movies := snap.Store.Movies()
	out := make([]ScoredCandidate, 0, len(movies))
	for i := range movies {
		m := &movies[i]
		if _, shown := skip[strings.ToLower(m.Title)]; shown {
			continue
		}
		if m.QualityScore <= fallbackQualityFloor {
			continue
		}

		movieGenres := lowerAll(m.Genres)
		var (
			score   float64
			reasons []string
		)
		for _, want := range genres {
			if matchesAnyGenre(movieGenres, want) {
				score += genreMatchBonus
				reasons = append(reasons, fmt.Sprintf("matches %s", want))
			}
		}
		if score == 0 {
			continue
		}

		switch {
		case m.QualityScore > 7.5:
			score += qualityBonusHigh
		case m.QualityScore > 6.5:
			score += qualityBonusGood
		default:
			score += qualityBonusFair
		}
		reasons = append(reasons, fmt.Sprintf("rated %.1f", m.QualityScore))

		out = append(out, ScoredCandidate{Movie: m, Score: score, Reasons: reasons})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Movie.Index < out[b].Movie.Index
	})
	return out
}

// fallbackQualityOnly ignores every preference signal and ranks the
// catalog purely by quality score, ties broken by catalog index.
// Titles in skip are excluded; pass nil to rank the whole catalog.
func fallbackQualityOnly(snap *Snapshot, skip map[string]struct{}) []ScoredCandidate {
	movies := snap.Store.Movies()
	out := make([]ScoredCandidate, 0, len(movies))
	for i := range movies {
		m := &movies[i]
		if _, shown := skip[strings.ToLower(m.Title)]; shown {
			continue
		}
		out = append(out, ScoredCandidate{
			Movie:   m,
			Score:   m.QualityScore,
			Reasons: []string{fmt.Sprintf("among the best rated (%.1f)", m.QualityScore)},
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Score != out[b].Score {
			return out[a].Score > out[b].Score
		}
		return out[a].Movie.Index < out[b].Movie.Index
	})
	return out
}
