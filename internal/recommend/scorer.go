// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package recommend

import (
	"fmt"
	"strings"

	"github.com/tomtom215/moviebuddy/internal/catalog"
)

// Scoring weights. These are design constants, not runtime tunables;
// changing one shifts the balance between every signal, so they only
// move together with the tests that pin the ranking scenarios.
const (
	qualityBonusHigh = 5.0 // quality score above 7.5
	qualityBonusGood = 4.0 // above 6.5
	qualityBonusFair = 3.0 // above 5.5
	qualityBonusBase = 1.0 // everything else still participates

	genreMatchBonus     = 6.0
	genreExcludePenalty = 3.0
	emotionSteerBonus   = 4.0
	directorBonus       = 3.0
	eraMatchBonus       = 2.0
	eraEarlyBonus       = 1.0
	referenceScale      = 6.0
)

// actorBillingBonus decays with billing position and floors at the
// last entry for anyone billed deeper.
var actorBillingBonus = [...]float64{3.0, 2.0, 1.0}

// moodGenres expands a stated mood into desired genres when the user
// gave no explicit genres. The sad row steers toward uplifting picks
// rather than matching the mood.
var moodGenres = map[string][]string{
	"sad":         {"comedy", "family", "animation"},
	"happy":       {"comedy", "adventure", "family"},
	"romantic":    {"romance", "drama"},
	"excited":     {"action", "adventure", "thriller"},
	"bored":       {"action", "thriller", "mystery"},
	"nostalgic":   {"drama", "family", "musical"},
	"stressed":    {"comedy", "family", "animation"},
	"adventurous": {"adventure", "action", "fantasy"},
	"thoughtful":  {"drama", "documentary", "biography"},
}

// emotionGenres steers scoring from the detected emotional state,
// independent of and additive with any requested genres.
var emotionGenres = map[string][]string{
	"excited":  {"action", "adventure", "thriller", "sci-fi"},
	"angry":    {"comedy", "family", "romance", "animation"},
	"stressed": {"comedy", "family", "romance", "animation"},
	"sad":      {"comedy", "family", "animation", "musical"},
	"fearful":  {"comedy", "family", "animation"},
	"happy":    {"comedy", "adventure", "musical"},
	"calm":     {"drama", "documentary", "romance"},
}

// eraRanges maps the era vocabulary to inclusive year ranges.
var eraRanges = map[string][2]int{
	"classic": {1920, 1979},
	"80s":     {1980, 1989},
	"90s":     {1990, 1999},
	"2000s":   {2000, 2009},
	"2010s":   {2010, 2019},
	"2020s":   {2020, 2029},
	"modern":  {2010, 2029},
}

// scorer holds the per-request derived state of a scoring pass. It is
// built once from the snapshot and packet, then applied to every
// movie, so per-movie work stays allocation-light and deterministic.
type scorer struct {
	snap *Snapshot

	genres   []string // lowercased, mood-derived when packet genres empty
	excluded []string
	moodUsed bool

	emotion      string
	emotionSet   []string
	actors       []string // lowercased
	directors    []string
	eraLo, eraHi int
	eraMid       int
	eraName      string
	refIndex     int // -1 when unset or unresolved
	refTitle     string
}

// newScorer derives the effective signal sets for one request. A
// reference title that fails to resolve is absorbed here, never
// surfaced as an error.
func newScorer(snap *Snapshot, p *PreferencePacket) *scorer {
	s := &scorer{
		snap:      snap,
		excluded:  lowerAll(p.ExcludedGenres),
		actors:    lowerAll(p.Actors),
		directors: lowerAll(p.Directors),
		refIndex:  -1,
	}

	s.genres = lowerAll(p.Genres)
	if len(s.genres) == 0 && p.Mood != "" {
		if derived, ok := moodGenres[strings.ToLower(p.Mood)]; ok {
			s.genres = derived
			s.moodUsed = true
		}
	}

	if p.Emotion != "" {
		s.emotion = strings.ToLower(p.Emotion)
		s.emotionSet = emotionGenres[s.emotion]
	}

	if p.Era != "" {
		if r, ok := eraRanges[strings.ToLower(p.Era)]; ok {
			s.eraName = strings.ToLower(p.Era)
			s.eraLo, s.eraHi = r[0], r[1]
			s.eraMid = r[0] + (r[1]-r[0])/2
		}
	}

	if p.ReferenceTitle != "" {
		if idx, err := snap.Store.FindTitle(p.ReferenceTitle); err == nil {
			s.refIndex = idx
			if m, err := snap.Store.ByIndex(idx); err == nil {
				s.refTitle = m.Title
			}
		}
	}

	return s
}

// score sums the independent contributions for one movie and records
// a reason per contribution that fired. The third result reports
// whether anything beyond the quality baseline matched.
func (s *scorer) score(m *catalog.Movie) (float64, []string, bool) {
	var (
		total   float64
		reasons []string
		matched bool
	)

	movieGenres := lowerAll(m.Genres)

	// Quality baseline.
	switch {
	case m.QualityScore > 7.5:
		total += qualityBonusHigh
		reasons = append(reasons, fmt.Sprintf("highly rated (%.1f)", m.QualityScore))
	case m.QualityScore > 6.5:
		total += qualityBonusGood
		reasons = append(reasons, fmt.Sprintf("well rated (%.1f)", m.QualityScore))
	case m.QualityScore > 5.5:
		total += qualityBonusFair
		reasons = append(reasons, fmt.Sprintf("decently rated (%.1f)", m.QualityScore))
	default:
		total += qualityBonusBase
	}

	// Genre matches, including mood-derived genres.
	for _, want := range s.genres {
		if matchesAnyGenre(movieGenres, want) {
			total += genreMatchBonus
			matched = true
			if s.moodUsed {
				reasons = append(reasons, fmt.Sprintf("%s fits your mood", want))
			} else {
				reasons = append(reasons, fmt.Sprintf("matches %s", want))
			}
		}
	}
	for _, avoid := range s.excluded {
		if matchesAnyGenre(movieGenres, avoid) {
			total -= genreExcludePenalty
		}
	}

	// Emotion steering.
	if len(s.emotionSet) > 0 {
		for _, want := range s.emotionSet {
			if matchesAnyGenre(movieGenres, want) {
				total += emotionSteerBonus
				matched = true
				reasons = append(reasons, fmt.Sprintf("good %s pick when feeling %s", want, s.emotion))
				break
			}
		}
	}

	// Cast match with billing decay.
	for _, want := range s.actors {
		for pos, actor := range m.Actors {
			if strings.ToLower(actor) == want {
				bonus := actorBillingBonus[len(actorBillingBonus)-1]
				if pos < len(actorBillingBonus) {
					bonus = actorBillingBonus[pos]
				}
				total += bonus
				matched = true
				reasons = append(reasons, fmt.Sprintf("stars %s", actor))
				break
			}
		}
	}
	for _, want := range s.directors {
		for _, director := range m.Directors {
			if strings.ToLower(director) == want {
				total += directorBonus
				matched = true
				reasons = append(reasons, fmt.Sprintf("directed by %s", director))
				break
			}
		}
	}

	// Era match, with an extra nudge for the first half of the range.
	if s.eraHi > 0 && m.Year >= s.eraLo && m.Year <= s.eraHi {
		total += eraMatchBonus
		matched = true
		reasons = append(reasons, fmt.Sprintf("from the %s era (%d)", s.eraName, m.Year))
		if m.Year <= s.eraMid {
			total += eraEarlyBonus
		}
	}

	// Reference-title similarity, scaled into the common bonus range.
	if s.refIndex >= 0 && m.Index != s.refIndex {
		if sim, err := s.snap.Index.Score(m.Index, s.refIndex); err == nil && sim > 0 {
			total += sim * referenceScale
			matched = true
			if sim >= 0.2 {
				reasons = append(reasons, fmt.Sprintf("similar to %s", s.refTitle))
			}
		}
	}

	return total, reasons, matched
}

// scoreCatalog runs the scorer over every movie and keeps candidates
// with a positive score, ordered by catalog index.
func scoreCatalog(snap *Snapshot, p *PreferencePacket) []ScoredCandidate {
	movies := snap.Store.Movies()
	sc := newScorer(snap, p)

	out := make([]ScoredCandidate, 0, len(movies))
	for i := range movies {
		m := &movies[i]
		if sc.refIndex >= 0 && m.Index == sc.refIndex {
			continue
		}
		score, reasons, matched := sc.score(m)
		if score <= 0 {
			continue
		}
		out = append(out, ScoredCandidate{Movie: m, Score: score, Reasons: reasons, Matched: matched})
	}
	return out
}

// matchesAnyGenre reports whether the wanted genre substring-matches
// any movie genre. Matching is loose on purpose so that extractor
// vocabulary ("sci") still hits catalog tags ("Sci-Fi").
func matchesAnyGenre(movieGenres []string, want string) bool {
	for _, g := range movieGenres {
		if strings.Contains(g, want) || strings.Contains(want, g) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
