// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package recommend

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviebuddy/internal/catalog"
	"github.com/tomtom215/moviebuddy/internal/logging"
	"github.com/tomtom215/moviebuddy/internal/similarity"
)

// Options configures an Engine.
type Options struct {
	// DefaultK is used when a request does not specify a result count.
	DefaultK int
	// MaxK caps the result count of any single request.
	MaxK int
	// ShuffleTies enables shuffling of same-score ties before
	// diversity selection, so repeat requests in a conversation can
	// vary. Scoring itself stays deterministic.
	ShuffleTies bool
	// Seed seeds the tie shuffler. Zero picks a time-based seed.
	Seed int64
}

// DefaultOptions returns the options used when a zero Options is
// passed to NewEngine.
func DefaultOptions() Options {
	return Options{
		DefaultK: 5,
		MaxK:     20,
	}
}

// Stats is a point-in-time view of engine counters for health
// reporting.
type Stats struct {
	Requests        uint64 `json:"requests"`
	FallbackServed  uint64 `json:"fallback_served"`
	CatalogSize     int    `json:"catalog_size"`
	CatalogVersion  uint64 `json:"catalog_version"`
	IndexDegenerate bool   `json:"index_degenerate"`
}

// Engine serves recommendation requests against an immutable snapshot
// of the catalog and its similarity index. All methods are safe for
// concurrent use; Swap installs a new snapshot atomically while
// in-flight requests finish against the old one.
type Engine struct {
	opts   Options
	logger zerolog.Logger

	snap    atomic.Pointer[Snapshot]
	version atomic.Uint64

	rng   *rand.Rand
	rngMu sync.Mutex

	requests       atomic.Uint64
	fallbackServed atomic.Uint64
}

// NewEngine builds an engine around the given catalog and index.
func NewEngine(store *catalog.Store, index *similarity.Index, opts Options) *Engine {
	if opts.DefaultK <= 0 {
		opts.DefaultK = DefaultOptions().DefaultK
	}
	if opts.MaxK <= 0 {
		opts.MaxK = DefaultOptions().MaxK
	}

	e := &Engine{
		opts:   opts,
		logger: logging.With().Str("component", "recommend").Logger(),
	}
	if opts.ShuffleTies {
		seed := opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		e.rng = rand.New(rand.NewSource(seed))
	}
	e.Swap(store, index)
	return e
}

// Snapshot returns the snapshot new requests are currently served
// from.
func (e *Engine) Snapshot() *Snapshot {
	return e.snap.Load()
}

// Swap installs a freshly built catalog and index as the current
// snapshot and returns it. Requests already running keep their old
// snapshot.
func (e *Engine) Swap(store *catalog.Store, index *similarity.Index) *Snapshot {
	snap := &Snapshot{
		Store:   store,
		Index:   index,
		Version: e.version.Add(1),
		BuiltAt: time.Now().UTC(),
	}
	e.snap.Store(snap)
	e.logger.Info().
		Uint64("version", snap.Version).
		Int("movies", store.Len()).
		Bool("degenerate_index", index.Degenerate()).
		Msg("Catalog snapshot installed")
	return snap
}

// Stats returns current engine counters.
func (e *Engine) Stats() Stats {
	snap := e.snap.Load()
	return Stats{
		Requests:        e.requests.Load(),
		FallbackServed:  e.fallbackServed.Load(),
		CatalogSize:     snap.Store.Len(),
		CatalogVersion:  snap.Version,
		IndexDegenerate: snap.Index.Degenerate(),
	}
}

// Recommend runs the full pipeline for one request: hybrid scoring,
// diversity selection, then the fallback ladder until the result holds
// min(k, catalog size) movies. An empty catalog yields an empty
// response; it is the only case that does.
func (e *Engine) Recommend(req *Request) *Response {
	e.requests.Add(1)
	snap := e.snap.Load()

	resp := &Response{
		Tier:           TierPrimary,
		CatalogVersion: snap.Version,
	}
	if snap.Store.Len() == 0 {
		resp.Items = []Item{}
		return resp
	}

	k := req.K
	if k <= 0 {
		k = e.opts.DefaultK
	}
	if k > e.opts.MaxK {
		k = e.opts.MaxK
	}
	if k > snap.Store.Len() {
		k = snap.Store.Len()
	}

	shown := make(map[string]struct{}, len(req.AlreadyShown))
	for _, t := range req.AlreadyShown {
		shown[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}

	// When the packet carries signals, primary selection only
	// considers candidates that matched at least one of them; a
	// catalog of baseline-only scores means nothing fit and the
	// fallback ladder takes over. An empty packet ranks everything
	// by the quality baseline alone.
	hasSignal := !req.Preferences.Empty()
	candidates := scoreCatalog(snap, &req.Preferences)
	eligible := candidates[:0:0]
	for _, c := range candidates {
		if _, ok := shown[strings.ToLower(c.Movie.Title)]; ok {
			continue
		}
		if hasSignal && !c.Matched {
			continue
		}
		eligible = append(eligible, c)
	}

	picked := selectDiverse(eligible, k, e.requestRNG())
	for _, c := range picked {
		resp.Items = append(resp.Items, Item{
			Movie:   *c.Movie,
			Score:   c.Score,
			Reasons: c.Reasons,
			Tier:    TierPrimary,
		})
	}

	if len(resp.Items) < k {
		e.fallbackServed.Add(1)
		e.fill(resp, snap, &req.Preferences, k, shown)
		e.logger.Debug().
			Str("tier", string(resp.Tier)).
			Int("results", len(resp.Items)).
			Int("requested", k).
			Msg("Fallback ladder engaged")
	}

	if resp.Items == nil {
		resp.Items = []Item{}
	}
	return resp
}

// fill walks the fallback ladder until the response holds k items.
// The final quality pass ignores already-shown titles if honoring them
// would leave the response short; a repeat beats an empty slot.
func (e *Engine) fill(resp *Response, snap *Snapshot, p *PreferencePacket, k int, shown map[string]struct{}) {
	taken := make(map[string]struct{}, len(resp.Items))
	for _, it := range resp.Items {
		taken[strings.ToLower(it.Movie.Title)] = struct{}{}
	}
	skip := func(title string, honorShown bool) bool {
		key := strings.ToLower(title)
		if _, ok := taken[key]; ok {
			return true
		}
		if honorShown {
			if _, ok := shown[key]; ok {
				return true
			}
		}
		return false
	}
	add := func(c ScoredCandidate, tier Tier) {
		resp.Items = append(resp.Items, Item{
			Movie:   *c.Movie,
			Score:   c.Score,
			Reasons: c.Reasons,
			Tier:    tier,
		})
		taken[strings.ToLower(c.Movie.Title)] = struct{}{}
		resp.Tier = tier
	}

	for _, c := range fallbackGenreOnly(snap, p, shown) {
		if len(resp.Items) >= k {
			return
		}
		if skip(c.Movie.Title, true) {
			continue
		}
		add(c, TierGenreFallback)
	}

	for _, c := range fallbackQualityOnly(snap, shown) {
		if len(resp.Items) >= k {
			return
		}
		if skip(c.Movie.Title, true) {
			continue
		}
		add(c, TierQualityFallback)
	}

	for _, c := range fallbackQualityOnly(snap, nil) {
		if len(resp.Items) >= k {
			return
		}
		if skip(c.Movie.Title, false) {
			continue
		}
		add(c, TierQualityFallback)
	}
}

// SimilarTo resolves a title and returns up to k catalog neighbors
// ranked by content similarity. Returns catalog.ErrNotFound when the
// title does not resolve.
func (e *Engine) SimilarTo(title string, k int) (*catalog.Movie, []SimilarMovie, error) {
	snap := e.snap.Load()

	idx, err := snap.Store.FindTitle(title)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving %q: %w", title, err)
	}
	ref, err := snap.Store.ByIndex(idx)
	if err != nil {
		return nil, nil, err
	}

	if k <= 0 {
		k = e.opts.DefaultK
	}
	if k > e.opts.MaxK {
		k = e.opts.MaxK
	}

	neighbors, err := snap.Index.SimilarTo(idx, k)
	if err != nil {
		return nil, nil, err
	}

	out := make([]SimilarMovie, 0, len(neighbors))
	for _, n := range neighbors {
		m, err := snap.Store.ByIndex(n.Index)
		if err != nil {
			continue
		}
		out = append(out, SimilarMovie{Movie: *m, Similarity: n.Score})
	}
	return ref, out, nil
}

// requestRNG hands out a per-request tie shuffler, or nil when
// shuffling is disabled.
func (e *Engine) requestRNG() *rand.Rand {
	if e.rng == nil {
		return nil
	}
	e.rngMu.Lock()
	seed := e.rng.Int63()
	e.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}
