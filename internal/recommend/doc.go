// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

// Package recommend implements the recommendation core: a hybrid
// preference scorer over the catalog, a diversity selector that keeps
// result sets from collapsing into near-duplicates, and a fallback
// ladder that guarantees a full result list whenever the catalog is
// non-empty.
//
// The Engine owns an immutable Snapshot (catalog store plus similarity
// index) behind an atomic pointer. Requests read whichever snapshot
// was current when they started; catalog reloads build a fresh
// snapshot and swap it in without blocking in-flight requests.
//
// Scoring is fully deterministic. The only randomness in the package
// is an optional seeded shuffle of same-score ties before diversity
// selection, used to vary repeat answers within a conversation.
package recommend
