// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

// Package session tracks which titles a conversation has already been
// shown, so multi-turn requests stop repeating recommendations.
// Sessions are keyed by an opaque ID and never share state. Two
// backends exist: an in-memory store with a TTL janitor, and a
// BadgerDB store that survives restarts.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by lookups for unknown or expired
// session IDs.
var ErrSessionNotFound = errors.New("session not found")

// DefaultTTL is the session lifetime used when a store is built with
// a zero TTL.
const DefaultTTL = 2 * time.Hour

// Store is the per-conversation shown-title memory.
type Store interface {
	// Shown returns the titles already recommended to the session,
	// in the order they were recorded. Unknown sessions yield an
	// empty list, not an error.
	Shown(ctx context.Context, sessionID string) ([]string, error)
	// MarkShown appends titles to the session's memory, refreshing
	// its TTL. Duplicate titles are kept out.
	MarkShown(ctx context.Context, sessionID string, titles []string) error
	// Clear forgets a session entirely.
	Clear(ctx context.Context, sessionID string) error
	// Close releases backend resources.
	Close() error
}

// record is the stored value for one session.
type record struct {
	Titles    []string  `json:"titles"`
	UpdatedAt time.Time `json:"updated_at"`
}

// appendNew merges titles into the record, skipping ones already
// present (case-sensitive; callers normalize if they need to).
func (r *record) appendNew(titles []string) {
	seen := make(map[string]struct{}, len(r.Titles))
	for _, t := range r.Titles {
		seen[t] = struct{}{}
	}
	for _, t := range titles {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		r.Titles = append(r.Titles, t)
	}
}
