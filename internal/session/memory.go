// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package session

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/moviebuddy/internal/metrics"
)

// MemoryStore keeps session memory in process. Suitable for a single
// instance; state is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*record
	ttl      time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore builds an in-memory store and starts a janitor that
// drops sessions idle longer than ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &MemoryStore{
		sessions: make(map[string]*record),
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Shown implements Store.
func (s *MemoryStore) Shown(_ context.Context, sessionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[sessionID]
	if !ok || time.Since(rec.UpdatedAt) > s.ttl {
		return nil, nil
	}
	out := make([]string, len(rec.Titles))
	copy(out, rec.Titles)
	return out, nil
}

// MarkShown implements Store.
func (s *MemoryStore) MarkShown(_ context.Context, sessionID string, titles []string) error {
	if sessionID == "" || len(titles) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok || time.Since(rec.UpdatedAt) > s.ttl {
		rec = &record{}
		s.sessions[sessionID] = rec
	}
	rec.appendNew(titles)
	rec.UpdatedAt = time.Now()
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	metrics.SessionsActive.Set(float64(len(s.sessions)))
	return nil
}

// Close stops the janitor.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

// Len reports live (non-expired) sessions. Used by health reporting
// and tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, rec := range s.sessions {
		if time.Since(rec.UpdatedAt) <= s.ttl {
			n++
		}
	}
	return n
}

func (s *MemoryStore) janitor() {
	interval := s.ttl / 4
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range s.sessions {
		if time.Since(rec.UpdatedAt) > s.ttl {
			delete(s.sessions, id)
		}
	}
	metrics.SessionsActive.Set(float64(len(s.sessions)))
}
