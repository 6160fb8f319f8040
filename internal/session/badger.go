// MovieBuddy - Conversational Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebuddy

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/moviebuddy/internal/logging"
)

const sessionKeyPrefix = "session:"

// BadgerStore keeps session memory in BadgerDB so conversations
// survive restarts. Expiry is delegated to badger entry TTLs.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore opens (or creates) a badger database at path.
func NewBadgerStore(path string, ttl time.Duration) (*BadgerStore, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	logging.Debug().Str("path", path).Dur("ttl", ttl).Msg("Badger session store opened")
	return &BadgerStore{db: db, ttl: ttl}, nil
}

// Shown implements Store.
func (s *BadgerStore) Shown(_ context.Context, sessionID string) ([]string, error) {
	var rec record

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(sessionKeyPrefix + sessionID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec.Titles, nil
}

// MarkShown implements Store.
func (s *BadgerStore) MarkShown(ctx context.Context, sessionID string, titles []string) error {
	if sessionID == "" || len(titles) == 0 {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(sessionKeyPrefix + sessionID)

		var rec record
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			// New session.
		case err != nil:
			return fmt.Errorf("get session: %w", err)
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode session: %w", err)
			}
		}

		rec.appendNew(titles)
		rec.UpdatedAt = time.Now()

		data, err := json.Marshal(&rec)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		entry := badger.NewEntry(key, data).WithTTL(s.ttl)
		return txn.SetEntry(entry)
	})
}

// Clear implements Store.
func (s *BadgerStore) Clear(_ context.Context, sessionID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(sessionKeyPrefix + sessionID))
	})
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
