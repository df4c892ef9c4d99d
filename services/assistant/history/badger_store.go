// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

// badgerKeyPrefix versions the storage layout so a future format change
// cannot collide with existing keys.
const badgerKeyPrefix = "sophos/hist/v1/"

// DefaultSessionTTL is how long a persisted session history lives.
// Expired keys return ErrKeyNotFound, which reads treat as an empty
// history rather than an error.
const DefaultSessionTTL = 24 * time.Hour

// BadgerStore persists session histories in BadgerDB so conversations
// survive service restarts.
//
// Description:
//
//	Each session's turns are stored as one gob-encoded []string under
//	sophos/hist/v1/<session>. Appends rewrite the whole list; histories
//	are capped at MaxTurnsPerSession so the value stays small. TTL is
//	refreshed on every append.
//
// Thread Safety: Safe for concurrent use; BadgerDB transactions provide
// the isolation.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore wraps an open BadgerDB handle. A non-positive ttl
// falls back to DefaultSessionTTL.
func NewBadgerStore(db *badger.DB, ttl time.Duration) *BadgerStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &BadgerStore{db: db, ttl: ttl}
}

// OpenBadger opens the history database at dir with logging disabled.
// An empty dir opens an in-memory database, used by tests.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("history: opening badger at %q: %w", dir, err)
	}
	return db, nil
}

// Append implements Store.
func (s *BadgerStore) Append(_ context.Context, session, turn string) error {
	key := []byte(badgerKeyPrefix + session)

	return s.db.Update(func(txn *badger.Txn) error {
		turns, err := readTurns(txn, key)
		if err != nil {
			return err
		}
		turns = append(turns, turn)
		if len(turns) > MaxTurnsPerSession {
			turns = turns[len(turns)-MaxTurnsPerSession:]
		}

		raw, err := encodeTurns(turns)
		if err != nil {
			return err
		}
		entry := badger.NewEntry(key, raw).WithTTL(s.ttl)
		if err := txn.SetEntry(entry); err != nil {
			return fmt.Errorf("history: writing session %q: %w", session, err)
		}
		return nil
	})
}

// Recent implements Store.
func (s *BadgerStore) Recent(_ context.Context, session string, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	key := []byte(badgerKeyPrefix + session)

	var turns []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		turns, err = readTurns(txn, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns, nil
}

// readTurns loads and decodes a session's turn list. A missing or
// expired key yields an empty list.
func readTurns(txn *badger.Txn, key []byte) ([]string, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("history: reading %q: %w", string(key), err)
	}

	var turns []string
	err = item.Value(func(val []byte) error {
		return gob.NewDecoder(bytes.NewReader(val)).Decode(&turns)
	})
	if err != nil {
		return nil, fmt.Errorf("history: decoding %q: %w", string(key), err)
	}
	return turns, nil
}

func encodeTurns(turns []string) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(turns); err != nil {
		return nil, fmt.Errorf("history: encoding turns: %w", err)
	}
	return buf.Bytes(), nil
}
