// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package history stores per-session conversation turns for prompt
// context. Turns are plain strings in the "Usuário: ..." / "IA: ..."
// format the prompt layer expects.
package history

import (
	"context"
	"sync"
	"time"
)

// DefaultSession is the session ID used by callers that do not manage
// sessions, such as the console mode. All such callers share one history.
const DefaultSession = "default"

const (
	// MaxTurnsPerSession bounds a session's history; older turns are evicted.
	MaxTurnsPerSession = 50

	// sessionIdleTTL is how long an untouched session survives in memory.
	sessionIdleTTL = 2 * time.Hour
)

// Store records and retrieves conversation turns per session.
type Store interface {
	// Append adds one turn to the session's history.
	Append(ctx context.Context, session, turn string) error

	// Recent returns up to n most recent turns, oldest first.
	Recent(ctx context.Context, session string, n int) ([]string, error)
}

// MemoryStore is an in-process Store with bounded per-session history
// and idle-session eviction.
//
// Thread Safety: Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionHistory
	now      func() time.Time
}

type sessionHistory struct {
	turns     []string
	lastTouch time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*sessionHistory),
		now:      time.Now,
	}
}

// Append implements Store.
func (s *MemoryStore) Append(_ context.Context, session, turn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictIdleLocked(now)

	h := s.sessions[session]
	if h == nil {
		h = &sessionHistory{}
		s.sessions[session] = h
	}
	h.turns = append(h.turns, turn)
	if len(h.turns) > MaxTurnsPerSession {
		h.turns = h.turns[len(h.turns)-MaxTurnsPerSession:]
	}
	h.lastTouch = now
	return nil
}

// Recent implements Store.
func (s *MemoryStore) Recent(_ context.Context, session string, n int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h := s.sessions[session]
	if h == nil || n <= 0 {
		return nil, nil
	}
	turns := h.turns
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	out := make([]string, len(turns))
	copy(out, turns)
	return out, nil
}

// evictIdleLocked drops sessions untouched for longer than the idle TTL.
// Caller must hold the write lock.
func (s *MemoryStore) evictIdleLocked(now time.Time) {
	for id, h := range s.sessions {
		if now.Sub(h.lastTouch) > sessionIdleTTL {
			delete(s.sessions, id)
		}
	}
}
