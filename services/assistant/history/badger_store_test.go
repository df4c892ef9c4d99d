// Copyright (C) 2025 STOLF LTDA (dev@stolfltda.com.br)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package history

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func newTestBadgerStore(t *testing.T, ttl time.Duration) *BadgerStore {
	t.Helper()
	db, err := OpenBadger("")
	if err != nil {
		t.Fatalf("opening in-memory badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewBadgerStore(db, ttl)
}

func TestBadgerStoreAppendAndRecent(t *testing.T) {
	ctx := context.Background()
	s := newTestBadgerStore(t, 0)

	if err := s.Append(ctx, "s1", "Usuário: oi"); err != nil {
		t.Fatalf("Append() returned error: %v", err)
	}
	if err := s.Append(ctx, "s1", "IA: olá"); err != nil {
		t.Fatalf("Append() returned error: %v", err)
	}

	turns, err := s.Recent(ctx, "s1", 6)
	if err != nil {
		t.Fatalf("Recent() returned error: %v", err)
	}
	if len(turns) != 2 || turns[0] != "Usuário: oi" || turns[1] != "IA: olá" {
		t.Errorf("Recent() = %v", turns)
	}
}

func TestBadgerStoreMissingSessionIsEmpty(t *testing.T) {
	s := newTestBadgerStore(t, 0)

	turns, err := s.Recent(context.Background(), "nobody", 6)
	if err != nil {
		t.Fatalf("Recent() returned error: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Recent() = %v, want empty", turns)
	}
}

func TestBadgerStoreBoundsSessionSize(t *testing.T) {
	ctx := context.Background()
	s := newTestBadgerStore(t, 0)

	for i := 0; i < MaxTurnsPerSession+5; i++ {
		if err := s.Append(ctx, "s", fmt.Sprintf("turn %d", i)); err != nil {
			t.Fatalf("Append() returned error: %v", err)
		}
	}

	turns, err := s.Recent(ctx, "s", MaxTurnsPerSession*2)
	if err != nil {
		t.Fatalf("Recent() returned error: %v", err)
	}
	if len(turns) != MaxTurnsPerSession {
		t.Errorf("session holds %d turns, want cap %d", len(turns), MaxTurnsPerSession)
	}
	if turns[0] != "turn 5" {
		t.Errorf("oldest surviving turn = %q, want turn 5", turns[0])
	}
}

func TestBadgerStoreExpiredSessionReadsEmpty(t *testing.T) {
	ctx := context.Background()
	s := newTestBadgerStore(t, time.Second)

	if err := s.Append(ctx, "fleeting", "Usuário: oi"); err != nil {
		t.Fatalf("Append() returned error: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)

	turns, err := s.Recent(ctx, "fleeting", 6)
	if err != nil {
		t.Fatalf("Recent() after expiry returned error: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("Recent() after expiry = %v, want empty", turns)
	}
}

func TestBadgerStoreSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestBadgerStore(t, 0)

	s.Append(ctx, "a", "Usuário: de a")
	s.Append(ctx, "b", "Usuário: de b")

	turns, _ := s.Recent(ctx, "a", 10)
	if len(turns) != 1 || turns[0] != "Usuário: de a" {
		t.Errorf("session a sees foreign turns: %v", turns)
	}
}
