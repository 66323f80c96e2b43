// Package session keeps one grid.Table per browser session.
//
// A grid.Table is single-owner, so the store serializes every access to a
// session's table behind that session's own mutex. Idle sessions are evicted
// by a janitor goroutine started with Run.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tokengrid/internal/grid"
)

// ErrNotFound is returned for unknown or expired session IDs.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is used when NewStore is given a non-positive TTL.
const DefaultTTL = 30 * time.Minute

// Factory builds the table for a new session. It must not call back into
// the Store.
type Factory func() (*grid.Table, error)

// Store maps session IDs to tables.
type Store struct {
	factory Factory
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

type entry struct {
	mu       sync.Mutex
	table    *grid.Table
	lastSeen time.Time
}

// NewStore creates a store that builds tables with factory and forgets
// sessions idle longer than ttl.
func NewStore(factory Factory, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		factory:  factory,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new session and returns its ID. The factory runs under
// the store lock, so an Each that starts after the factory has read shared
// state waits for the session and reaches it.
func (s *Store) Create() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.factory()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	s.sessions[id] = &entry{table: table, lastSeen: s.now()}
	return id, nil
}

// Ensure returns id when it names a live session, otherwise a fresh session.
// created reports whether a new session was started.
func (s *Store) Ensure(id string) (sid string, created bool, err error) {
	if s.lookup(id) != nil {
		return id, false, nil
	}
	sid, err = s.Create()
	if err != nil {
		return "", false, err
	}
	return sid, true, nil
}

// With runs fn with exclusive access to the session's table.
func (s *Store) With(id string, fn func(t *grid.Table) error) error {
	e := s.lookup(id)
	if e == nil {
		return ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.lastSeen = s.now()
	return fn(e.table)
}

// Each runs fn for every live session, one at a time.
func (s *Store) Each(fn func(id string, t *grid.Table)) {
	s.mu.Lock()
	snapshot := make(map[string]*entry, len(s.sessions))
	for id, e := range s.sessions {
		snapshot[id] = e
	}
	s.mu.Unlock()

	for id, e := range snapshot {
		e.mu.Lock()
		fn(id, e.table)
		e.mu.Unlock()
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict removes sessions idle longer than the TTL and returns how many
// were removed.
func (s *Store) Evict() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		// Skip sessions currently in use.
		if !e.mu.TryLock() {
			continue
		}
		stale := e.lastSeen.Before(cutoff)
		e.mu.Unlock()

		if stale {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run evicts idle sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Evict(); n > 0 {
				slog.Debug("evicted idle sessions", "count", n, "remaining", s.Len())
			}
		}
	}
}

func (s *Store) lookup(id string) *entry {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}
