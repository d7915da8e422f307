// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is a lightweight session layer used for ephemeral games,
// primarily in development/testing, or when running a single instance.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Concurrency-safe via a mutex; Get also writes (it refreshes the idle timer).
//   - Idle sessions older than the TTL are dropped lazily on Get/Save.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/tenpair/internal/game"
)

// ErrNotFound is returned by Get for unknown or expired session IDs.
var ErrNotFound = errors.New("store: session not found")

// Store defines the persistence interface for game sessions.
// Implementations are backed by memory (this file) or Redis (redis.go).
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session is unknown or expired.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Delete drops a session. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}

type memEntry struct {
	s       *game.Session
	touched time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.Mutex           // guards sessions
	sessions map[string]*memEntry // keyed by Session.ID
	ttl      time.Duration        // 0 keeps sessions forever
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore(ttl time.Duration) Store {
	return &memory{sessions: make(map[string]*memEntry), ttl: ttl, now: time.Now}
}

// Save adds or updates the session and refreshes its idle timer.
func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.sessions[s.ID] = &memEntry{s: s, touched: m.now()}
	return nil
}

// Get looks up a session by ID. A hit counts as activity and restarts the
// idle timer.
func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if m.expired(e) {
		delete(m.sessions, id)
		return nil, ErrNotFound
	}
	e.touched = m.now()
	return e.s, nil
}

// Delete removes the session if present.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) expired(e *memEntry) bool {
	return m.ttl > 0 && m.now().Sub(e.touched) > m.ttl
}

// sweep drops expired entries. Caller holds the write lock.
func (m *memory) sweep() {
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
		}
	}
}
