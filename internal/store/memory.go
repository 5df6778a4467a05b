// internal/store/memory.go
//
// In-memory implementation of the GameStore interface.
// Holds one Grid Chase game per browser session.
//
// Characteristics:
//   - Stores *game.Game objects keyed by session ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Get/Update hand out copies, so a handler mutating its game cannot race
//     with another request for the same session.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/aswathmantle-create/game/internal/game"
)

// ErrNotFound is returned when a key has no entry.
var ErrNotFound = errors.New("not found")

// GameStore defines the persistence interface for game sessions.
type GameStore interface {
	// Get retrieves the game for a session.
	// Returns ErrNotFound if the session has no game.
	Get(ctx context.Context, sessionID string) (*game.Game, error)

	// Update applies fn to the session's game under the write lock, creating
	// it with create() first when missing. It returns a copy of the result.
	Update(ctx context.Context, sessionID string, create func() *game.Game, fn func(*game.Game)) (*game.Game, error)
}

// memory is an in-memory map-based GameStore implementation.
type memory struct {
	mu    sync.RWMutex          // guards games map
	games map[string]*game.Game // keyed by session ID
}

// NewMemoryStore constructs a new in-memory GameStore.
func NewMemoryStore() GameStore {
	return &memory{games: make(map[string]*game.Game)}
}

// Get looks up a game by session ID.
func (m *memory) Get(ctx context.Context, sessionID string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[sessionID]; ok {
		return g.Clone(), nil
	}
	return nil, ErrNotFound
}

// Update runs fn against the stored game while holding the write lock.
func (m *memory) Update(ctx context.Context, sessionID string, create func() *game.Game, fn func(*game.Game)) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[sessionID]
	if !ok {
		if create == nil {
			return nil, ErrNotFound
		}
		g = create()
		m.games[sessionID] = g
	}
	if fn != nil {
		fn(g)
	}
	return g.Clone(), nil
}
