// Package ownership tracks which cards the user has marked as owned.
package ownership

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// StorageKey is the key the ownership map is persisted under.
const StorageKey = "ownedCards"

// ErrNotStored is returned by a Backend that has never been written.
var ErrNotStored = errors.New("ownership map not stored")

// Backend persists the serialized ownership map.
type Backend interface {
	// Read returns the stored document, or ErrNotStored.
	Read(ctx context.Context) ([]byte, error)

	// Write replaces the stored document.
	Write(ctx context.Context, data []byte) error
}

// LoadSource describes where the initial map came from.
type LoadSource int

const (
	// LoadedEmpty means nothing was stored yet.
	LoadedEmpty LoadSource = iota
	// LoadedStored means the stored map was restored.
	LoadedStored
	// LoadedFallback means the stored map was unreadable and an empty map was used.
	LoadedFallback
)

func (s LoadSource) String() string {
	switch s {
	case LoadedEmpty:
		return "empty"
	case LoadedStored:
		return "stored"
	case LoadedFallback:
		return "fallback"
	default:
		return fmt.Sprintf("LoadSource(%d)", int(s))
	}
}

// LoadResult is the outcome of Open. Err is set only for LoadedFallback.
type LoadResult struct {
	Source LoadSource
	Cards  int
	Err    error
}

// Store is the in-memory ownership map backed by a Backend.
// Every mutation rewrites the whole map before it becomes visible.
type Store struct {
	mu      sync.RWMutex
	owned   map[string]bool
	backend Backend
	logger  *zap.Logger
}

// Open loads the map once from backend. A missing document yields an empty
// store; an unreadable or malformed one also yields an empty store, reported
// through LoadResult rather than as an error.
func Open(ctx context.Context, backend Backend, logger *zap.Logger) (*Store, LoadResult) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		owned:   make(map[string]bool),
		backend: backend,
		logger:  logger,
	}

	data, err := backend.Read(ctx)
	switch {
	case errors.Is(err, ErrNotStored):
		return s, LoadResult{Source: LoadedEmpty}
	case err != nil:
		logger.Warn("ownership map unreadable, starting empty", zap.Error(err))
		return s, LoadResult{Source: LoadedFallback, Err: fmt.Errorf("read ownership map: %w", err)}
	}

	var owned map[string]bool
	if err := json.Unmarshal(data, &owned); err != nil {
		logger.Warn("ownership map malformed, starting empty", zap.Error(err))
		return s, LoadResult{Source: LoadedFallback, Err: fmt.Errorf("parse ownership map: %w", err)}
	}
	if owned != nil {
		s.owned = owned
	}

	logger.Debug("ownership map restored", zap.Int("entries", len(s.owned)))
	return s, LoadResult{Source: LoadedStored, Cards: len(s.owned)}
}

// IsOwned reports whether the card is marked owned. Unknown ids are not owned.
func (s *Store) IsOwned(cardID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.owned[cardID]
}

// Toggle flips the owned flag of cardID, persists the full map, and returns
// the new flag. If persisting fails the map is left unchanged.
func (s *Store) Toggle(ctx context.Context, cardID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]bool, len(s.owned)+1)
	for id, owned := range s.owned {
		next[id] = owned
	}
	next[cardID] = !s.owned[cardID]

	data, err := json.Marshal(next)
	if err != nil {
		return s.owned[cardID], fmt.Errorf("encode ownership map: %w", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return s.owned[cardID], fmt.Errorf("persist ownership map: %w", err)
	}

	s.owned = next
	return next[cardID], nil
}

// Snapshot returns a copy of the current map.
func (s *Store) Snapshot() map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(s.owned))
	for id, owned := range s.owned {
		out[id] = owned
	}
	return out
}

// OwnedCount counts how many of ids are owned.
func (s *Store) OwnedCount(ids []string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, id := range ids {
		if s.owned[id] {
			n++
		}
	}
	return n
}
