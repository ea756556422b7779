package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/papapumpkin/destrack/internal/state"
)

// MemoryStore keeps the collections in memory. It is used for ephemeral
// sessions (a db path of ":memory:") and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	saved state.Collections
	saves int
}

// NewMemoryStore returns a MemoryStore seeded with c.
func NewMemoryStore(c state.Collections) *MemoryStore {
	return &MemoryStore{saved: clone(c)}
}

// Load returns a copy of the last saved collections.
func (m *MemoryStore) Load(_ context.Context) (state.Collections, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.saved), nil
}

// Save stores a copy of c.
func (m *MemoryStore) Save(_ context.Context, c state.Collections) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = clone(c)
	m.saves++
	return nil
}

// Saves reports how many times Save has been called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func clone(c state.Collections) state.Collections {
	return state.Collections{
		Projects:            slices.Clone(c.Projects),
		Categories:          slices.Clone(c.Categories),
		Subcategories:       slices.Clone(c.Subcategories),
		Requirements:        slices.Clone(c.Requirements),
		ImplementationNodes: slices.Clone(c.ImplementationNodes),
	}
}
