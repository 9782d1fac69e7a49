package cart

import (
	"context"
	"sync"
)

// Manager hands out one Store per session id, constructing it (and loading
// its persisted state) on first use.
type Manager struct {
	mu      sync.Mutex
	storage Storage
	opts    []Option
	stores  map[string]*Store
}

func NewManager(storage Storage, opts ...Option) *Manager {
	return &Manager{
		storage: storage,
		opts:    opts,
		stores:  make(map[string]*Store),
	}
}

func (m *Manager) Store(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	if s, ok := m.stores[sessionID]; ok {
		m.mu.Unlock()
		return s
	}
	m.mu.Unlock()

	// Construct outside the lock, loading may hit the storage backend.
	s := NewStore(ctx, m.storage, sessionID, m.opts...)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.stores[sessionID]; ok {
		return existing
	}
	m.stores[sessionID] = s
	return s
}
