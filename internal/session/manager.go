package session

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Manager owns the reconcilers for all active sessions, one per opaque
// session key. It is the explicit lifecycle object dependents receive
// instead of ambient global auth state.
type Manager struct {
	directory Directory
	cache     Cache
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Reconciler
}

// NewManager creates a session manager.
func NewManager(directory Directory, cache Cache, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		directory: directory,
		cache:     cache,
		logger:    logger,
		sessions:  make(map[string]*Reconciler),
	}
}

// Get returns the reconciler for key, creating one if needed. A newly
// created reconciler rehydrates from the advisory cache so a restarted
// server recognizes sessions issued before the restart.
func (m *Manager) Get(ctx context.Context, key string) *Reconciler {
	m.mu.Lock()
	r, ok := m.sessions[key]
	if !ok {
		r = NewReconciler(key, m.directory, m.cache, m.logger)
		m.sessions[key] = r
	}
	m.mu.Unlock()
	if !ok {
		r.Rehydrate(ctx)
	}
	return r
}

// Remove drops the reconciler for key after sign-out.
func (m *Manager) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
}

// Dispose releases all sessions. Reconcilers hold no goroutines at rest,
// so dropping the map is sufficient.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]*Reconciler)
}
