package imports

import (
	"sync"

	"github.com/google/uuid"
)

// Manager owns the live staging sessions of this process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager constructs an empty session manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[uuid.UUID]*Session)}
}

// Create registers a fresh idle session.
func (m *Manager) Create() *Session {
	s := NewSession()
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get returns the session with the given id, if it exists.
func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove disposes of a session entirely.
func (m *Manager) Remove(id uuid.UUID) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
