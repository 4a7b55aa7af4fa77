// Package manager provides the unified cache facade handed to services.
package manager

import (
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/stores"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
)

// Manager aggregates the cache stores behind one dependency.
type Manager struct {
	sessions *stores.SessionsStore
	logger   *logging.ChanneledLogger
}

// NewManager creates the cache manager with all stores initialized.
func NewManager(logger *logging.ChanneledLogger) *Manager {
	return &Manager{
		sessions: stores.NewSessionsStore(logger),
		logger:   logger,
	}
}

// GetSession retrieves session state by id.
func (m *Manager) GetSession(sessionID string) (*types.SessionState, bool) {
	return m.sessions.GetSession(sessionID)
}

// CreateSession builds and stores fresh session state.
func (m *Manager) CreateSession(sessionID string) *types.SessionState {
	return m.sessions.CreateSession(sessionID)
}

// RemoveSession drops a session from the store.
func (m *Manager) RemoveSession(sessionID string) {
	m.sessions.RemoveSession(sessionID)
}

// SessionCount returns the number of tracked sessions.
func (m *Manager) SessionCount() int {
	return m.sessions.Count()
}

// PurgeExpiredSessions removes expired sessions and reports how many.
func (m *Manager) PurgeExpiredSessions() int {
	return m.sessions.PurgeExpired()
}

// SessionIDs returns a snapshot of tracked session ids.
func (m *Manager) SessionIDs() []string {
	return m.sessions.SessionIDs()
}
