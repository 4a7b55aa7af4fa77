// Package stores provides concrete cache store implementations
package stores

import (
	"sync"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/attribution"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/compare"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
)

// SessionsStore implements visitor session state caching.
type SessionsStore struct {
	sessions map[string]*types.SessionState
	mu       sync.RWMutex
	logger   *logging.ChanneledLogger
}

// NewSessionsStore creates a new sessions cache store
func NewSessionsStore(logger *logging.ChanneledLogger) *SessionsStore {
	if logger != nil {
		logger.Cache().Info("Initializing sessions cache store")
	}
	return &SessionsStore{
		sessions: make(map[string]*types.SessionState),
		logger:   logger,
	}
}

// GetSession retrieves session state by session ID. Expired sessions miss.
func (ss *SessionsStore) GetSession(sessionID string) (*types.SessionState, bool) {
	start := time.Now()
	ss.mu.RLock()
	session, found := ss.sessions[sessionID]
	ss.mu.RUnlock()

	if found && session.Expired() {
		ss.RemoveSession(sessionID)
		if ss.logger != nil {
			ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "sessionId", sessionID, "hit", false, "reason", "expired", "duration", time.Since(start))
		}
		return nil, false
	}

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "get", "type", "session", "sessionId", sessionID, "hit", found, "duration", time.Since(start))
	}
	return session, found
}

// CreateSession builds and stores a fresh session state. When the store is at
// capacity the session with the oldest activity is evicted first.
func (ss *SessionsStore) CreateSession(sessionID string) *types.SessionState {
	start := time.Now()
	now := time.Now().UTC()

	session := &types.SessionState{
		SessionID:        sessionID,
		CreatedAt:        now,
		LastActivity:     now,
		ExpiresAt:        now.Add(config.SessionTTL),
		Events:           attribution.NewBuffer(config.SessionEventBufferCap),
		ScrollMilestones: make(map[string]map[int]bool),
		Pixels:           make(map[string]*types.PixelState),
		Compare:          compare.NewSelection(nil),
	}

	ss.mu.Lock()
	if len(ss.sessions) >= config.MaxTrackedSessions {
		ss.evictOldestLocked()
	}
	ss.sessions[sessionID] = session
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "create", "type", "session", "sessionId", sessionID, "duration", time.Since(start))
	}
	return session
}

// RemoveSession removes a session from the store.
func (ss *SessionsStore) RemoveSession(sessionID string) {
	ss.mu.Lock()
	delete(ss.sessions, sessionID)
	ss.mu.Unlock()

	if ss.logger != nil {
		ss.logger.Cache().Debug("Cache operation", "operation", "remove", "type", "session", "sessionId", sessionID)
	}
}

// Count returns the number of tracked sessions.
func (ss *SessionsStore) Count() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// PurgeExpired removes every expired session and returns how many were removed.
func (ss *SessionsStore) PurgeExpired() int {
	start := time.Now()
	ss.mu.Lock()
	removed := 0
	for id, session := range ss.sessions {
		if session.Expired() {
			delete(ss.sessions, id)
			removed++
		}
	}
	remaining := len(ss.sessions)
	ss.mu.Unlock()

	if ss.logger != nil && removed > 0 {
		ss.logger.Cache().Info("Expired sessions purged", "removed", removed, "remaining", remaining, "duration", time.Since(start))
	}
	return removed
}

// SessionIDs returns a snapshot of all tracked session ids.
func (ss *SessionsStore) SessionIDs() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	ids := make([]string, 0, len(ss.sessions))
	for id := range ss.sessions {
		ids = append(ids, id)
	}
	return ids
}

// evictOldestLocked drops the session with the oldest activity.
// MUST be called with ss.mu held.
func (ss *SessionsStore) evictOldestLocked() {
	var oldestID string
	var oldestActivity time.Time
	for id, session := range ss.sessions {
		if oldestID == "" || session.LastActivity.Before(oldestActivity) {
			oldestID = id
			oldestActivity = session.LastActivity
		}
	}
	if oldestID != "" {
		delete(ss.sessions, oldestID)
		if ss.logger != nil {
			ss.logger.Cache().Warn("Session store at capacity, evicted oldest session", "sessionId", oldestID, "lastActivity", oldestActivity)
		}
	}
}
