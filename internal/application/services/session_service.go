// Package services provides application-level orchestration services
package services

import (
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/analytics"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/consent"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/security"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/site"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
)

// SessionService manages visitor session identity and lifecycle.
type SessionService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewSessionService creates a new session service
func NewSessionService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *SessionService {
	return &SessionService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// VisitRequest represents the structure for visit registration requests.
type VisitRequest struct {
	SessionID *string `json:"sessionId,omitempty"`
	PageURL   string  `json:"pageUrl"`
	PagePath  string  `json:"pagePath"`
	Referrer  string  `json:"referrer,omitempty"`
	UserAgent string  `json:"-"`
	Language  string  `json:"language,omitempty"`
}

// SessionResult holds the result of session operations.
type SessionResult struct {
	SessionID  string         `json:"sessionId"`
	IsNew      bool           `json:"isNew"`
	Consent    *consent.State `json:"consent,omitempty"`
	DeviceType string         `json:"deviceType"`
	Success    bool           `json:"success"`
	Error      string         `json:"error,omitempty"`
}

// ProcessVisitRequest resolves or creates the visitor session and records the
// page visit. The session id is minted lazily: a browser without one gets a
// fresh ULID, and an unknown or expired id is replaced rather than revived.
func (s *SessionService) ProcessVisitRequest(req *VisitRequest, siteCtx *site.Context) *SessionResult {
	marker := s.perfTracker.StartOperation("process_visit_request")
	defer marker.Complete()

	var session *types.SessionState
	var isNew bool

	if req.SessionID != nil && *req.SessionID != "" {
		session, _ = siteCtx.CacheManager.GetSession(*req.SessionID)
	}

	if session == nil {
		sessionID := security.GenerateULID()
		session = siteCtx.CacheManager.CreateSession(sessionID)
		isNew = true
	}

	session.Mu.Lock()
	if isNew {
		session.LandingPage = req.PagePath
		session.ReferrerHost = analytics.ReferrerHost(req.Referrer)
		session.DeviceType = analytics.DeviceTypeFromUserAgent(req.UserAgent)
		session.Language = req.Language
	}
	if session.Language == "" && req.Language != "" {
		session.Language = req.Language
	}

	// UTM params are first-touch: the first URL that carries any campaign
	// parameter wins for the whole session.
	if !session.UTMCaptured {
		if utm := analytics.ParseUTM(req.PageURL); !utm.IsZero() {
			session.UTM = utm
			session.UTMCaptured = true
		}
	}

	session.CurrentPage = req.PagePath
	session.Touch(config.SessionTTL)
	sessionID := session.SessionID
	consentState := session.Consent
	deviceType := session.DeviceType
	session.Mu.Unlock()

	s.logger.WithSession(logging.ChannelAnalytics, sessionID).Debug("Visit processed",
		"isNew", isNew, "pagePath", req.PagePath)
	marker.SetSuccess(true)

	return &SessionResult{
		SessionID:  sessionID,
		IsNew:      isNew,
		Consent:    consentState,
		DeviceType: deviceType,
		Success:    true,
	}
}

// UpdateConsent merges a banner choice into the session's consent record.
// The updated state is returned so callers can re-evaluate pixels.
func (s *SessionService) UpdateConsent(sessionID string, choice consent.Choice, siteCtx *site.Context) (*consent.State, error) {
	marker := s.perfTracker.StartOperation("update_consent")
	defer marker.Complete()

	session, exists := siteCtx.CacheManager.GetSession(sessionID)
	if !exists {
		marker.SetError(ErrSessionNotFound)
		return nil, ErrSessionNotFound
	}

	session.Mu.Lock()
	session.Consent = session.Consent.Merge(choice, time.Now().UTC())
	session.Touch(config.SessionTTL)
	state := session.Consent
	session.Mu.Unlock()

	s.logger.WithSession(logging.ChannelAnalytics, sessionID).Info("Consent updated",
		"analytics", state.Analytics, "marketing", state.Marketing)
	marker.SetSuccess(true)
	return state, nil
}

// RestoreConsent applies a stored consent string (current JSON form or the
// legacy boolean form) to a session that arrived without an in-memory record.
func (s *SessionService) RestoreConsent(sessionID, raw string, siteCtx *site.Context) *consent.State {
	session, exists := siteCtx.CacheManager.GetSession(sessionID)
	if !exists {
		return nil
	}

	state := consent.Parse(raw)
	if state == nil {
		return nil
	}

	session.Mu.Lock()
	if session.Consent == nil {
		session.Consent = state
	}
	result := session.Consent
	session.Mu.Unlock()
	return result
}

// GetSession resolves a session by id.
func (s *SessionService) GetSession(sessionID string, siteCtx *site.Context) (*types.SessionState, bool) {
	return siteCtx.CacheManager.GetSession(sessionID)
}
