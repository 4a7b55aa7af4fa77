package services

import (
	"encoding/json"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/attribution"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
)

// SessionEventStore persists sanitized attribution events.
type SessionEventStore interface {
	StoreSessionEvent(sessionID string, event attribution.SessionEvent) error
}

// AttributionService maintains the bounded per-session interaction history
// and assembles lead-attribution snapshots.
type AttributionService struct {
	eventStore  SessionEventStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAttributionService creates a new attribution service
func NewAttributionService(eventStore SessionEventStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AttributionService {
	return &AttributionService{
		eventStore:  eventStore,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// LogSessionEvent sanitizes an event, appends it to the session's bounded
// buffer, and mirrors it to storage when analytics consent is granted.
// Storage is best-effort and never blocks the caller.
func (s *AttributionService) LogSessionEvent(session *types.SessionState, event attribution.SessionEvent) {
	event.Meta = attribution.SanitizeMeta(event.Meta)
	if event.TS.IsZero() {
		event.TS = time.Now().UTC()
	}

	session.Mu.Lock()
	session.Events.Append(event)
	analyticsAllowed := session.Consent.AnalyticsAllowed()
	sessionID := session.SessionID
	session.Mu.Unlock()

	if analyticsAllowed && s.eventStore != nil {
		go func() {
			if err := s.eventStore.StoreSessionEvent(sessionID, event); err != nil {
				s.logger.Analytics().Error("Session event persist failed",
					"error", err.Error(), "eventName", event.EventName)
			}
		}()
	}
}

// LeadAttribution assembles the snapshot attached to a lead at submission
// time and returns it JSON-encoded for storage.
func (s *AttributionService) LeadAttribution(session *types.SessionState) (attribution.Snapshot, string) {
	marker := s.perfTracker.StartOperation("assemble_lead_attribution")
	defer marker.Complete()

	session.Mu.Lock()
	input := attribution.SnapshotInput{
		SessionID:        session.SessionID,
		LandingPage:      session.LandingPage,
		CurrentPage:      session.CurrentPage,
		DeviceType:       session.DeviceType,
		BrowserLanguage:  session.Language,
		UTM:              session.UTM,
		ReferrerDomain:   session.ReferrerHost,
		Buffer:           session.Events,
		AnalyticsConsent: session.Consent.AnalyticsAllowed(),
		SummaryMax:       config.LastEventsSummaryMax,
	}
	session.Mu.Unlock()

	snapshot := attribution.Assemble(input)

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Analytics().Error("Failed to encode attribution snapshot", "error", err.Error())
		marker.SetError(err)
		return snapshot, ""
	}

	marker.SetSuccess(true)
	return snapshot, string(encoded)
}

// LastViewedProperties returns the distinct recently viewed property ids for
// a session, most recent first.
func (s *AttributionService) LastViewedProperties(session *types.SessionState) []string {
	session.Mu.Lock()
	defer session.Mu.Unlock()
	return session.Events.LastViewedProperties(config.LastViewedMax)
}
