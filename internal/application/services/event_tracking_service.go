package services

import (
	"sync"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/analytics"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/attribution"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/messaging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
)

// WebsiteEventStore persists first-party tracker events.
type WebsiteEventStore interface {
	StoreWebsiteEvent(event *analytics.TrackedEvent) error
}

// Forwarder mirrors an event to a third-party analytics destination. It is
// only invoked when analytics consent is granted.
type Forwarder interface {
	Forward(event *analytics.TrackedEvent)
}

// EventTrackingService is the first-party event tracker: it applies route
// exclusions, debouncing, and scroll-milestone dedup before persisting and
// fanning events out.
type EventTrackingService struct {
	eventStore  WebsiteEventStore
	attribution *AttributionService
	broadcaster *messaging.LiveBroadcaster
	forwarder   Forwarder
	exclusions  *analytics.RouteExclusions
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	pendingMu sync.Mutex
	pending   map[string]*pendingEvent
}

// pendingEvent holds the newest payload for a debounce key until its window
// closes.
type pendingEvent struct {
	session *types.SessionState
	req     *TrackRequest
	timer   *time.Timer
}

// NewEventTrackingService creates a new event tracking service
func NewEventTrackingService(
	eventStore WebsiteEventStore,
	attributionService *AttributionService,
	broadcaster *messaging.LiveBroadcaster,
	forwarder Forwarder,
	excludedRoutes []string,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *EventTrackingService {
	exclusions, err := analytics.NewRouteExclusions(excludedRoutes)
	if err != nil {
		logger.Analytics().Error("Invalid route exclusion config, tracking all routes", "error", err.Error())
		exclusions, _ = analytics.NewRouteExclusions(nil)
	}

	return &EventTrackingService{
		eventStore:  eventStore,
		attribution: attributionService,
		broadcaster: broadcaster,
		forwarder:   forwarder,
		exclusions:  exclusions,
		logger:      logger,
		perfTracker: perfTracker,
		pending:     make(map[string]*pendingEvent),
	}
}

// TrackRequest is one incoming tracker event.
type TrackRequest struct {
	EventName     string         `json:"eventName"`
	PagePath      string         `json:"pagePath"`
	PageURL       string         `json:"pageUrl,omitempty"`
	PageTitle     string         `json:"pageTitle,omitempty"`
	EntityID      string         `json:"entityId,omitempty"`
	Meta          map[string]any `json:"meta,omitempty"`
	ScrollPercent *int           `json:"scrollPercent,omitempty"`
}

// TrackResult reports what happened to a tracker event. Rejections are not
// errors: the visitor always gets a 2xx, the reason is for diagnostics.
type TrackResult struct {
	Accepted   bool   `json:"accepted"`
	Reason     string `json:"reason,omitempty"`
	Milestones []int  `json:"milestones,omitempty"`
}

// Track processes one event for a session.
func (s *EventTrackingService) Track(session *types.SessionState, req *TrackRequest) *TrackResult {
	marker := s.perfTracker.StartOperation("track_event")
	defer marker.Complete()

	if s.exclusions.Excluded(req.PagePath) {
		marker.SetSuccess(true)
		return &TrackResult{Accepted: false, Reason: "route_excluded"}
	}

	if req.ScrollPercent != nil {
		milestones := s.recordScrollMilestones(session, req)
		marker.SetSuccess(true)
		if len(milestones) == 0 {
			return &TrackResult{Accepted: false, Reason: "milestone_already_reported"}
		}
		return &TrackResult{Accepted: true, Milestones: milestones}
	}

	collapsed := s.debounce(session, req)
	marker.SetSuccess(true)
	if collapsed {
		return &TrackResult{Accepted: true, Reason: "collapsed"}
	}
	return &TrackResult{Accepted: true}
}

// recordScrollMilestones emits one event per newly crossed depth threshold.
// Each milestone fires at most once per page path per session.
func (s *EventTrackingService) recordScrollMilestones(session *types.SessionState, req *TrackRequest) []int {
	crossed := analytics.CrossedMilestones(*req.ScrollPercent)

	session.Mu.Lock()
	reported := session.ScrollMilestones[req.PagePath]
	if reported == nil {
		reported = make(map[int]bool)
		session.ScrollMilestones[req.PagePath] = reported
	}
	var fresh []int
	for _, m := range crossed {
		if !reported[m] {
			reported[m] = true
			fresh = append(fresh, m)
		}
	}
	session.Mu.Unlock()

	for _, m := range fresh {
		s.emit(session, "scroll_depth", req.PagePath, req.PageURL, req.PageTitle, "", map[string]any{"milestone": m})
	}
	return fresh
}

// debounce coalesces rapid repeats of the same (session, event, entity, path)
// key. The event is emitted when the window closes, carrying whichever
// payload arrived last. Returns true when the call collapsed into an already
// pending event.
func (s *EventTrackingService) debounce(session *types.SessionState, req *TrackRequest) bool {
	key := session.SessionID + "|" + req.EventName + "|" + req.EntityID + "|" + req.PagePath

	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()

	if p, ok := s.pending[key]; ok {
		p.req = req
		return true
	}

	p := &pendingEvent{session: session, req: req}
	p.timer = time.AfterFunc(config.DebounceWindow, func() { s.flushPending(key) })
	s.pending[key] = p
	return false
}

// flushPending emits the event a closed debounce window held back.
func (s *EventTrackingService) flushPending(key string) {
	s.pendingMu.Lock()
	p, ok := s.pending[key]
	delete(s.pending, key)
	s.pendingMu.Unlock()
	if !ok {
		return
	}

	req := p.req
	s.emit(p.session, req.EventName, req.PagePath, req.PageURL, req.PageTitle, req.EntityID, req.Meta)
}

// emit builds the stored event from session state and fans it out. The
// first-party write always happens; the third-party forwarder is gated on
// analytics consent.
func (s *EventTrackingService) emit(session *types.SessionState, eventName, pagePath, pageURL, pageTitle, entityID string, meta map[string]any) {
	session.Mu.Lock()
	sessionID := session.SessionID
	event := &analytics.TrackedEvent{
		EventName:  eventName,
		EventData:  attribution.SanitizeMeta(meta),
		SessionID:  sessionID,
		PageURL:    pageURL,
		PageTitle:  pageTitle,
		Referrer:   session.ReferrerHost,
		DeviceType: session.DeviceType,
		Language:   session.Language,
		UTM:        session.UTM,
		CreatedAt:  time.Now().UTC(),
	}
	analyticsAllowed := session.Consent.AnalyticsAllowed()
	session.Mu.Unlock()

	if analyticsAllowed && s.forwarder != nil {
		s.forwarder.Forward(event)
	}

	if s.broadcaster != nil {
		s.broadcaster.Publish(messaging.LiveEvent{
			EventName: eventName,
			PagePath:  pagePath,
			EntityID:  entityID,
			SessionID: maskSessionID(sessionID),
			TS:        event.CreatedAt.UnixMilli(),
		})
	}

	s.attribution.LogSessionEvent(session, attribution.SessionEvent{
		EventName: eventName,
		PagePath:  pagePath,
		EntityID:  entityID,
		Meta:      meta,
		TS:        event.CreatedAt,
	})

	// Persistence is fire-and-forget; a failed write never surfaces to the
	// visitor.
	go func() {
		if err := s.eventStore.StoreWebsiteEvent(event); err != nil {
			s.logger.Analytics().Error("Website event persist failed",
				"error", err.Error(), "eventName", eventName)
		}
	}()
}

func maskSessionID(sessionID string) string {
	if len(sessionID) <= 8 {
		return "********"
	}
	return sessionID[:4] + "****" + sessionID[len(sessionID)-4:]
}
