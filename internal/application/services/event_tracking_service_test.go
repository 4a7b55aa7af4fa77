package services

import (
	"sync"
	"testing"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/analytics"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/consent"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingEventStore struct {
	mu     sync.Mutex
	events []*analytics.TrackedEvent
	done   chan struct{}
}

func newRecordingEventStore() *recordingEventStore {
	return &recordingEventStore{done: make(chan struct{}, 16)}
}

func (r *recordingEventStore) StoreWebsiteEvent(event *analytics.TrackedEvent) error {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func (r *recordingEventStore) waitForEvents(t *testing.T, n int) []*analytics.TrackedEvent {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d of %d", i+1, n)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*analytics.TrackedEvent, len(r.events))
	copy(out, r.events)
	return out
}

type recordingForwarder struct {
	mu     sync.Mutex
	events []*analytics.TrackedEvent
}

func (r *recordingForwarder) Forward(event *analytics.TrackedEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

func (r *recordingForwarder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func newTrackingFixture(t *testing.T, forwarder Forwarder) (*EventTrackingService, *recordingEventStore) {
	t.Helper()
	logger := testLogger(t)
	perfTracker := performance.NewTracker(nil)

	store := newRecordingEventStore()
	attributionSvc := NewAttributionService(nil, logger, perfTracker)
	svc := NewEventTrackingService(
		store, attributionSvc, nil, forwarder,
		[]string{"/admin/*", "/preview/*"},
		logger, perfTracker)
	return svc, store
}

func TestTrackExcludedRoute(t *testing.T) {
	svc, _ := newTrackingFixture(t, nil)
	session := testSession(&consent.State{Analytics: true, Functional: true})

	result := svc.Track(session, &TrackRequest{EventName: "page_view", PagePath: "/admin/settings"})

	assert.False(t, result.Accepted)
	assert.Equal(t, "route_excluded", result.Reason)
	assert.Equal(t, 0, session.Events.Len(), "excluded routes leave no trace")
}

func TestTrackDebounceCollapsesToLastPayload(t *testing.T) {
	svc, store := newTrackingFixture(t, nil)
	session := testSession(&consent.State{Functional: true})

	first := svc.Track(session, &TrackRequest{
		EventName: "cta_click", EntityID: "prop-1", PagePath: "/properties",
		Meta: map[string]any{"position": 1},
	})
	second := svc.Track(session, &TrackRequest{
		EventName: "cta_click", EntityID: "prop-1", PagePath: "/properties",
		Meta: map[string]any{"position": 2},
	})

	assert.True(t, first.Accepted)
	assert.True(t, second.Accepted)
	assert.Equal(t, "collapsed", second.Reason)

	// A different entity is a different debounce key.
	third := svc.Track(session, &TrackRequest{EventName: "cta_click", EntityID: "prop-2", PagePath: "/properties"})
	assert.True(t, third.Accepted)
	assert.Empty(t, third.Reason)

	events := store.waitForEvents(t, 2)
	require.Len(t, events, 2)

	// The collapsed key emitted exactly once, carrying the newest payload.
	var collapsed *analytics.TrackedEvent
	for _, event := range events {
		if _, ok := event.EventData["position"]; ok {
			require.Nil(t, collapsed, "collapsed key must emit a single event")
			collapsed = event
		}
	}
	require.NotNil(t, collapsed)
	assert.Equal(t, 2, collapsed.EventData["position"])
}

func TestTrackScrollMilestonesFireOncePerPage(t *testing.T) {
	svc, store := newTrackingFixture(t, nil)
	session := testSession(&consent.State{Functional: true})

	pct := 55
	result := svc.Track(session, &TrackRequest{PagePath: "/properties/villa-42", ScrollPercent: &pct})
	require.True(t, result.Accepted)
	assert.Equal(t, []int{25, 50}, result.Milestones)

	// Scrolling back and forth under the highest reported depth is silent.
	pct = 40
	repeat := svc.Track(session, &TrackRequest{PagePath: "/properties/villa-42", ScrollPercent: &pct})
	assert.False(t, repeat.Accepted)
	assert.Equal(t, "milestone_already_reported", repeat.Reason)

	pct = 100
	deeper := svc.Track(session, &TrackRequest{PagePath: "/properties/villa-42", ScrollPercent: &pct})
	require.True(t, deeper.Accepted)
	assert.Equal(t, []int{75, 100}, deeper.Milestones)

	// Another page starts fresh.
	pct = 30
	other := svc.Track(session, &TrackRequest{PagePath: "/properties/flat-7", ScrollPercent: &pct})
	require.True(t, other.Accepted)
	assert.Equal(t, []int{25}, other.Milestones)

	events := store.waitForEvents(t, 5)
	for _, event := range events {
		assert.Equal(t, "scroll_depth", event.EventName)
		assert.Contains(t, event.EventData, "milestone")
	}
}

func TestTrackFirstPartyWriteIgnoresConsent(t *testing.T) {
	svc, store := newTrackingFixture(t, nil)
	session := testSession(nil)

	result := svc.Track(session, &TrackRequest{EventName: "page_view", PagePath: "/properties"})
	require.True(t, result.Accepted)

	events := store.waitForEvents(t, 1)
	assert.Equal(t, "page_view", events[0].EventName)
}

func TestTrackForwarderGatedOnAnalyticsConsent(t *testing.T) {
	forwarder := &recordingForwarder{}
	svc, store := newTrackingFixture(t, forwarder)

	denied := testSession(&consent.State{Marketing: true, Functional: true})
	svc.Track(denied, &TrackRequest{EventName: "page_view", PagePath: "/a"})
	store.waitForEvents(t, 1)
	assert.Equal(t, 0, forwarder.count(), "marketing consent alone does not unlock forwarding")

	granted := testSession(&consent.State{Analytics: true, Functional: true})
	svc.Track(granted, &TrackRequest{EventName: "page_view", PagePath: "/b"})
	store.waitForEvents(t, 1)
	assert.Equal(t, 1, forwarder.count())
}

func TestTrackSanitizesMeta(t *testing.T) {
	svc, store := newTrackingFixture(t, nil)
	session := testSession(&consent.State{Analytics: true, Functional: true})

	svc.Track(session, &TrackRequest{
		EventName: "property_viewed",
		EntityID:  "prop-9",
		PagePath:  "/properties/prop-9",
		Meta: map[string]any{
			"bedrooms": 4,
			"email":    "visitor@example.com",
		},
	})

	events := store.waitForEvents(t, 1)
	require.NotNil(t, events[0].EventData)
	assert.Equal(t, 4, events[0].EventData["bedrooms"])
	assert.NotContains(t, events[0].EventData, "email")

	// The session history buffer got the sanitized copy too.
	buffered := session.Events.Events()
	require.Len(t, buffered, 1)
	assert.NotContains(t, buffered[0].Meta, "email")
}

func TestTrackEventCarriesSessionAttribution(t *testing.T) {
	svc, store := newTrackingFixture(t, nil)
	session := testSession(&consent.State{Analytics: true, Functional: true})
	session.UTM = analytics.UTMParams{Source: "meta", Medium: "cpc"}
	session.DeviceType = "mobile"
	session.Language = "ar"
	session.ReferrerHost = "facebook.com"

	svc.Track(session, &TrackRequest{EventName: "page_view", PagePath: "/", PageURL: "https://aldiyar.com/"})

	events := store.waitForEvents(t, 1)
	event := events[0]
	assert.Equal(t, "meta", event.UTM.Source)
	assert.Equal(t, "mobile", event.DeviceType)
	assert.Equal(t, "ar", event.Language)
	assert.Equal(t, "facebook.com", event.Referrer)
	assert.Equal(t, session.SessionID, event.SessionID)
}
