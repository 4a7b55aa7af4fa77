package services

import (
	"testing"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/consent"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/manager"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/site"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionFixture(t *testing.T) (*SessionService, *site.Context) {
	t.Helper()
	logger := testLogger(t)
	siteCtx := &site.Context{
		Config:       &site.Config{},
		CacheManager: manager.NewManager(logger),
	}
	return NewSessionService(logger, performance.NewTracker(nil)), siteCtx
}

func TestProcessVisitMintsSessionLazily(t *testing.T) {
	svc, siteCtx := newSessionFixture(t)

	result := svc.ProcessVisitRequest(&VisitRequest{
		PageURL:   "https://aldiyar.com/",
		PagePath:  "/",
		Referrer:  "https://www.google.com/search?q=cairo+villas",
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		Language:  "ar",
	}, siteCtx)

	require.True(t, result.Success)
	assert.True(t, result.IsNew)
	assert.Len(t, result.SessionID, 26, "session ids are ULIDs")
	assert.Equal(t, "mobile", result.DeviceType)
	assert.Nil(t, result.Consent, "a fresh session has no consent record")

	session, found := siteCtx.CacheManager.GetSession(result.SessionID)
	require.True(t, found)
	assert.Equal(t, "/", session.LandingPage)
	assert.Equal(t, "www.google.com", session.ReferrerHost)
	assert.Equal(t, "ar", session.Language)
}

func TestProcessVisitReusesKnownSession(t *testing.T) {
	svc, siteCtx := newSessionFixture(t)

	first := svc.ProcessVisitRequest(&VisitRequest{PageURL: "https://aldiyar.com/", PagePath: "/"}, siteCtx)
	second := svc.ProcessVisitRequest(&VisitRequest{
		SessionID: &first.SessionID,
		PageURL:   "https://aldiyar.com/properties",
		PagePath:  "/properties",
	}, siteCtx)

	assert.False(t, second.IsNew)
	assert.Equal(t, first.SessionID, second.SessionID)

	session, _ := siteCtx.CacheManager.GetSession(first.SessionID)
	assert.Equal(t, "/properties", session.CurrentPage)
	assert.Equal(t, "/", session.LandingPage, "landing page is first-visit only")
}

func TestProcessVisitReplacesUnknownSession(t *testing.T) {
	svc, siteCtx := newSessionFixture(t)

	stale := "01J5STALESESSIONID000000000X"
	result := svc.ProcessVisitRequest(&VisitRequest{
		SessionID: &stale,
		PageURL:   "https://aldiyar.com/",
		PagePath:  "/",
	}, siteCtx)

	assert.True(t, result.IsNew)
	assert.NotEqual(t, stale, result.SessionID, "unknown ids are replaced, not revived")
}

func TestProcessVisitFirstTouchUTMWins(t *testing.T) {
	svc, siteCtx := newSessionFixture(t)

	// The first URL has no campaign parameters, so nothing is captured yet.
	first := svc.ProcessVisitRequest(&VisitRequest{
		PageURL:  "https://aldiyar.com/",
		PagePath: "/",
	}, siteCtx)
	session, _ := siteCtx.CacheManager.GetSession(first.SessionID)
	assert.True(t, session.UTM.IsZero())

	svc.ProcessVisitRequest(&VisitRequest{
		SessionID: &first.SessionID,
		PageURL:   "https://aldiyar.com/?utm_source=meta&utm_medium=cpc",
		PagePath:  "/",
	}, siteCtx)
	assert.Equal(t, "meta", session.UTM.Source)

	// A later campaign landing never overwrites the captured attribution.
	svc.ProcessVisitRequest(&VisitRequest{
		SessionID: &first.SessionID,
		PageURL:   "https://aldiyar.com/?utm_source=tiktok&utm_medium=video",
		PagePath:  "/",
	}, siteCtx)
	assert.Equal(t, "meta", session.UTM.Source)
	assert.Equal(t, "cpc", session.UTM.Medium)
}

func TestUpdateConsentMergesChoice(t *testing.T) {
	svc, siteCtx := newSessionFixture(t)
	result := svc.ProcessVisitRequest(&VisitRequest{PageURL: "https://aldiyar.com/", PagePath: "/"}, siteCtx)

	yes := true
	state, err := svc.UpdateConsent(result.SessionID, consent.Choice{Analytics: &yes}, siteCtx)
	require.NoError(t, err)
	assert.True(t, state.Analytics)
	assert.False(t, state.Marketing)
	assert.True(t, state.Functional)

	// A partial follow-up choice keeps the unmentioned grant.
	state, err = svc.UpdateConsent(result.SessionID, consent.Choice{Marketing: &yes}, siteCtx)
	require.NoError(t, err)
	assert.True(t, state.Analytics)
	assert.True(t, state.Marketing)
}

func TestUpdateConsentUnknownSession(t *testing.T) {
	svc, siteCtx := newSessionFixture(t)

	yes := true
	_, err := svc.UpdateConsent("01J5MISSINGSESSION000000000X", consent.Choice{Analytics: &yes}, siteCtx)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRestoreConsentOnlyFillsEmptyRecord(t *testing.T) {
	svc, siteCtx := newSessionFixture(t)
	result := svc.ProcessVisitRequest(&VisitRequest{PageURL: "https://aldiyar.com/", PagePath: "/"}, siteCtx)

	// Legacy stored form grants both.
	state := svc.RestoreConsent(result.SessionID, "true", siteCtx)
	require.NotNil(t, state)
	assert.True(t, state.Analytics)
	assert.True(t, state.Marketing)

	// An in-memory record is authoritative over whatever the browser stored.
	state = svc.RestoreConsent(result.SessionID, `{"analytics":false,"marketing":false}`, siteCtx)
	require.NotNil(t, state)
	assert.True(t, state.Analytics)
}

func TestRestoreConsentGarbageAndUnknownSession(t *testing.T) {
	svc, siteCtx := newSessionFixture(t)
	result := svc.ProcessVisitRequest(&VisitRequest{PageURL: "https://aldiyar.com/", PagePath: "/"}, siteCtx)

	assert.Nil(t, svc.RestoreConsent(result.SessionID, "not-json", siteCtx))
	assert.Nil(t, svc.RestoreConsent("01J5MISSINGSESSION000000000X", "true", siteCtx))
}
