package services

import (
	"testing"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/attribution"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/consent"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Walks a full visitor journey: campaign landing, consent denial, browsing,
// then a lead submission. The attribution snapshot must carry the session
// group while withholding every consent-gated field, and flip to fully
// populated once analytics consent is granted.
func TestLeadAttributionJourneyWithConsentDenied(t *testing.T) {
	sessionSvc, siteCtx := newSessionFixture(t)
	attributionSvc := NewAttributionService(nil, testLogger(t), performance.NewTracker(nil))

	visit := sessionSvc.ProcessVisitRequest(&VisitRequest{
		PageURL:   "https://aldiyar.com/properties?utm_source=google&utm_medium=cpc",
		PagePath:  "/properties",
		Referrer:  "https://www.google.com/search?q=cairo+apartments",
		UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
		Language:  "en",
	}, siteCtx)
	require.True(t, visit.Success)

	no := false
	_, err := sessionSvc.UpdateConsent(visit.SessionID, consent.Choice{Analytics: &no, Marketing: &no}, siteCtx)
	require.NoError(t, err)

	session, found := siteCtx.CacheManager.GetSession(visit.SessionID)
	require.True(t, found)

	attributionSvc.LogSessionEvent(session, attribution.SessionEvent{
		EventName: "property_viewed",
		PagePath:  "/properties/villa-42",
		EntityID:  "prop-42",
	})

	sessionSvc.ProcessVisitRequest(&VisitRequest{
		SessionID: &visit.SessionID,
		PageURL:   "https://aldiyar.com/find-property",
		PagePath:  "/find-property",
	}, siteCtx)

	snapshot, encoded := attributionSvc.LeadAttribution(session)

	// Session fields are always present.
	assert.Equal(t, visit.SessionID, snapshot.SessionID)
	assert.Equal(t, "/properties", snapshot.LandingPage)
	assert.Equal(t, "/find-property", snapshot.LastPageBeforeSubmit)
	assert.Equal(t, "desktop", snapshot.DeviceType)
	assert.Equal(t, "en", snapshot.BrowserLanguage)

	// The campaign group is withheld as a whole while consent is denied.
	assert.Empty(t, snapshot.UTMSource)
	assert.Empty(t, snapshot.UTMMedium)
	assert.Empty(t, snapshot.ReferrerDomain)
	assert.Empty(t, snapshot.LastEventsSummary)
	assert.NotContains(t, encoded, "utm_source")

	// First-touch capture itself is first-party and survived the denial.
	yes := true
	_, err = sessionSvc.UpdateConsent(visit.SessionID, consent.Choice{Analytics: &yes}, siteCtx)
	require.NoError(t, err)

	granted, _ := attributionSvc.LeadAttribution(session)
	assert.Equal(t, "google", granted.UTMSource)
	assert.Equal(t, "cpc", granted.UTMMedium)
	assert.Equal(t, "www.google.com", granted.ReferrerDomain)
	require.NotEmpty(t, granted.LastEventsSummary)
	assert.Equal(t, "property_viewed", granted.LastEventsSummary[0].EventName)
}
