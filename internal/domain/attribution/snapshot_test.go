package attribution

import (
	"testing"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotInput(consented bool) SnapshotInput {
	buffer := NewBuffer(10)
	buffer.Append(SessionEvent{EventName: EventPropertyViewed, EntityID: "prop-1", TS: time.Now()})

	return SnapshotInput{
		SessionID:       "01J5SESSION",
		LandingPage:     "/?utm_source=meta",
		CurrentPage:     "/properties/villa-42",
		DeviceType:      "mobile",
		BrowserLanguage: "ar",
		UTM: analytics.UTMParams{
			Source:   "meta",
			Medium:   "cpc",
			Campaign: "summer",
		},
		ReferrerDomain:   "facebook.com",
		Buffer:           buffer,
		AnalyticsConsent: consented,
		SummaryMax:       5,
	}
}

func TestAssembleWithConsent(t *testing.T) {
	snapshot := Assemble(snapshotInput(true))

	assert.Equal(t, "01J5SESSION", snapshot.SessionID)
	assert.Equal(t, "/properties/villa-42", snapshot.LastPageBeforeSubmit)
	assert.Equal(t, "meta", snapshot.UTMSource)
	assert.Equal(t, "cpc", snapshot.UTMMedium)
	assert.Equal(t, "summer", snapshot.UTMCampaign)
	assert.Equal(t, "facebook.com", snapshot.ReferrerDomain)
	require.Len(t, snapshot.LastEventsSummary, 1)
	assert.Equal(t, EventPropertyViewed, snapshot.LastEventsSummary[0].EventName)
}

func TestAssembleWithoutConsentWithholdsWholeGroup(t *testing.T) {
	snapshot := Assemble(snapshotInput(false))

	// Session fields stay.
	assert.Equal(t, "01J5SESSION", snapshot.SessionID)
	assert.Equal(t, "mobile", snapshot.DeviceType)
	assert.Equal(t, "ar", snapshot.BrowserLanguage)

	// The consent-gated group vanishes as a whole.
	assert.Empty(t, snapshot.UTMSource)
	assert.Empty(t, snapshot.UTMMedium)
	assert.Empty(t, snapshot.UTMCampaign)
	assert.Empty(t, snapshot.UTMTerm)
	assert.Empty(t, snapshot.UTMContent)
	assert.Empty(t, snapshot.ReferrerDomain)
	assert.Empty(t, snapshot.LastEventsSummary)
}

func TestAssembleNilBuffer(t *testing.T) {
	input := snapshotInput(true)
	input.Buffer = nil

	snapshot := Assemble(input)
	assert.Empty(t, snapshot.LastEventsSummary)
	assert.Equal(t, "meta", snapshot.UTMSource)
}
