package services

import (
	"testing"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/attribution"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/consent"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsStore struct {
	settings map[string]settings.TrackingSetting
	err      error
}

func (f *fakeSettingsStore) GetAll() (map[string]settings.TrackingSetting, error) {
	return f.settings, f.err
}

func testLogger(t *testing.T) *logging.ChanneledLogger {
	t.Helper()
	logger, err := logging.NewChanneledLogger(nil)
	require.NoError(t, err)
	return logger
}

func testSession(consentState *consent.State) *types.SessionState {
	return &types.SessionState{
		SessionID:        "01J5TESTSESSIONID0000000001",
		Consent:          consentState,
		Events:           attribution.NewBuffer(10),
		Pixels:           make(map[string]*types.PixelState),
		ScrollMilestones: make(map[string]map[int]bool),
	}
}

func pixelVendors() map[string]settings.TrackingSetting {
	return map[string]settings.TrackingSetting{
		"meta_pixel_id":       {Key: "meta_pixel_id", Enabled: true, Value: "123456"},
		"tiktok_pixel_id":     {Key: "tiktok_pixel_id", Enabled: false, Value: "TT-99"},
		"snap_pixel_id":       {Key: "snap_pixel_id", Enabled: true, Value: ""},
		"google_analytics_id": {Key: "google_analytics_id", Enabled: true, Value: "G-ABC"},
	}
}

func findInstruction(t *testing.T, instructions []PixelInstruction, vendor string) PixelInstruction {
	t.Helper()
	for _, in := range instructions {
		if in.Vendor == vendor {
			return in
		}
	}
	t.Fatalf("no instruction for vendor %s", vendor)
	return PixelInstruction{}
}

func TestEvaluateInjectsOnlyConsentedEnabledConfigured(t *testing.T) {
	svc := NewPixelService(&fakeSettingsStore{settings: pixelVendors()}, testLogger(t))
	session := testSession(&consent.State{Analytics: true, Functional: true})

	instructions, err := svc.Evaluate(session)
	require.NoError(t, err)
	require.Len(t, instructions, 4)

	meta := findInstruction(t, instructions, "meta_pixel_id")
	assert.Equal(t, "inject", meta.Action)
	assert.Equal(t, "123456", meta.PixelID)
	assert.Equal(t, types.PixelLoading, meta.Status)
	assert.Equal(t, "px-meta_pixel_id", meta.ElementID)

	google := findInstruction(t, instructions, "google_analytics_id")
	assert.Equal(t, "inject", google.Action)

	// Disabled vendor and empty pixel id never inject.
	assert.Equal(t, "none", findInstruction(t, instructions, "tiktok_pixel_id").Action)
	assert.Equal(t, "none", findInstruction(t, instructions, "snap_pixel_id").Action)
}

func TestEvaluateWithoutAnalyticsConsent(t *testing.T) {
	svc := NewPixelService(&fakeSettingsStore{settings: pixelVendors()}, testLogger(t))

	// Marketing consent alone never unlocks vendor scripts.
	for _, state := range []*consent.State{nil, {Marketing: true, Functional: true}} {
		session := testSession(state)

		instructions, err := svc.Evaluate(session)
		require.NoError(t, err)
		for _, in := range instructions {
			assert.Equal(t, "none", in.Action)
			assert.Equal(t, types.PixelNotLoaded, in.Status)
		}
	}
}

func TestEvaluateAnalyticsOnlyConsentInjects(t *testing.T) {
	svc := NewPixelService(&fakeSettingsStore{settings: pixelVendors()}, testLogger(t))
	session := testSession(&consent.State{Analytics: true, Functional: true})

	instructions, err := svc.Evaluate(session)
	require.NoError(t, err)

	google := findInstruction(t, instructions, "google_analytics_id")
	assert.Equal(t, "inject", google.Action)
	assert.Equal(t, "G-ABC", google.PixelID)
}

func TestEvaluateIsIdempotent(t *testing.T) {
	svc := NewPixelService(&fakeSettingsStore{settings: pixelVendors()}, testLogger(t))
	session := testSession(&consent.State{Analytics: true, Functional: true})

	first, err := svc.Evaluate(session)
	require.NoError(t, err)
	assert.Equal(t, "inject", findInstruction(t, first, "meta_pixel_id").Action)

	// A second evaluation sees the pixel already loading and stays quiet.
	second, err := svc.Evaluate(session)
	require.NoError(t, err)
	meta := findInstruction(t, second, "meta_pixel_id")
	assert.Equal(t, "none", meta.Action)
	assert.Equal(t, types.PixelLoading, meta.Status)
	assert.Equal(t, "px-meta_pixel_id", meta.ElementID, "element id is stable across evaluations")
}

func TestMarkLoadedTransitionsForwardOnly(t *testing.T) {
	svc := NewPixelService(&fakeSettingsStore{settings: pixelVendors()}, testLogger(t))
	session := testSession(&consent.State{Analytics: true, Functional: true})

	_, err := svc.Evaluate(session)
	require.NoError(t, err)

	svc.MarkLoaded(session, "meta_pixel_id", true)
	assert.Equal(t, types.PixelLoaded, session.Pixels["meta_pixel_id"].Status)

	// A later failure report never regresses a loaded pixel.
	svc.MarkLoaded(session, "meta_pixel_id", false)
	assert.Equal(t, types.PixelLoaded, session.Pixels["meta_pixel_id"].Status)

	svc.MarkLoaded(session, "google_analytics_id", false)
	assert.Equal(t, types.PixelFailed, session.Pixels["google_analytics_id"].Status)

	// Unknown vendor is ignored.
	svc.MarkLoaded(session, "unknown_vendor", true)
}

func TestLoadedPixelSurvivesConsentWithdrawal(t *testing.T) {
	svc := NewPixelService(&fakeSettingsStore{settings: pixelVendors()}, testLogger(t))
	session := testSession(&consent.State{Analytics: true, Functional: true})

	_, err := svc.Evaluate(session)
	require.NoError(t, err)
	svc.MarkLoaded(session, "meta_pixel_id", true)

	session.Mu.Lock()
	session.Consent = &consent.State{Functional: true}
	session.Mu.Unlock()

	instructions, err := svc.Evaluate(session)
	require.NoError(t, err)
	meta := findInstruction(t, instructions, "meta_pixel_id")
	assert.Equal(t, "none", meta.Action)
	assert.Equal(t, types.PixelLoaded, meta.Status, "withdrawal never unloads a pixel")
}
