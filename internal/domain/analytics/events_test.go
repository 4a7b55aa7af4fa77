package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUTM(t *testing.T) {
	utm := ParseUTM("https://aldiyar.com/?utm_source=meta&utm_medium=cpc&utm_campaign=summer&utm_term=villa&utm_content=carousel")

	assert.Equal(t, "meta", utm.Source)
	assert.Equal(t, "cpc", utm.Medium)
	assert.Equal(t, "summer", utm.Campaign)
	assert.Equal(t, "villa", utm.Term)
	assert.Equal(t, "carousel", utm.Content)
	assert.False(t, utm.IsZero())
}

func TestParseUTMAbsentAndMalformed(t *testing.T) {
	assert.True(t, ParseUTM("https://aldiyar.com/properties").IsZero())
	assert.True(t, ParseUTM("://not-a-url").IsZero())
}

func TestReferrerHostStripsPathAndQuery(t *testing.T) {
	assert.Equal(t, "www.google.com", ReferrerHost("https://www.google.com/search?q=villas+cairo"))
	assert.Empty(t, ReferrerHost(""))
	assert.Empty(t, ReferrerHost("://broken"))
}

func TestDeviceTypeFromUserAgent(t *testing.T) {
	assert.Equal(t, "mobile", DeviceTypeFromUserAgent("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)"))
	assert.Equal(t, "tablet", DeviceTypeFromUserAgent("Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)"))
	assert.Equal(t, "desktop", DeviceTypeFromUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64)"))
	assert.Equal(t, "desktop", DeviceTypeFromUserAgent(""))
}

func TestCrossedMilestones(t *testing.T) {
	assert.Empty(t, CrossedMilestones(10))
	assert.Equal(t, []int{25}, CrossedMilestones(30))
	assert.Equal(t, []int{25, 50, 75}, CrossedMilestones(80))
	assert.Equal(t, []int{25, 50, 75, 100}, CrossedMilestones(100))
}

func TestRouteExclusions(t *testing.T) {
	exclusions, err := NewRouteExclusions([]string{"/admin/*", "/preview/?", "/health"})
	require.NoError(t, err)

	assert.True(t, exclusions.Excluded("/admin/settings"))
	assert.True(t, exclusions.Excluded("/admin/analytics/dashboard"))
	assert.True(t, exclusions.Excluded("/preview/1"))
	assert.True(t, exclusions.Excluded("/health"))

	assert.False(t, exclusions.Excluded("/properties"))
	assert.False(t, exclusions.Excluded("/administrator"), "patterns are anchored")
	assert.False(t, exclusions.Excluded("/preview/12"), "? matches exactly one character")
}

func TestRouteExclusionsEmpty(t *testing.T) {
	exclusions, err := NewRouteExclusions(nil)
	require.NoError(t, err)
	assert.False(t, exclusions.Excluded("/anything"))
}
