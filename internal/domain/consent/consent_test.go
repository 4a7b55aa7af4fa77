package consent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestNilStateFailsClosed(t *testing.T) {
	var state *State
	assert.False(t, state.AnalyticsAllowed())
	assert.False(t, state.MarketingAllowed())
}

func TestMergeFromNilState(t *testing.T) {
	now := time.Now().UTC()

	var state *State
	merged := state.Merge(Choice{Analytics: boolPtr(true)}, now)

	require.NotNil(t, merged)
	assert.True(t, merged.Analytics)
	assert.False(t, merged.Marketing)
	assert.True(t, merged.Functional)
	assert.Equal(t, now.UnixMilli(), merged.Timestamp)
}

func TestMergeKeepsUnmentionedFields(t *testing.T) {
	now := time.Now().UTC()
	state := &State{Analytics: true, Marketing: true, Functional: true}

	merged := state.Merge(Choice{Marketing: boolPtr(false)}, now)

	assert.True(t, merged.Analytics, "analytics was not part of the choice")
	assert.False(t, merged.Marketing)
	assert.True(t, merged.Functional)
}

func TestMergeCanWithdraw(t *testing.T) {
	state := &State{Analytics: true, Marketing: true, Functional: true}

	merged := state.Merge(Choice{Analytics: boolPtr(false), Marketing: boolPtr(false)}, time.Now())

	assert.False(t, merged.AnalyticsAllowed())
	assert.False(t, merged.MarketingAllowed())
}

func TestParseCurrentForm(t *testing.T) {
	state := Parse(`{"analytics":true,"marketing":false,"timestamp":1700000000000}`)

	require.NotNil(t, state)
	assert.True(t, state.Analytics)
	assert.False(t, state.Marketing)
	assert.True(t, state.Functional)
}

func TestParseLegacyBooleanForm(t *testing.T) {
	granted := Parse("true")
	require.NotNil(t, granted)
	assert.True(t, granted.Analytics)
	assert.True(t, granted.Marketing)
	assert.True(t, granted.Functional)

	denied := Parse("false")
	require.NotNil(t, denied)
	assert.False(t, denied.Analytics)
	assert.False(t, denied.Marketing)
	assert.True(t, denied.Functional)
}

func TestParseGarbage(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("yes"))
	assert.Nil(t, Parse("not json at all"))
}
