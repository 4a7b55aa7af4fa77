package attribution

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferKeepsOnlyMostRecent(t *testing.T) {
	b := NewBuffer(10)

	for i := 1; i <= 15; i++ {
		b.Append(SessionEvent{EventName: fmt.Sprintf("event_%d", i), TS: time.Now()})
	}

	events := b.Events()
	require.Len(t, events, 10)
	assert.Equal(t, "event_6", events[0].EventName, "oldest five were evicted")
	assert.Equal(t, "event_15", events[9].EventName)
}

func TestBufferBelowCapacity(t *testing.T) {
	b := NewBuffer(10)
	b.Append(SessionEvent{EventName: "one"})
	b.Append(SessionEvent{EventName: "two"})

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, "one", b.Events()[0].EventName)
}

func TestSanitizeMetaAllowList(t *testing.T) {
	meta := map[string]any{
		"bedrooms": 3,
		"price":    250000,
		"email":    "someone@example.com",
		"phone":    "+201234567890",
		"note":     "call me",
	}

	sanitized := SanitizeMeta(meta)

	require.NotNil(t, sanitized)
	assert.Equal(t, 3, sanitized["bedrooms"])
	assert.Equal(t, 250000, sanitized["price"])
	assert.NotContains(t, sanitized, "email")
	assert.NotContains(t, sanitized, "phone")
	assert.NotContains(t, sanitized, "note")
}

func TestSanitizeMetaNilAndEmpty(t *testing.T) {
	assert.Nil(t, SanitizeMeta(nil))
	assert.Nil(t, SanitizeMeta(map[string]any{"email": "x@y.z"}), "nothing allow-listed survives")
}

func TestLastViewedPropertiesDistinctMostRecentFirst(t *testing.T) {
	b := NewBuffer(10)
	b.Append(SessionEvent{EventName: EventPropertyViewed, EntityID: "prop-1"})
	b.Append(SessionEvent{EventName: "search_performed"})
	b.Append(SessionEvent{EventName: EventPropertyViewed, EntityID: "prop-2"})
	b.Append(SessionEvent{EventName: EventPropertyViewed, EntityID: "prop-1"})
	b.Append(SessionEvent{EventName: EventPropertyViewed, EntityID: "prop-3"})

	ids := b.LastViewedProperties(5)
	assert.Equal(t, []string{"prop-3", "prop-1", "prop-2"}, ids)

	capped := b.LastViewedProperties(2)
	assert.Equal(t, []string{"prop-3", "prop-1"}, capped)
}

func TestSummaryCapsAndOrders(t *testing.T) {
	b := NewBuffer(10)
	for i := 1; i <= 8; i++ {
		b.Append(SessionEvent{
			EventName: fmt.Sprintf("event_%d", i),
			PagePath:  "/properties",
			TS:        time.UnixMilli(int64(i * 1000)),
		})
	}

	summary := b.Summary(5)
	require.Len(t, summary, 5)
	assert.Equal(t, "event_4", summary[0].EventName)
	assert.Equal(t, "event_8", summary[4].EventName)
	assert.Equal(t, int64(8000), summary[4].TS)
}
