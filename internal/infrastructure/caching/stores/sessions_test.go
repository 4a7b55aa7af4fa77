package stores

import (
	"fmt"
	"testing"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionLifecycle(t *testing.T) {
	store := NewSessionsStore(nil)

	session := store.CreateSession("01J5SESSIONLIFECYCLE0000001")
	require.NotNil(t, session)
	assert.NotNil(t, session.Events)
	assert.NotNil(t, session.Compare)

	got, found := store.GetSession("01J5SESSIONLIFECYCLE0000001")
	require.True(t, found)
	assert.Same(t, session, got)

	store.RemoveSession("01J5SESSIONLIFECYCLE0000001")
	_, found = store.GetSession("01J5SESSIONLIFECYCLE0000001")
	assert.False(t, found)
	assert.Equal(t, 0, store.Count())
}

func TestGetSessionDropsExpired(t *testing.T) {
	store := NewSessionsStore(nil)

	session := store.CreateSession("01J5EXPIREDSESSION00000001X")
	session.Mu.Lock()
	session.ExpiresAt = time.Now().Add(-time.Minute)
	session.Mu.Unlock()

	_, found := store.GetSession("01J5EXPIREDSESSION00000001X")
	assert.False(t, found)
	assert.Equal(t, 0, store.Count(), "expired sessions are removed on access")
}

func TestPurgeExpired(t *testing.T) {
	store := NewSessionsStore(nil)

	for i := 0; i < 3; i++ {
		store.CreateSession(fmt.Sprintf("live-%d", i))
	}
	for i := 0; i < 2; i++ {
		session := store.CreateSession(fmt.Sprintf("stale-%d", i))
		session.Mu.Lock()
		session.ExpiresAt = time.Now().Add(-time.Hour)
		session.Mu.Unlock()
	}

	removed := store.PurgeExpired()
	assert.Equal(t, 2, removed)
	assert.Equal(t, 3, store.Count())

	assert.Equal(t, 0, store.PurgeExpired())
}

func TestCreateSessionEvictsOldestAtCapacity(t *testing.T) {
	store := NewSessionsStore(nil)

	for i := 0; i < config.MaxTrackedSessions; i++ {
		store.CreateSession(fmt.Sprintf("session-%d", i))
	}
	require.Equal(t, config.MaxTrackedSessions, store.Count())

	// Make one session clearly the coldest.
	victim, found := store.GetSession("session-42")
	require.True(t, found)
	victim.Mu.Lock()
	victim.LastActivity = time.Now().Add(-12 * time.Hour)
	victim.Mu.Unlock()

	store.CreateSession("session-overflow")

	assert.Equal(t, config.MaxTrackedSessions, store.Count(), "capacity holds")
	_, found = store.GetSession("session-42")
	assert.False(t, found, "the coldest session was evicted")
	_, found = store.GetSession("session-overflow")
	assert.True(t, found)
}

func TestSessionIDsSnapshot(t *testing.T) {
	store := NewSessionsStore(nil)
	store.CreateSession("a")
	store.CreateSession("b")

	ids := store.SessionIDs()
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}
