package services

import (
	"testing"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/compare"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/consent"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/listings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	persistence "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/listings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSelectionStore struct {
	saved     map[string][]string
	saveCalls int
}

func newFakeSelectionStore() *fakeSelectionStore {
	return &fakeSelectionStore{saved: make(map[string][]string)}
}

func (f *fakeSelectionStore) Save(sessionID string, propertyIDs []string) error {
	f.saveCalls++
	f.saved[sessionID] = append([]string(nil), propertyIDs...)
	return nil
}

func (f *fakeSelectionStore) Load(sessionID string) ([]string, error) {
	return f.saved[sessionID], nil
}

type fakePropertyStore struct {
	properties map[string]*listings.Property
}

func (f *fakePropertyStore) Search(filters listings.FilterSet) (*persistence.SearchResult, error) {
	return &persistence.SearchResult{}, nil
}

func (f *fakePropertyStore) FindByID(id string) (*listings.Property, error) {
	return f.properties[id], nil
}

func (f *fakePropertyStore) FindBySlug(slug string) (*listings.Property, error) {
	for _, prop := range f.properties {
		if prop.Slug == slug {
			return prop, nil
		}
	}
	return nil, nil
}

func (f *fakePropertyStore) ExistingIDs(ids []string) ([]string, error) {
	var out []string
	for _, id := range ids {
		if _, ok := f.properties[id]; ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func newCompareFixture(t *testing.T, ids ...string) (*CompareService, *fakeSelectionStore) {
	t.Helper()
	logger := testLogger(t)

	catalog := make(map[string]*listings.Property, len(ids))
	for _, id := range ids {
		catalog[id] = &listings.Property{
			ID:      id,
			Slug:    id,
			TitleEN: "Villa " + id,
			TitleAR: "فيلا " + id,
			CityEN:  "Cairo",
			CityAR:  "القاهرة",
		}
	}

	store := newFakeSelectionStore()
	listingSvc := NewListingService(&fakePropertyStore{properties: catalog}, logger, performance.NewTracker(nil))
	return NewCompareService(store, listingSvc, logger), store
}

func TestCompareAddPersistsOnlyOnAdded(t *testing.T) {
	svc, store := newCompareFixture(t, "prop-1", "prop-2")
	session := testSession(&consent.State{Functional: true})
	session.Compare = compare.NewSelection(nil)

	result, err := svc.Add(session, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, compare.OutcomeAdded, result.Outcome)
	assert.Equal(t, 1, store.saveCalls)

	// A duplicate is reported but never rewritten.
	result, err = svc.Add(session, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, compare.OutcomeDuplicate, result.Outcome)
	assert.Equal(t, 1, store.saveCalls)

	result, err = svc.Add(session, "prop-2")
	require.NoError(t, err)
	assert.Equal(t, compare.OutcomeAdded, result.Outcome)
	assert.True(t, result.IsFull)

	result, err = svc.Add(session, "prop-3")
	require.NoError(t, err)
	assert.Equal(t, compare.OutcomeLimitReached, result.Outcome)
	assert.Equal(t, []string{"prop-1", "prop-2"}, store.saved[session.SessionID])
}

func TestCompareReplaceOldest(t *testing.T) {
	svc, store := newCompareFixture(t, "prop-1", "prop-2", "prop-3")
	session := testSession(&consent.State{Functional: true})
	session.Compare = compare.NewSelection([]string{"prop-1", "prop-2"})

	result, err := svc.ReplaceOldest(session, "prop-3")
	require.NoError(t, err)
	assert.Equal(t, []string{"prop-2", "prop-3"}, result.IDs)
	assert.Equal(t, []string{"prop-2", "prop-3"}, store.saved[session.SessionID])
}

func TestCompareRemoveAndClear(t *testing.T) {
	svc, store := newCompareFixture(t, "prop-1", "prop-2")
	session := testSession(&consent.State{Functional: true})
	session.Compare = compare.NewSelection([]string{"prop-1", "prop-2"})

	result, err := svc.Remove(session, "prop-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"prop-2"}, result.IDs)

	result, err = svc.Clear(session)
	require.NoError(t, err)
	assert.Empty(t, result.IDs)
	assert.Empty(t, store.saved[session.SessionID])
}

func TestCompareGetLocalizesSelection(t *testing.T) {
	svc, _ := newCompareFixture(t, "prop-1", "prop-2")
	session := testSession(&consent.State{Functional: true})
	session.Compare = compare.NewSelection([]string{"prop-1", "prop-2"})

	result, err := svc.Get(session, "ar")
	require.NoError(t, err)
	require.Len(t, result.Properties, 2)
	assert.Equal(t, "فيلا prop-1", result.Properties[0].Title)
	assert.True(t, result.IsFull)
}

func TestCompareGetRestoresPersistedSelection(t *testing.T) {
	svc, store := newCompareFixture(t, "prop-1", "prop-2")
	session := testSession(&consent.State{Functional: true})
	session.Compare = compare.NewSelection(nil)
	store.saved[session.SessionID] = []string{"prop-1"}

	result, err := svc.Get(session, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"prop-1"}, result.IDs)
	require.Len(t, result.Properties, 1)
	assert.Equal(t, "Villa prop-1", result.Properties[0].Title)
}

func TestCompareGetPrunesDelistedProperties(t *testing.T) {
	svc, store := newCompareFixture(t, "prop-2")
	session := testSession(&consent.State{Functional: true})
	session.Compare = compare.NewSelection([]string{"prop-1", "prop-2"})

	result, err := svc.Get(session, "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"prop-2"}, result.IDs)
	assert.False(t, result.IsFull)
	assert.Equal(t, []string{"prop-2"}, store.saved[session.SessionID], "pruned selection is written back")
}
