package paging

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func page(data []string, hasNext bool, total int) Page[string] {
	return Page[string]{Data: data, HasNextPage: hasNext, Total: total}
}

func TestEngine_InitialLoadReplaces(t *testing.T) {
	fetch := func(ctx context.Context, p int) (Page[string], error) {
		return page([]string{"a", "b"}, true, 4), nil
	}

	e := NewEngine(fetch)
	require.NoError(t, e.StartWait(context.Background()))

	state := e.Snapshot()
	assert.Equal(t, []string{"a", "b"}, state.Items)
	assert.Equal(t, 1, state.Page)
	assert.True(t, state.HasNextPage)
	assert.Equal(t, 4, state.Total)
	assert.NoError(t, state.Err)
}

func TestEngine_AppendsInIssuanceOrderNotArrivalOrder(t *testing.T) {
	release2 := make(chan struct{})
	release3 := make(chan struct{})

	fetch := func(ctx context.Context, p int) (Page[string], error) {
		switch p {
		case 1:
			return page([]string{"p1a", "p1b"}, true, 6), nil
		case 2:
			<-release2
			return page([]string{"p2a", "p2b"}, true, 6), nil
		case 3:
			<-release3
			return page([]string{"p3a", "p3b"}, false, 6), nil
		}
		return Page[string]{}, errors.New("unexpected page")
	}

	e := NewEngine(fetch)
	require.NoError(t, e.StartWait(context.Background()))
	require.True(t, e.LoadMore(context.Background()))
	require.True(t, e.LoadMore(context.Background()))

	// Page 3 resolves first but must be held back until page 2 applies.
	close(release3)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"p1a", "p1b"}, e.Snapshot().Items)

	close(release2)
	assert.Eventually(t, func() bool {
		return len(e.Snapshot().Items) == 6
	}, time.Second, 5*time.Millisecond)

	state := e.Snapshot()
	assert.Equal(t, []string{"p1a", "p1b", "p2a", "p2b", "p3a", "p3b"}, state.Items)
	assert.Equal(t, 3, state.Page)
	assert.False(t, state.HasNextPage)
}

func TestEngine_ResetDiscardsInFlightFetch(t *testing.T) {
	var generation atomic.Int32
	releaseOld := make(chan struct{})

	fetch := func(ctx context.Context, p int) (Page[string], error) {
		if generation.Load() == 0 {
			<-releaseOld
			return page([]string{"stale"}, true, 10), nil
		}
		return page([]string{"fresh"}, false, 1), nil
	}

	e := NewEngine(fetch)
	e.Start(context.Background()) // old generation, still blocked

	generation.Store(1)
	require.NoError(t, e.StartWait(context.Background()))
	close(releaseOld) // stale result arrives after the reset

	time.Sleep(50 * time.Millisecond)
	state := e.Snapshot()
	assert.Equal(t, []string{"fresh"}, state.Items)
	assert.False(t, state.HasNextPage)
}

func TestEngine_FailedFetchKeepsItemsAndSurfacesError(t *testing.T) {
	fetchErr := errors.New("upstream unavailable")
	var failing atomic.Bool

	fetch := func(ctx context.Context, p int) (Page[string], error) {
		if failing.Load() {
			return Page[string]{}, fetchErr
		}
		if p == 1 {
			return page([]string{"a"}, true, 2), nil
		}
		return page([]string{"b"}, false, 2), nil
	}

	e := NewEngine(fetch)
	require.NoError(t, e.StartWait(context.Background()))

	failing.Store(true)
	issued, err := e.LoadMoreWait(context.Background())
	require.True(t, issued)
	assert.ErrorIs(t, err, fetchErr)

	state := e.Snapshot()
	assert.Equal(t, []string{"a"}, state.Items) // loaded data survives
	assert.ErrorIs(t, state.Err, fetchErr)

	// No automatic retry: LoadMore refuses until Retry or Reset.
	assert.False(t, e.LoadMore(context.Background()))

	failing.Store(false)
	require.True(t, e.Retry(context.Background()))
	assert.Eventually(t, func() bool {
		return len(e.Snapshot().Items) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, e.Snapshot().Items)
	assert.NoError(t, e.Snapshot().Err)
}

func TestEngine_LoadMoreRefusesPastEnd(t *testing.T) {
	fetch := func(ctx context.Context, p int) (Page[string], error) {
		return page([]string{"only"}, false, 1), nil
	}

	e := NewEngine(fetch)
	require.NoError(t, e.StartWait(context.Background()))
	assert.False(t, e.LoadMore(context.Background()))
}

func TestEngine_LoadMoreRefusesBeforeStart(t *testing.T) {
	e := NewEngine(func(ctx context.Context, p int) (Page[string], error) {
		return Page[string]{}, nil
	})
	assert.False(t, e.LoadMore(context.Background()))
}

func TestEngine_LoadMoreWaitAppends(t *testing.T) {
	fetch := func(ctx context.Context, p int) (Page[string], error) {
		switch p {
		case 1:
			return page([]string{"a"}, true, 2), nil
		default:
			return page([]string{"b"}, false, 2), nil
		}
	}

	e := NewEngine(fetch)
	require.NoError(t, e.StartWait(context.Background()))

	issued, err := e.LoadMoreWait(context.Background())
	require.True(t, issued)
	require.NoError(t, err)

	state := e.Snapshot()
	assert.Equal(t, []string{"a", "b"}, state.Items)
	assert.Equal(t, 2, state.Page)
	assert.False(t, state.HasNextPage)
}
