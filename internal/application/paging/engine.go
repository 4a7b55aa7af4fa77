// Package paging provides the fetch-and-append controller behind the
// session-scoped listing feed. Pages are fetched asynchronously and applied
// strictly in issuance order, never arrival order.
package paging

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is delivered to waiters whose fetch was invalidated by a
// reset before its result could be applied.
var ErrSuperseded = errors.New("paging: fetch superseded by reset")

// Page is one fetched slice of the result set.
type Page[T any] struct {
	Data        []T
	HasNextPage bool
	Total       int
}

// FetchFunc loads one page of results.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// State is a point-in-time snapshot of the feed.
type State[T any] struct {
	Items       []T
	Page        int
	HasNextPage bool
	Total       int
	Err         error
	Loading     bool
}

type completion[T any] struct {
	page    Page[T]
	err     error
	pageNum int
	initial bool
}

// Engine accumulates pages from a FetchFunc. Every fetch is tagged with a
// monotonically increasing (generation, sequence) pair: results from an old
// generation are discarded on arrival, and within a generation a result that
// arrives early is held back until its predecessors have been applied. Reset
// bumps the generation, which is the only invalidation mechanism; there is
// no per-fetch cancellation.
type Engine[T any] struct {
	mu      sync.Mutex
	fetch   FetchFunc[T]
	gen     int
	nextSeq int
	apply   int
	pending map[int]completion[T]
	waiters map[int][]chan error

	issuedPage int
	items      []T
	page       int
	hasNext    bool
	total      int
	err        error
}

// NewEngine creates an idle engine. Call Start to load the first page.
func NewEngine[T any](fetch FetchFunc[T]) *Engine[T] {
	return &Engine[T]{
		fetch:   fetch,
		pending: make(map[int]completion[T]),
		waiters: make(map[int][]chan error),
	}
}

// Start performs the initial load: any in-flight fetches are invalidated and
// page 1 is fetched as a replace. Equivalent to Reset on a fresh engine.
func (e *Engine[T]) Start(ctx context.Context) {
	e.Reset(ctx)
}

// Reset clears the feed and restarts from page 1. In-flight fetches from the
// previous generation are discarded when they arrive.
func (e *Engine[T]) Reset(ctx context.Context) {
	e.mu.Lock()
	e.invalidateLocked(ErrSuperseded)
	e.items = nil
	e.page = 0
	e.hasNext = false
	e.total = 0
	e.err = nil
	e.issuedPage = 1
	seq := e.issueLocked()
	gen := e.gen
	e.mu.Unlock()

	e.dispatch(ctx, gen, seq, 1, true)
}

// LoadMore issues a fetch for the next page. It reports false when the end
// of the result set is already known, when the initial load has not been
// issued yet, or when a failed page is pending manual retry decision.
// Duplicate triggers are impossible: page numbers are issued monotonically
// and each page is fetched at most once per generation.
func (e *Engine[T]) LoadMore(ctx context.Context) bool {
	e.mu.Lock()
	pageNum, seq, gen, ok := e.issueNextLocked()
	e.mu.Unlock()

	if !ok {
		return false
	}

	e.dispatch(ctx, gen, seq, pageNum, false)
	return true
}

// LoadMoreWait issues the next page fetch and blocks until its result has
// been applied in order, the fetch fails, or ctx is done. It returns
// (false, nil) when no fetch was issued.
func (e *Engine[T]) LoadMoreWait(ctx context.Context) (bool, error) {
	e.mu.Lock()
	pageNum, seq, gen, ok := e.issueNextLocked()
	if !ok {
		e.mu.Unlock()
		return false, nil
	}
	done := make(chan error, 1)
	e.waiters[seq] = append(e.waiters[seq], done)
	e.mu.Unlock()

	e.dispatch(ctx, gen, seq, pageNum, false)

	select {
	case err := <-done:
		return true, err
	case <-ctx.Done():
		return true, ctx.Err()
	}
}

// StartWait performs the initial load and blocks until page 1 is applied.
func (e *Engine[T]) StartWait(ctx context.Context) error {
	e.mu.Lock()
	e.invalidateLocked(ErrSuperseded)
	e.items = nil
	e.page = 0
	e.hasNext = false
	e.total = 0
	e.err = nil
	e.issuedPage = 1
	seq := e.issueLocked()
	gen := e.gen
	done := make(chan error, 1)
	e.waiters[seq] = append(e.waiters[seq], done)
	e.mu.Unlock()

	e.dispatch(ctx, gen, seq, 1, true)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns the current feed state. Items are copied.
func (e *Engine[T]) Snapshot() State[T] {
	e.mu.Lock()
	defer e.mu.Unlock()

	items := make([]T, len(e.items))
	copy(items, e.items)

	return State[T]{
		Items:       items,
		Page:        e.page,
		HasNextPage: e.hasNext,
		Total:       e.total,
		Err:         e.err,
		Loading:     e.nextSeq > e.apply,
	}
}

// issueNextLocked reserves the next append page if one can be issued.
func (e *Engine[T]) issueNextLocked() (pageNum, seq, gen int, ok bool) {
	if e.issuedPage == 0 {
		return 0, 0, 0, false // not started
	}
	if e.err != nil {
		return 0, 0, 0, false // failed page awaits an explicit retry or reset
	}
	// Once the applied frontier has caught up with issuance, hasNext is
	// authoritative; while fetches are still in flight, pipelining past the
	// issued frontier is allowed and trimmed by the fetcher's empty pages.
	if e.issuedPage == e.page && !e.hasNext {
		return 0, 0, 0, false
	}

	e.issuedPage++
	return e.issuedPage, e.issueLocked(), e.gen, true
}

func (e *Engine[T]) issueLocked() int {
	seq := e.nextSeq
	e.nextSeq++
	return seq
}

// invalidateLocked discards all pending results and releases waiters.
func (e *Engine[T]) invalidateLocked(reason error) {
	e.gen++
	e.nextSeq = 0
	e.apply = 0
	e.pending = make(map[int]completion[T])
	for seq, chans := range e.waiters {
		for _, ch := range chans {
			ch <- reason
		}
		delete(e.waiters, seq)
	}
}

func (e *Engine[T]) dispatch(ctx context.Context, gen, seq, pageNum int, initial bool) {
	go func() {
		page, err := e.fetch(ctx, pageNum)
		e.complete(gen, seq, completion[T]{page: page, err: err, pageNum: pageNum, initial: initial})
	}()
}

// complete records a fetch result and applies every result whose
// predecessors have already been applied.
func (e *Engine[T]) complete(gen, seq int, c completion[T]) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return // superseded by a reset; waiters were already released
	}

	e.pending[seq] = c
	for {
		next, ok := e.pending[e.apply]
		if !ok {
			return
		}
		delete(e.pending, e.apply)
		e.applyLocked(e.apply, next)
		e.apply++
	}
}

func (e *Engine[T]) applyLocked(seq int, c completion[T]) {
	if c.err != nil {
		// Surface the error, keep loaded items, and invalidate any
		// pipelined successors so the feed never appends across a gap.
		e.err = c.err
		e.issuedPage = c.pageNum - 1
		e.notifyLocked(seq, c.err)
		e.invalidateAfterFailureLocked(seq)
		return
	}

	e.err = nil
	if c.initial {
		e.items = append([]T(nil), c.page.Data...)
	} else {
		e.items = append(e.items, c.page.Data...)
	}
	e.page = c.pageNum
	e.hasNext = c.page.HasNextPage
	e.total = c.page.Total
	e.notifyLocked(seq, nil)
}

// invalidateAfterFailureLocked bumps the generation so that results for
// pages issued after a failed one are discarded on arrival.
func (e *Engine[T]) invalidateAfterFailureLocked(failedSeq int) {
	e.gen++
	e.nextSeq = 0
	e.apply = 0
	e.pending = make(map[int]completion[T])
	for seq, chans := range e.waiters {
		if seq == failedSeq {
			continue
		}
		for _, ch := range chans {
			ch <- ErrSuperseded
		}
		delete(e.waiters, seq)
	}
}

func (e *Engine[T]) notifyLocked(seq int, err error) {
	for _, ch := range e.waiters[seq] {
		ch <- err
	}
	delete(e.waiters, seq)
}

// Retry reissues the last failed page, if any. It is the manual recovery
// path for a surfaced fetch error; there is no automatic retry.
func (e *Engine[T]) Retry(ctx context.Context) bool {
	e.mu.Lock()
	if e.err == nil {
		e.mu.Unlock()
		return false
	}
	e.err = nil
	e.issuedPage++
	pageNum := e.issuedPage
	seq := e.issueLocked()
	gen := e.gen
	e.mu.Unlock()

	e.dispatch(ctx, gen, seq, pageNum, pageNum == 1)
	return true
}
