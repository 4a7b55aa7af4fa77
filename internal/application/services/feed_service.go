package services

import (
	"context"
	"sync"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/paging"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/listings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
)

// sessionFeed pairs a paging engine with the filter query it was started for.
type sessionFeed struct {
	engine *paging.Engine[listings.LocalizedProperty]
	query  string
	lang   string
}

// FeedService runs the per-session infinite-scroll feed. Each session owns
// one paging engine; changing the filter set resets it, which supersedes any
// in-flight page fetch.
type FeedService struct {
	listings *ListingService
	logger   *logging.ChanneledLogger

	mu    sync.Mutex
	feeds map[string]*sessionFeed
}

// NewFeedService creates a new feed service
func NewFeedService(listingService *ListingService, logger *logging.ChanneledLogger) *FeedService {
	return &FeedService{
		listings: listingService,
		logger:   logger,
		feeds:    make(map[string]*sessionFeed),
	}
}

// FeedState is the feed snapshot returned to the page.
type FeedState struct {
	Properties  []listings.LocalizedProperty `json:"properties"`
	Page        int                          `json:"page"`
	HasNextPage bool                         `json:"hasNextPage"`
	Total       int                          `json:"total"`
	Loading     bool                         `json:"loading"`
	Error       string                       `json:"error,omitempty"`
	Query       string                       `json:"query"`
}

// Get returns the feed for a session, starting or resetting the engine when
// the filter set changed. The initial page load is awaited so a fresh feed
// never renders empty.
func (s *FeedService) Get(ctx context.Context, sessionID string, filters listings.FilterSet, lang string) (*FeedState, error) {
	query := filters.QueryString()

	s.mu.Lock()
	feed, exists := s.feeds[sessionID]
	if !exists || feed.query != query || feed.lang != lang {
		feed = &sessionFeed{
			engine: paging.NewEngine(s.fetchFunc(filters, lang)),
			query:  query,
			lang:   lang,
		}
		s.feeds[sessionID] = feed
		s.mu.Unlock()

		if err := feed.engine.StartWait(ctx); err != nil {
			s.logger.Listings().Error("Feed initial load failed", "error", err.Error(), "query", query)
		}
	} else {
		s.mu.Unlock()
	}

	return s.snapshot(feed), nil
}

// LoadMore requests the next page for a session's feed and waits for it to
// apply. A feed that was never started reports an error state.
func (s *FeedService) LoadMore(ctx context.Context, sessionID string) (*FeedState, error) {
	s.mu.Lock()
	feed, exists := s.feeds[sessionID]
	s.mu.Unlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	if issued, err := feed.engine.LoadMoreWait(ctx); issued && err != nil {
		s.logger.Listings().Debug("Feed page load failed", "error", err.Error(), "query", feed.query)
	}

	return s.snapshot(feed), nil
}

// Retry reissues the last failed page fetch for a session's feed.
func (s *FeedService) Retry(ctx context.Context, sessionID string) (*FeedState, error) {
	s.mu.Lock()
	feed, exists := s.feeds[sessionID]
	s.mu.Unlock()

	if !exists {
		return nil, ErrSessionNotFound
	}

	feed.engine.Retry(ctx)
	return s.snapshot(feed), nil
}

// Drop discards a session's feed engine. Called when the session expires.
func (s *FeedService) Drop(sessionID string) {
	s.mu.Lock()
	delete(s.feeds, sessionID)
	s.mu.Unlock()
}

func (s *FeedService) fetchFunc(filters listings.FilterSet, lang string) paging.FetchFunc[listings.LocalizedProperty] {
	return func(ctx context.Context, page int) (paging.Page[listings.LocalizedProperty], error) {
		pageFilters := filters
		pageFilters.Page = page

		result, err := s.listings.Search(pageFilters, lang)
		if err != nil {
			return paging.Page[listings.LocalizedProperty]{}, err
		}
		return paging.Page[listings.LocalizedProperty]{
			Data:        result.Properties,
			HasNextPage: result.HasNextPage,
			Total:       result.Total,
		}, nil
	}
}

func (s *FeedService) snapshot(feed *sessionFeed) *FeedState {
	snap := feed.engine.Snapshot()

	state := &FeedState{
		Properties:  snap.Items,
		Page:        snap.Page,
		HasNextPage: snap.HasNextPage,
		Total:       snap.Total,
		Loading:     snap.Loading,
		Query:       feed.query,
	}
	if snap.Err != nil {
		state.Error = snap.Err.Error()
	}
	return state
}
