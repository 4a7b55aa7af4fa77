package handlers

import (
	"errors"
	"net/http"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/listings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// FeedHandlers contains the infinite-scroll feed HTTP handlers.
type FeedHandlers struct {
	feedService *services.FeedService
	defaultLang string
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewFeedHandlers creates feed handlers with injected dependencies
func NewFeedHandlers(feedService *services.FeedService, defaultLang string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *FeedHandlers {
	return &FeedHandlers{
		feedService: feedService,
		defaultLang: defaultLang,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// GetFeed handles GET /api/v1/feed - returns the session's feed for the
// filter state in the query string, resetting to page one when it changed.
func (h *FeedHandlers) GetFeed(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	marker := h.perfTracker.StartOperation("get_feed_request")
	defer marker.Complete()

	filters := listings.ParseFilters(c.Request.URL.Query())
	lang := resolveLang(c, h.defaultLang)

	state, err := h.feedService.Get(c.Request.Context(), session.SessionID, filters, lang)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed load failed"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, state)
}

// PostFeedLoadMore handles POST /api/v1/feed/load-more - requests the next
// page for the session's current feed.
func (h *FeedHandlers) PostFeedLoadMore(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	state, err := h.feedService.LoadMore(c.Request.Context(), session.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "feed not started"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed load failed"})
		return
	}

	c.JSON(http.StatusOK, state)
}

// PostFeedRetry handles POST /api/v1/feed/retry - reissues the last failed
// page fetch. Recovery is always an explicit page action, never automatic.
func (h *FeedHandlers) PostFeedRetry(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	state, err := h.feedService.Retry(c.Request.Context(), session.SessionID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			c.JSON(http.StatusConflict, gin.H{"error": "feed not started"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "feed retry failed"})
		return
	}

	c.JSON(http.StatusOK, state)
}
