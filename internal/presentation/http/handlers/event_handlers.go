package handlers

import (
	"net/http"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// EventHandlers contains the tracker ingestion HTTP handlers.
type EventHandlers struct {
	trackingService    *services.EventTrackingService
	attributionService *services.AttributionService
	logger             *logging.ChanneledLogger
	perfTracker        *performance.Tracker
}

// NewEventHandlers creates event handlers with injected dependencies
func NewEventHandlers(trackingService *services.EventTrackingService, attributionService *services.AttributionService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EventHandlers {
	return &EventHandlers{
		trackingService:    trackingService,
		attributionService: attributionService,
		logger:             logger,
		perfTracker:        perfTracker,
	}
}

// PostEvent handles POST /api/v1/events - ingests one tracker event. A
// rejected event (excluded route, debounce, repeated milestone) still gets a
// 200 so the page never retries.
func (h *EventHandlers) PostEvent(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	var req services.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	if req.EventName == "" && req.ScrollPercent == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "eventName is required"})
		return
	}

	result := h.trackingService.Track(session, &req)
	c.JSON(http.StatusOK, result)
}

// GetLastViewed handles GET /api/v1/events/last-viewed - returns the
// session's distinct recently viewed property ids, most recent first.
func (h *EventHandlers) GetLastViewed(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	ids := h.attributionService.LastViewedProperties(session)
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"propertyIds": ids})
}
