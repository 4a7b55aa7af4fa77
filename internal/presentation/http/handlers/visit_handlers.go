// Package handlers provides HTTP request handlers for the presentation layer.
package handlers

import (
	"net/http"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/consent"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/site"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// VisitHandlers contains the session and consent HTTP handlers.
type VisitHandlers struct {
	sessionService *services.SessionService
	pixelService   *services.PixelService
	siteCtx        *site.Context
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewVisitHandlers creates visit handlers with injected dependencies
func NewVisitHandlers(sessionService *services.SessionService, pixelService *services.PixelService, siteCtx *site.Context, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *VisitHandlers {
	return &VisitHandlers{
		sessionService: sessionService,
		pixelService:   pixelService,
		siteCtx:        siteCtx,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// ConsentRequest is the banner choice payload. A stored consent string may be
// sent alongside to restore state after a cache eviction.
type ConsentRequest struct {
	Analytics *bool  `json:"analytics,omitempty"`
	Marketing *bool  `json:"marketing,omitempty"`
	Stored    string `json:"stored,omitempty"`
}

// PostVisit handles POST /api/v1/session/visit - resolves or mints the
// visitor session and records the page visit.
func (h *VisitHandlers) PostVisit(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("post_visit_request")
	defer marker.Complete()

	var req services.VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Analytics().Error("Visit request JSON binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	req.UserAgent = c.Request.UserAgent()

	// The header wins over the body when both carry a session id.
	if headerID := c.GetHeader(middleware.SessionHeader); headerID != "" {
		req.SessionID = &headerID
	}

	result := h.sessionService.ProcessVisitRequest(&req, h.siteCtx)
	if !result.Success {
		marker.SetSuccess(false)
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Error})
		return
	}

	h.logger.Analytics().Debug("Visit processed",
		"isNew", result.IsNew, "pagePath", req.PagePath, "duration", time.Since(start))
	marker.SetSuccess(true)

	c.Header(middleware.SessionHeader, result.SessionID)
	c.JSON(http.StatusOK, gin.H{
		"sessionId":  result.SessionID,
		"isNew":      result.IsNew,
		"consent":    result.Consent,
		"deviceType": result.DeviceType,
	})
}

// PostConsent handles POST /api/v1/session/consent - merges a banner choice
// and returns the new state together with the pixel instructions it unlocks.
func (h *VisitHandlers) PostConsent(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	marker := h.perfTracker.StartOperation("post_consent_request")
	defer marker.Complete()

	var req ConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if req.Stored != "" {
		h.sessionService.RestoreConsent(session.SessionID, req.Stored, h.siteCtx)
	}

	session.Mu.Lock()
	state := session.Consent
	session.Mu.Unlock()

	if req.Analytics != nil || req.Marketing != nil {
		updated, err := h.sessionService.UpdateConsent(session.SessionID, consent.Choice{
			Analytics: req.Analytics,
			Marketing: req.Marketing,
		}, h.siteCtx)
		if err != nil {
			marker.SetError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "consent update failed"})
			return
		}
		state = updated
	}

	pixels, err := h.pixelService.Evaluate(session)
	if err != nil {
		h.logger.Analytics().Error("Pixel evaluation failed", "error", err.Error())
		pixels = nil
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, gin.H{
		"consent": state,
		"pixels":  pixels,
	})
}

// GetSession handles GET /api/v1/session - returns the session's public
// state for page bootstrap.
func (h *VisitHandlers) GetSession(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	session.Mu.Lock()
	response := gin.H{
		"sessionId":  session.SessionID,
		"consent":    session.Consent,
		"deviceType": session.DeviceType,
		"language":   session.Language,
	}
	session.Mu.Unlock()

	c.JSON(http.StatusOK, response)
}
