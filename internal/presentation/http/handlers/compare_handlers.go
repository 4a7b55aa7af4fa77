package handlers

import (
	"net/http"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// CompareHandlers contains the comparison selection HTTP handlers.
type CompareHandlers struct {
	compareService *services.CompareService
	defaultLang    string
	logger         *logging.ChanneledLogger
}

// NewCompareHandlers creates compare handlers with injected dependencies
func NewCompareHandlers(compareService *services.CompareService, defaultLang string, logger *logging.ChanneledLogger) *CompareHandlers {
	return &CompareHandlers{
		compareService: compareService,
		defaultLang:    defaultLang,
		logger:         logger,
	}
}

// CompareRequest names the property a compare mutation applies to.
type CompareRequest struct {
	PropertyID string `json:"propertyId"`
}

// GetCompare handles GET /api/v1/compare - the session's selection with
// localized property details.
func (h *CompareHandlers) GetCompare(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	result, err := h.compareService.Get(session, resolveLang(c, h.defaultLang))
	if err != nil {
		h.logger.Listings().Error("Compare load failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "compare load failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// PostCompare handles POST /api/v1/compare - attempts to add a property. A
// full selection reports limit_reached rather than silently evicting.
func (h *CompareHandlers) PostCompare(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "propertyId is required"})
		return
	}

	result, err := h.compareService.Add(session, req.PropertyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "compare update failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// PostCompareReplace handles POST /api/v1/compare/replace - swaps the oldest
// selected property for the given one after a limit_reached prompt.
func (h *CompareHandlers) PostCompareReplace(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.PropertyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "propertyId is required"})
		return
	}

	result, err := h.compareService.ReplaceOldest(session, req.PropertyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "compare update failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteCompareItem handles DELETE /api/v1/compare/:id - removes one property
// from the selection.
func (h *CompareHandlers) DeleteCompareItem(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	result, err := h.compareService.Remove(session, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "compare update failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeleteCompare handles DELETE /api/v1/compare - clears the selection.
func (h *CompareHandlers) DeleteCompare(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	result, err := h.compareService.Clear(session)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "compare update failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
