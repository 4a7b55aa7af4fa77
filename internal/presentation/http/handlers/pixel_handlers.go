package handlers

import (
	"net/http"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// PixelHandlers contains the vendor pixel HTTP handlers.
type PixelHandlers struct {
	pixelService *services.PixelService
	logger       *logging.ChanneledLogger
}

// NewPixelHandlers creates pixel handlers with injected dependencies
func NewPixelHandlers(pixelService *services.PixelService, logger *logging.ChanneledLogger) *PixelHandlers {
	return &PixelHandlers{
		pixelService: pixelService,
		logger:       logger,
	}
}

// PixelStatusRequest is the page's report of one pixel load attempt.
type PixelStatusRequest struct {
	Vendor string `json:"vendor"`
	OK     bool   `json:"ok"`
}

// GetPixels handles GET /api/v1/pixels - returns the render instructions for
// the session's current consent and settings.
func (h *PixelHandlers) GetPixels(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	instructions, err := h.pixelService.Evaluate(session)
	if err != nil {
		h.logger.Analytics().Error("Pixel evaluation failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "pixel evaluation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"pixels": instructions})
}

// PostPixelStatus handles POST /api/v1/pixels/status - records the outcome of
// an injected pixel script.
func (h *PixelHandlers) PostPixelStatus(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	var req PixelStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Vendor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	h.pixelService.MarkLoaded(session, req.Vendor, req.OK)
	c.JSON(http.StatusOK, gin.H{"states": h.pixelService.States(session)})
}
