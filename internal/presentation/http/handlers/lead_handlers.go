package handlers

import (
	"errors"
	"net/http"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// LeadHandlers contains the enquiry submission HTTP handlers.
type LeadHandlers struct {
	leadService *services.LeadService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewLeadHandlers creates lead handlers with injected dependencies
func NewLeadHandlers(leadService *services.LeadService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *LeadHandlers {
	return &LeadHandlers{
		leadService: leadService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLead handles POST /api/v1/leads - submits an enquiry with the session's
// attribution snapshot attached.
func (h *LeadHandlers) PostLead(c *gin.Context) {
	session, ok := middleware.GetSessionState(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not resolved"})
		return
	}

	marker := h.perfTracker.StartOperation("post_lead_request")
	defer marker.Complete()

	var req services.LeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	lead, err := h.leadService.Submit(session, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lead submission failed"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusCreated, gin.H{"leadId": lead.ID})
}
