package handlers

import (
	"errors"
	"net/http"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/listings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/gin-gonic/gin"
)

// ListingHandlers contains the property catalog HTTP handlers.
type ListingHandlers struct {
	listingService *services.ListingService
	defaultLang    string
	logger         *logging.ChanneledLogger
	perfTracker    *performance.Tracker
}

// NewListingHandlers creates listing handlers with injected dependencies
func NewListingHandlers(listingService *services.ListingService, defaultLang string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ListingHandlers {
	return &ListingHandlers{
		listingService: listingService,
		defaultLang:    defaultLang,
		logger:         logger,
		perfTracker:    perfTracker,
	}
}

// resolveLang picks the response language: explicit query param first, then
// the site default.
func resolveLang(c *gin.Context, fallback string) string {
	switch c.Query("lang") {
	case "en":
		return "en"
	case "ar":
		return "ar"
	}
	if fallback == "" {
		return "en"
	}
	return fallback
}

// GetListings handles GET /api/v1/listings - one filtered, localized page of
// the catalog. The filter state is carried entirely in the query string.
func (h *ListingHandlers) GetListings(c *gin.Context) {
	marker := h.perfTracker.StartOperation("get_listings_request")
	defer marker.Complete()

	filters := listings.ParseFilters(c.Request.URL.Query())
	lang := resolveLang(c, h.defaultLang)

	page, err := h.listingService.Search(filters, lang)
	if err != nil {
		marker.SetError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing search failed"})
		return
	}

	marker.SetSuccess(true)
	c.JSON(http.StatusOK, page)
}

// GetListingBySlug handles GET /api/v1/listings/slug/:slug - one localized
// property detail.
func (h *ListingHandlers) GetListingBySlug(c *gin.Context) {
	slug := c.Param("slug")
	lang := resolveLang(c, h.defaultLang)

	property, err := h.listingService.GetBySlug(slug, lang)
	if err != nil {
		if errors.Is(err, services.ErrPropertyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
			return
		}
		h.logger.Listings().Error("Property lookup failed", "error", err.Error(), "slug", slug)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "property lookup failed"})
		return
	}

	c.JSON(http.StatusOK, property)
}
