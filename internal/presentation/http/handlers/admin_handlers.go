package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/listings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/media"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	listingrepo "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/listings"
	settingsrepo "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/settings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// maxPhotoUploadBytes caps a single photo upload.
const maxPhotoUploadBytes = 10 << 20

// AdminHandlers contains the back-office HTTP handlers.
type AdminHandlers struct {
	authService      *services.AuthService
	settingsService  *services.SettingsService
	dashboardService *services.DashboardService
	leadService      *services.LeadService
	propertyRepo     *listingrepo.SQLPropertyRepository
	imageProcessor   *media.ImageProcessor
	logger           *logging.ChanneledLogger
	perfTracker      *performance.Tracker
}

// NewAdminHandlers creates admin handlers with injected dependencies
func NewAdminHandlers(
	authService *services.AuthService,
	settingsService *services.SettingsService,
	dashboardService *services.DashboardService,
	leadService *services.LeadService,
	propertyRepo *listingrepo.SQLPropertyRepository,
	imageProcessor *media.ImageProcessor,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *AdminHandlers {
	return &AdminHandlers{
		authService:      authService,
		settingsService:  settingsService,
		dashboardService: dashboardService,
		leadService:      leadService,
		propertyRepo:     propertyRepo,
		imageProcessor:   imageProcessor,
		logger:           logger,
		perfTracker:      perfTracker,
	}
}

// LoginRequest carries back-office credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PhotoUploadRequest carries one photo as a base64 data URL.
type PhotoUploadRequest struct {
	Data string `json:"data"`
}

// PostLogin handles POST /api/admin/login - authenticates an admin and issues
// the JWT.
func (h *AdminHandlers) PostLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSettings handles GET /api/admin/settings - lists the tracking pixel
// configuration.
func (h *AdminHandlers) GetSettings(c *gin.Context) {
	all, err := h.settingsService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "settings load failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": all})
}

// PutSetting handles PUT /api/admin/settings - updates one vendor setting.
func (h *AdminHandlers) PutSetting(c *gin.Context) {
	var req settingsrepo.TrackingSetting
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if err := h.settingsService.Update(req); err != nil {
		if errors.Is(err, services.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "setting update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": req.Key})
}

// GetDashboard handles GET /api/admin/analytics/dashboard - the analytics
// overview for a lookback window in days.
func (h *AdminHandlers) GetDashboard(c *gin.Context) {
	windowDays, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	overview, err := h.dashboardService.Overview(windowDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dashboard load failed"})
		return
	}

	c.JSON(http.StatusOK, overview)
}

// GetLeads handles GET /api/admin/leads - recent enquiries, newest first.
func (h *AdminHandlers) GetLeads(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "25"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	leads, err := h.leadService.Recent(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "leads load failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// PostProperty handles POST /api/admin/properties - creates a catalog entry.
func (h *AdminHandlers) PostProperty(c *gin.Context) {
	var prop listings.Property
	if err := c.ShouldBindJSON(&prop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	if prop.Slug == "" || prop.TitleEN == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slug and titleEn are required"})
		return
	}

	prop.ID = security.GenerateULID()
	prop.CreatedAt = time.Now().UTC()
	if prop.Status == "" {
		prop.Status = "available"
	}

	if err := h.propertyRepo.Store(&prop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "property create failed"})
		return
	}

	h.logger.Listings().Info("Property created", "id", prop.ID, "slug", prop.Slug)
	c.JSON(http.StatusCreated, prop)
}

// PutProperty handles PUT /api/admin/properties/:id - updates a catalog
// entry.
func (h *AdminHandlers) PutProperty(c *gin.Context) {
	id := c.Param("id")

	existing, err := h.propertyRepo.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "property lookup failed"})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	var prop listings.Property
	if err := c.ShouldBindJSON(&prop); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	prop.ID = id
	prop.CreatedAt = existing.CreatedAt

	if err := h.propertyRepo.Update(&prop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "property update failed"})
		return
	}

	h.logger.Listings().Info("Property updated", "id", prop.ID)
	c.JSON(http.StatusOK, prop)
}

// PostPropertyPhoto handles POST /api/admin/properties/:id/photos - processes
// an uploaded photo into webp renditions and appends it to the property.
func (h *AdminHandlers) PostPropertyPhoto(c *gin.Context) {
	id := c.Param("id")

	prop, err := h.propertyRepo.FindByID(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "property lookup failed"})
		return
	}
	if prop == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "property not found"})
		return
	}

	var req PhotoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Data == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo data is required"})
		return
	}
	if len(req.Data) > maxPhotoUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo too large"})
		return
	}

	original, renditions, err := h.imageProcessor.ProcessPropertyPhoto(req.Data, id)
	if err != nil {
		h.logger.Listings().Error("Photo processing failed", "error", err.Error(), "propertyId", id)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "photo processing failed"})
		return
	}

	prop.Photos = append(prop.Photos, original)
	if err := h.propertyRepo.Update(prop); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "property update failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"original":   original,
		"renditions": renditions,
	})
}
