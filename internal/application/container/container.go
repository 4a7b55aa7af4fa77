// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/AldiyarDigital/aldiyar-go/internal/application/services"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/manager"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/email"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/media"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/messaging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	analyticsrepo "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/compare"
	eventrepo "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/analytics"
	listingrepo "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/listings"
	settingsrepo "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/settings"
	userrepo "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/user"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/site"
	"github.com/AldiyarDigital/aldiyar-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	SessionService       *services.SessionService
	AttributionService   *services.AttributionService
	EventTrackingService *services.EventTrackingService
	PixelService         *services.PixelService
	ListingService       *services.ListingService
	FeedService          *services.FeedService
	CompareService       *services.CompareService
	LeadService          *services.LeadService
	SettingsService      *services.SettingsService
	DashboardService     *services.DashboardService
	AuthService          *services.AuthService

	// Repositories
	PropertyRepo *listingrepo.SQLPropertyRepository
	LeadRepo     *userrepo.SQLLeadRepository
	CompareRepo  *analyticsrepo.SQLCompareRepository

	// Infrastructure
	SiteContext     *site.Context
	CacheManager    *manager.Manager
	LiveBroadcaster *messaging.LiveBroadcaster
	Forwarder       *messaging.HTTPForwarder
	ImageProcessor  *media.ImageProcessor
	Logger          *logging.ChanneledLogger
	PerfTracker     *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(siteCtx *site.Context, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Container {
	cfg := siteCtx.Config
	db := siteCtx.Database

	// Repositories
	propertyRepo := listingrepo.NewSQLPropertyRepository(db, logger)
	eventRepo := eventrepo.NewSQLEventRepository(db, logger)
	leadRepo := userrepo.NewSQLLeadRepository(db, logger)
	adminRepo := userrepo.NewSQLAdminRepository(db, logger)
	settingsRepo := settingsrepo.NewSQLSettingsRepository(db, logger)
	compareRepo := analyticsrepo.NewSQLCompareRepository(db, logger)

	// Outbound infrastructure
	broadcaster := messaging.NewLiveBroadcaster(siteCtx.CacheManager, logger)
	forwarder := messaging.NewHTTPForwarder(config.AnalyticsForwardURL, logger)

	var emailService email.Service
	if cfg.ResendAPIKey != "" {
		svc, err := email.NewService(cfg.ResendAPIKey, cfg.EmailFrom)
		if err != nil {
			logger.Email().Warn("Email service unavailable", "error", err.Error())
		} else {
			emailService = svc
		}
	}

	notifyInbox := config.LeadNotifyInbox
	if notifyInbox == "" {
		notifyInbox = cfg.AdminEmail
	}

	// Services
	sessionService := services.NewSessionService(logger, perfTracker)
	attributionService := services.NewAttributionService(eventRepo, logger, perfTracker)

	// A nil forwarder must stay absent behind the interface, not become a
	// typed nil.
	var eventForwarder services.Forwarder
	if forwarder != nil {
		eventForwarder = forwarder
	}
	eventTrackingService := services.NewEventTrackingService(
		eventRepo, attributionService, broadcaster, eventForwarder,
		cfg.ExcludedRoutes, logger, perfTracker)

	pixelService := services.NewPixelService(settingsRepo, logger)
	listingService := services.NewListingService(propertyRepo, logger, perfTracker)
	feedService := services.NewFeedService(listingService, logger)
	compareService := services.NewCompareService(compareRepo, listingService, logger)
	leadService := services.NewLeadService(
		leadRepo, attributionService, listingService, emailService,
		notifyInbox, cfg.SiteURL, logger, perfTracker)
	settingsService := services.NewSettingsService(settingsRepo, logger)
	dashboardService := services.NewDashboardService(eventRepo, leadRepo, siteCtx.CacheManager, logger, perfTracker)
	authService := services.NewAuthService(adminRepo, cfg.JWTSecret, logger)

	return &Container{
		SessionService:       sessionService,
		AttributionService:   attributionService,
		EventTrackingService: eventTrackingService,
		PixelService:         pixelService,
		ListingService:       listingService,
		FeedService:          feedService,
		CompareService:       compareService,
		LeadService:          leadService,
		SettingsService:      settingsService,
		DashboardService:     dashboardService,
		AuthService:          authService,

		PropertyRepo: propertyRepo,
		LeadRepo:     leadRepo,
		CompareRepo:  compareRepo,

		SiteContext:     siteCtx,
		CacheManager:    siteCtx.CacheManager,
		LiveBroadcaster: broadcaster,
		Forwarder:       forwarder,
		ImageProcessor:  media.NewImageProcessor(cfg.MediaPath),
		Logger:          logger,
		PerfTracker:     perfTracker,
	}
}
