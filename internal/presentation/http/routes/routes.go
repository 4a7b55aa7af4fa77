// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/AldiyarDigital/aldiyar-go/internal/application/container"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/handlers"
	"github.com/AldiyarDigital/aldiyar-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(c *container.Container) *gin.Engine {
	r := gin.Default()

	cfg := c.SiteContext.Config
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	// Processed property photos are served straight off disk.
	r.Static("/media", cfg.MediaPath)

	// Initialize handlers
	visitHandlers := handlers.NewVisitHandlers(c.SessionService, c.PixelService, c.SiteContext, c.Logger, c.PerfTracker)
	eventHandlers := handlers.NewEventHandlers(c.EventTrackingService, c.AttributionService, c.Logger, c.PerfTracker)
	pixelHandlers := handlers.NewPixelHandlers(c.PixelService, c.Logger)
	listingHandlers := handlers.NewListingHandlers(c.ListingService, cfg.DefaultLang, c.Logger, c.PerfTracker)
	feedHandlers := handlers.NewFeedHandlers(c.FeedService, cfg.DefaultLang, c.Logger, c.PerfTracker)
	compareHandlers := handlers.NewCompareHandlers(c.CompareService, cfg.DefaultLang, c.Logger)
	leadHandlers := handlers.NewLeadHandlers(c.LeadService, c.Logger, c.PerfTracker)
	adminHandlers := handlers.NewAdminHandlers(
		c.AuthService, c.SettingsService, c.DashboardService, c.LeadService,
		c.PropertyRepo, c.ImageProcessor, c.Logger, c.PerfTracker)
	liveHandlers := handlers.NewLiveHandlers(c.LiveBroadcaster, c.AuthService, c.Logger)

	api := r.Group("/api/v1")
	{
		// Visit registration sits outside the session middleware so new
		// visitors can mint an id.
		api.POST("/session/visit", visitHandlers.PostVisit)

		// Public catalog reads need no session either.
		api.GET("/listings", listingHandlers.GetListings)
		api.GET("/listings/slug/:slug", listingHandlers.GetListingBySlug)

		// Everything below requires a resolvable session.
		session := api.Group("/")
		session.Use(middleware.SessionMiddleware(c.SiteContext))
		{
			session.GET("/session", visitHandlers.GetSession)
			session.POST("/session/consent", visitHandlers.PostConsent)

			session.POST("/events", eventHandlers.PostEvent)
			session.GET("/events/last-viewed", eventHandlers.GetLastViewed)

			session.GET("/pixels", pixelHandlers.GetPixels)
			session.POST("/pixels/status", pixelHandlers.PostPixelStatus)

			session.GET("/feed", feedHandlers.GetFeed)
			session.POST("/feed/load-more", feedHandlers.PostFeedLoadMore)
			session.POST("/feed/retry", feedHandlers.PostFeedRetry)

			session.GET("/compare", compareHandlers.GetCompare)
			session.POST("/compare", compareHandlers.PostCompare)
			session.POST("/compare/replace", compareHandlers.PostCompareReplace)
			session.DELETE("/compare/:id", compareHandlers.DeleteCompareItem)
			session.DELETE("/compare", compareHandlers.DeleteCompare)

			session.POST("/leads", leadHandlers.PostLead)
		}
	}

	admin := r.Group("/api/admin")
	{
		admin.POST("/login", adminHandlers.PostLogin)

		// The websocket handshake carries the token as a query parameter and
		// validates it itself.
		admin.GET("/live", liveHandlers.GetLive)

		protected := admin.Group("/")
		protected.Use(middleware.AdminAuthMiddleware(c.AuthService))
		{
			protected.GET("/settings", adminHandlers.GetSettings)
			protected.PUT("/settings", adminHandlers.PutSetting)
			protected.GET("/analytics/dashboard", adminHandlers.GetDashboard)
			protected.GET("/leads", adminHandlers.GetLeads)
			protected.POST("/properties", adminHandlers.PostProperty)
			protected.PUT("/properties/:id", adminHandlers.PutProperty)
			protected.POST("/properties/:id/photos", adminHandlers.PostPropertyPhoto)
		}
	}

	return r
}
