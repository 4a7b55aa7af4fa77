package services

import (
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/manager"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	persistence "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/analytics"
)

// AnalyticsReader is the aggregate query surface for the admin dashboard.
type AnalyticsReader interface {
	CountEventsSince(since time.Time) (int, error)
	TopEventsSince(since time.Time, limit int) ([]persistence.EventCount, error)
	TopSourcesSince(since time.Time, limit int) ([]persistence.SourceCount, error)
	CountSessionsSince(since time.Time) (int, error)
}

// LeadCounter counts stored enquiries for the dashboard.
type LeadCounter interface {
	CountSince(since time.Time) (int, error)
}

// DashboardOverview is the admin analytics summary for one lookback window.
type DashboardOverview struct {
	WindowDays     int                       `json:"windowDays"`
	TotalEvents    int                       `json:"totalEvents"`
	UniqueSessions int                       `json:"uniqueSessions"`
	TotalLeads     int                       `json:"totalLeads"`
	ActiveSessions int                       `json:"activeSessions"`
	TopEvents      []persistence.EventCount  `json:"topEvents"`
	TopSources     []persistence.SourceCount `json:"topSources"`
}

// DashboardService assembles the admin analytics overview from the event
// store and the live session cache.
type DashboardService struct {
	events      AnalyticsReader
	leads       LeadCounter
	cache       *manager.Manager
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	events AnalyticsReader,
	leads LeadCounter,
	cacheManager *manager.Manager,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *DashboardService {
	return &DashboardService{
		events:      events,
		leads:       leads,
		cache:       cacheManager,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Overview computes the dashboard summary for the given lookback window.
func (s *DashboardService) Overview(windowDays int) (*DashboardOverview, error) {
	marker := s.perfTracker.StartOperation("dashboard_overview")
	defer marker.Complete()

	if windowDays <= 0 || windowDays > 365 {
		windowDays = 7
	}
	since := time.Now().UTC().AddDate(0, 0, -windowDays)

	totalEvents, err := s.events.CountEventsSince(since)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	uniqueSessions, err := s.events.CountSessionsSince(since)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	topEvents, err := s.events.TopEventsSince(since, 10)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	topSources, err := s.events.TopSourcesSince(since, 10)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	totalLeads, err := s.leads.CountSince(since)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	s.logger.Analytics().Debug("Dashboard overview assembled",
		"windowDays", windowDays, "totalEvents", totalEvents, "uniqueSessions", uniqueSessions)
	marker.SetSuccess(true)

	return &DashboardOverview{
		WindowDays:     windowDays,
		TotalEvents:    totalEvents,
		UniqueSessions: uniqueSessions,
		TotalLeads:     totalLeads,
		ActiveSessions: s.cache.SessionCount(),
		TopEvents:      topEvents,
		TopSources:     topSources,
	}, nil
}
