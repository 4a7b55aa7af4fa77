package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/user"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/email"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/email/templates"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/security"
)

// LeadStore persists submitted enquiries.
type LeadStore interface {
	Store(lead *user.Lead) error
	FindRecent(limit, offset int) ([]*user.Lead, error)
}

// LeadRequest is one incoming enquiry form submission.
type LeadRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Message    string `json:"message,omitempty"`
	PropertyID string `json:"propertyId,omitempty"`
}

// LeadService handles enquiry submission: validation, attribution snapshot,
// storage, and the notification email to the sales inbox.
type LeadService struct {
	leadStore   LeadStore
	attribution *AttributionService
	listings    *ListingService
	emailSvc    email.Service
	notifyInbox string
	siteURL     string
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewLeadService creates a new lead service
func NewLeadService(
	leadStore LeadStore,
	attributionService *AttributionService,
	listingService *ListingService,
	emailService email.Service,
	notifyInbox string,
	siteURL string,
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
) *LeadService {
	return &LeadService{
		leadStore:   leadStore,
		attribution: attributionService,
		listings:    listingService,
		emailSvc:    emailService,
		notifyInbox: notifyInbox,
		siteURL:     siteURL,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Submit validates and stores an enquiry, snapshotting the session's
// attribution state at submission time. The notification email is
// best-effort and never blocks or fails the submission.
func (s *LeadService) Submit(session *types.SessionState, req *LeadRequest) (*user.Lead, error) {
	marker := s.perfTracker.StartOperation("submit_lead")
	defer marker.Complete()

	name := strings.TrimSpace(req.Name)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || phone == "" {
		marker.SetSuccess(true)
		return nil, fmt.Errorf("%w: name and phone are required", ErrInvalidInput)
	}

	snapshot, encoded := s.attribution.LeadAttribution(session)

	lead := &user.Lead{
		ID:          security.GenerateULID(),
		Name:        name,
		Phone:       phone,
		Email:       strings.TrimSpace(req.Email),
		Message:     strings.TrimSpace(req.Message),
		PropertyID:  req.PropertyID,
		Attribution: encoded,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.leadStore.Store(lead); err != nil {
		s.logger.Leads().Error("Lead store failed", "error", err.Error(), "leadId", lead.ID)
		marker.SetError(err)
		return nil, err
	}

	s.logger.Leads().Info("Lead submitted",
		"leadId", lead.ID, "propertyId", lead.PropertyID,
		"source", snapshot.UTMSource, "medium", snapshot.UTMMedium)
	marker.SetSuccess(true)

	if s.emailSvc != nil && s.notifyInbox != "" {
		go s.notify(lead, snapshot.UTMSource, snapshot.UTMMedium, snapshot.UTMCampaign, snapshot.LandingPage)
	}

	return lead, nil
}

// Recent returns leads for the back office, newest first.
func (s *LeadService) Recent(limit, offset int) ([]*user.Lead, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	if offset < 0 {
		offset = 0
	}
	return s.leadStore.FindRecent(limit, offset)
}

func (s *LeadService) notify(lead *user.Lead, source, medium, campaign, landingPage string) {
	props := templates.LeadNotificationProps{
		Name:        lead.Name,
		Phone:       lead.Phone,
		Email:       lead.Email,
		Message:     lead.Message,
		Source:      source,
		Medium:      medium,
		Campaign:    campaign,
		LandingPage: landingPage,
	}

	if lead.PropertyID != "" {
		prop, err := s.listings.properties.FindByID(lead.PropertyID)
		if err == nil && prop != nil {
			props.PropertyName = prop.TitleEN
			props.PropertyURL = s.siteURL + "/properties/" + prop.Slug
		}
	}

	if err := s.emailSvc.SendLeadNotification(s.notifyInbox, props); err != nil {
		s.logger.Email().Error("Lead notification email failed",
			"error", err.Error(), "leadId", lead.ID)
		return
	}
	s.logger.Email().Info("Lead notification email sent", "leadId", lead.ID)
}
