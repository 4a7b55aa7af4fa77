package services

import (
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/listings"
	persistence "github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/listings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/performance"
)

// PropertyStore is the catalog access needed by the listing service.
type PropertyStore interface {
	Search(filters listings.FilterSet) (*persistence.SearchResult, error)
	FindByID(id string) (*listings.Property, error)
	FindBySlug(slug string) (*listings.Property, error)
	ExistingIDs(ids []string) ([]string, error)
}

// ListingPage is one localized page of search results.
type ListingPage struct {
	Properties  []listings.LocalizedProperty `json:"properties"`
	HasNextPage bool                         `json:"hasNextPage"`
	Total       int                          `json:"total"`
	Page        int                          `json:"page"`
	Query       string                       `json:"query"`
}

// ListingService serves the localized property catalog.
type ListingService struct {
	properties  PropertyStore
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewListingService creates a new listing service
func NewListingService(properties PropertyStore, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ListingService {
	return &ListingService{
		properties:  properties,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Search runs a filtered catalog query and localizes the results.
func (s *ListingService) Search(filters listings.FilterSet, lang string) (*ListingPage, error) {
	marker := s.perfTracker.StartOperation("listing_search")
	defer marker.Complete()

	result, err := s.properties.Search(filters)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	localized := make([]listings.LocalizedProperty, 0, len(result.Properties))
	for _, prop := range result.Properties {
		localized = append(localized, prop.Localize(lang))
	}

	s.logger.Listings().Debug("Listing search served",
		"query", filters.QueryString(), "count", len(localized), "total", result.Total)
	marker.SetSuccess(true)

	return &ListingPage{
		Properties:  localized,
		HasNextPage: result.HasNextPage,
		Total:       result.Total,
		Page:        filters.Page,
		Query:       filters.QueryString(),
	}, nil
}

// GetBySlug resolves one localized property by its URL slug.
func (s *ListingService) GetBySlug(slug, lang string) (*listings.LocalizedProperty, error) {
	prop, err := s.properties.FindBySlug(slug)
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return nil, ErrPropertyNotFound
	}
	localized := prop.Localize(lang)
	return &localized, nil
}

// GetByIDs resolves several localized properties, skipping missing ids.
func (s *ListingService) GetByIDs(ids []string, lang string) ([]listings.LocalizedProperty, error) {
	var out []listings.LocalizedProperty
	for _, id := range ids {
		prop, err := s.properties.FindByID(id)
		if err != nil {
			return nil, err
		}
		if prop != nil {
			out = append(out, prop.Localize(lang))
		}
	}
	return out, nil
}
