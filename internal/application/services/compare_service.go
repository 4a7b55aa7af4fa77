package services

import (
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/compare"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/listings"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
)

// SelectionStore persists compare selections across cache evictions.
type SelectionStore interface {
	Save(sessionID string, propertyIDs []string) error
	Load(sessionID string) ([]string, error)
}

// CompareResult is the outcome of a compare mutation plus the new selection.
type CompareResult struct {
	Outcome    compare.Outcome              `json:"outcome,omitempty"`
	IDs        []string                     `json:"ids"`
	Properties []listings.LocalizedProperty `json:"properties,omitempty"`
	IsFull     bool                         `json:"isFull"`
}

// CompareService manages the bounded per-session comparison selection.
// Unlike event tracking, writes here are synchronous: losing a comparison on
// eviction would be visible to the visitor.
type CompareService struct {
	store    SelectionStore
	listings *ListingService
	logger   *logging.ChanneledLogger
}

// NewCompareService creates a new compare service
func NewCompareService(store SelectionStore, listingService *ListingService, logger *logging.ChanneledLogger) *CompareService {
	return &CompareService{
		store:    store,
		listings: listingService,
		logger:   logger,
	}
}

// Add attempts to add a property to the selection. On a full selection the
// explicit limit_reached outcome is returned so the page can offer a
// replace-oldest prompt.
func (s *CompareService) Add(session *types.SessionState, propertyID string) (*CompareResult, error) {
	session.Mu.Lock()
	outcome := session.Compare.Add(propertyID)
	ids := session.Compare.IDs()
	full := session.Compare.IsFull()
	sessionID := session.SessionID
	session.Mu.Unlock()

	if outcome == compare.OutcomeAdded {
		if err := s.store.Save(sessionID, ids); err != nil {
			return nil, err
		}
	}

	return &CompareResult{Outcome: outcome, IDs: ids, IsFull: full}, nil
}

// ReplaceOldest swaps the oldest selected property for a new one.
func (s *CompareService) ReplaceOldest(session *types.SessionState, propertyID string) (*CompareResult, error) {
	session.Mu.Lock()
	session.Compare.ReplaceOldest(propertyID)
	ids := session.Compare.IDs()
	full := session.Compare.IsFull()
	sessionID := session.SessionID
	session.Mu.Unlock()

	if err := s.store.Save(sessionID, ids); err != nil {
		return nil, err
	}

	return &CompareResult{Outcome: compare.OutcomeAdded, IDs: ids, IsFull: full}, nil
}

// Remove drops a property from the selection.
func (s *CompareService) Remove(session *types.SessionState, propertyID string) (*CompareResult, error) {
	session.Mu.Lock()
	session.Compare.Remove(propertyID)
	ids := session.Compare.IDs()
	sessionID := session.SessionID
	session.Mu.Unlock()

	if err := s.store.Save(sessionID, ids); err != nil {
		return nil, err
	}

	return &CompareResult{IDs: ids}, nil
}

// Clear empties the selection.
func (s *CompareService) Clear(session *types.SessionState) (*CompareResult, error) {
	session.Mu.Lock()
	session.Compare.Clear()
	sessionID := session.SessionID
	session.Mu.Unlock()

	if err := s.store.Save(sessionID, nil); err != nil {
		return nil, err
	}

	return &CompareResult{IDs: []string{}}, nil
}

// Get returns the selection with localized property details. Ids whose
// properties have left the catalog are pruned first.
func (s *CompareService) Get(session *types.SessionState, lang string) (*CompareResult, error) {
	session.Mu.Lock()
	ids := session.Compare.IDs()
	sessionID := session.SessionID
	session.Mu.Unlock()

	// Restore a persisted selection after a cache eviction.
	if len(ids) == 0 {
		persisted, err := s.store.Load(sessionID)
		if err != nil {
			s.logger.Listings().Error("Failed to restore compare selection", "error", err.Error())
		} else if len(persisted) > 0 {
			session.Mu.Lock()
			session.Compare = compare.NewSelection(persisted)
			ids = session.Compare.IDs()
			session.Mu.Unlock()
		}
	}

	valid, err := s.listings.properties.ExistingIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(valid) != len(ids) {
		session.Mu.Lock()
		session.Compare = compare.NewSelection(valid)
		ids = session.Compare.IDs()
		session.Mu.Unlock()
		if err := s.store.Save(sessionID, ids); err != nil {
			s.logger.Listings().Error("Failed to persist pruned compare selection", "error", err.Error())
		}
	}

	properties, err := s.listings.GetByIDs(ids, lang)
	if err != nil {
		return nil, err
	}

	session.Mu.Lock()
	full := session.Compare.IsFull()
	session.Mu.Unlock()

	return &CompareResult{IDs: ids, Properties: properties, IsFull: full}, nil
}
