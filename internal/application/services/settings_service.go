package services

import (
	"fmt"
	"sort"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/settings"
)

// knownVendorKeys is the fixed set of vendor settings the admin panel manages.
var knownVendorKeys = map[string]bool{
	"meta_pixel_id":       true,
	"tiktok_pixel_id":     true,
	"snap_pixel_id":       true,
	"google_analytics_id": true,
}

// SettingsWriter extends the read-side settings store with updates.
type SettingsWriter interface {
	SettingsStore
	Upsert(setting settings.TrackingSetting) error
}

// SettingsService exposes the tracking pixel configuration to the admin panel.
type SettingsService struct {
	store  SettingsWriter
	logger *logging.ChanneledLogger
}

// NewSettingsService creates a new settings service
func NewSettingsService(store SettingsWriter, logger *logging.ChanneledLogger) *SettingsService {
	return &SettingsService{
		store:  store,
		logger: logger,
	}
}

// List returns every tracking setting sorted by key.
func (s *SettingsService) List() ([]settings.TrackingSetting, error) {
	all, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}

	out := make([]settings.TrackingSetting, 0, len(all))
	for _, setting := range all {
		out = append(out, setting)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Update writes one vendor setting. Unknown keys are rejected so the table
// stays confined to the vendors the tracker understands.
func (s *SettingsService) Update(setting settings.TrackingSetting) error {
	if !knownVendorKeys[setting.Key] {
		return fmt.Errorf("%w: unknown tracking setting %q", ErrInvalidInput, setting.Key)
	}

	if err := s.store.Upsert(setting); err != nil {
		return err
	}

	s.logger.Analytics().Info("Tracking setting updated",
		"key", setting.Key, "enabled", setting.Enabled)
	return nil
}
