package services

import (
	"sort"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/caching/types"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/observability/logging"
	"github.com/AldiyarDigital/aldiyar-go/internal/infrastructure/persistence/settings"
)

// SettingsStore reads the admin-managed pixel configuration.
type SettingsStore interface {
	GetAll() (map[string]settings.TrackingSetting, error)
}

// PixelInstruction tells the page what to do for one vendor script.
type PixelInstruction struct {
	Vendor    string `json:"vendor"`
	Action    string `json:"action"` // "inject" or "none"
	ElementID string `json:"elementId"`
	PixelID   string `json:"pixelId,omitempty"`
	Status    string `json:"status"`
}

// PixelService drives the vendor pixel load state machine. A pixel is
// injected only when analytics consent is granted AND the vendor is enabled
// AND its id is non-empty; once loaded it is never unloaded for the session,
// even if consent is later withdrawn.
type PixelService struct {
	settingsStore SettingsStore
	logger        *logging.ChanneledLogger
}

// NewPixelService creates a new pixel service
func NewPixelService(settingsStore SettingsStore, logger *logging.ChanneledLogger) *PixelService {
	return &PixelService{
		settingsStore: settingsStore,
		logger:        logger,
	}
}

// Evaluate computes the render instructions for a session. ElementIDs are
// stable per vendor so repeated evaluations stay idempotent on the page.
func (s *PixelService) Evaluate(session *types.SessionState) ([]PixelInstruction, error) {
	vendorSettings, err := s.settingsStore.GetAll()
	if err != nil {
		return nil, err
	}

	session.Mu.Lock()
	defer session.Mu.Unlock()

	analyticsAllowed := session.Consent.AnalyticsAllowed()

	var instructions []PixelInstruction
	for key, setting := range vendorSettings {
		state := session.Pixels[key]
		if state == nil {
			state = &types.PixelState{
				Vendor:    key,
				Status:    types.PixelNotLoaded,
				ElementID: "px-" + key,
			}
			session.Pixels[key] = state
		}

		instruction := PixelInstruction{
			Vendor:    key,
			Action:    "none",
			ElementID: state.ElementID,
			Status:    state.Status,
		}

		// Already-loaded pixels stay loaded; failed ones stay failed until
		// the next page load resets the session's view of them.
		if state.Status == types.PixelNotLoaded && analyticsAllowed && setting.Enabled && setting.Value != "" {
			state.Status = types.PixelLoading
			instruction.Action = "inject"
			instruction.PixelID = setting.Value
			instruction.Status = state.Status
		}

		instructions = append(instructions, instruction)
	}

	sort.Slice(instructions, func(i, j int) bool { return instructions[i].Vendor < instructions[j].Vendor })
	return instructions, nil
}

// MarkLoaded records the page's report of a pixel load attempt. Transitions
// only move forward: a loaded pixel never returns to not_loaded.
func (s *PixelService) MarkLoaded(session *types.SessionState, vendor string, ok bool) {
	session.Mu.Lock()
	defer session.Mu.Unlock()

	state := session.Pixels[vendor]
	if state == nil || state.Status == types.PixelLoaded {
		return
	}

	if ok {
		state.Status = types.PixelLoaded
		state.LoadedAt = time.Now().UTC()
	} else {
		state.Status = types.PixelFailed
	}

	s.logger.Analytics().Debug("Pixel state updated", "vendor", vendor, "status", state.Status)
}

// States returns a copy of the session's pixel states for diagnostics.
func (s *PixelService) States(session *types.SessionState) []types.PixelState {
	session.Mu.Lock()
	defer session.Mu.Unlock()

	states := make([]types.PixelState, 0, len(session.Pixels))
	for _, state := range session.Pixels {
		states = append(states, *state)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Vendor < states[j].Vendor })
	return states
}
