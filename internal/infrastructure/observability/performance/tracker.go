package performance

import (
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers map[string]*Marker // Active and completed markers by unique ID
	order   []string           // Insertion order for bounded retention
	mu      sync.RWMutex       // Protects concurrent access
	started time.Time          // When tracking started
	config  *TrackerConfig     // Tracker configuration
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers int `json:"maxMarkers"` // Maximum number of markers to retain
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers: 10000,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}

	return &Tracker{
		markers: make(map[string]*Marker),
		started: time.Now(),
		config:  config,
	}
}

// StartOperation begins tracking a new operation and returns its marker
func (t *Tracker) StartOperation(operation string) *Marker {
	marker := &Marker{
		Operation: operation,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	id := operation + "_" + marker.StartTime.Format("20060102T150405.000000000")
	t.markers[id] = marker
	t.order = append(t.order, id)

	// Evict oldest when over capacity
	for len(t.order) > t.config.MaxMarkers {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.markers, oldest)
	}

	return marker
}

// Summary aggregates completed markers per operation
type Summary struct {
	Operation     string        `json:"operation"`
	Count         int           `json:"count"`
	Failures      int           `json:"failures"`
	TotalDuration time.Duration `json:"totalDuration"`
	MaxDuration   time.Duration `json:"maxDuration"`
}

// Summarize returns per-operation aggregates for completed markers
func (t *Tracker) Summarize() map[string]*Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summaries := make(map[string]*Summary)
	for _, marker := range t.markers {
		if !marker.Completed {
			continue
		}

		s, ok := summaries[marker.Operation]
		if !ok {
			s = &Summary{Operation: marker.Operation}
			summaries[marker.Operation] = s
		}

		s.Count++
		if !marker.Success {
			s.Failures++
		}
		s.TotalDuration += marker.Duration
		if marker.Duration > s.MaxDuration {
			s.MaxDuration = marker.Duration
		}
	}

	return summaries
}

// Uptime returns how long the tracker has been running
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
