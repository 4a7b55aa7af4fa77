// Package consent defines the visitor consent record and its merge semantics.
package consent

import (
	"encoding/json"
	"time"
)

// State is the persisted consent record for a session. A missing record is
// treated as no consent for third parties; first-party technical logging
// still proceeds.
type State struct {
	Analytics  bool  `json:"analytics"`
	Marketing  bool  `json:"marketing"`
	Functional bool  `json:"functional"`
	Timestamp  int64 `json:"timestamp"`
}

// Choice is a partial consent update from the banner. Nil fields keep the
// current value.
type Choice struct {
	Analytics *bool `json:"analytics,omitempty"`
	Marketing *bool `json:"marketing,omitempty"`
}

// AnalyticsAllowed reports whether third-party analytics mirroring is
// permitted. A nil state fails closed.
func (s *State) AnalyticsAllowed() bool {
	return s != nil && s.Analytics
}

// MarketingAllowed reports whether the visitor granted marketing consent.
func (s *State) MarketingAllowed() bool {
	return s != nil && s.Marketing
}

// Merge applies a banner choice on top of the current state and returns the
// result. Functional consent is always implied, and the record is
// re-stamped on every choice.
func (s *State) Merge(choice Choice, now time.Time) *State {
	next := &State{Functional: true, Timestamp: now.UnixMilli()}
	if s != nil {
		next.Analytics = s.Analytics
		next.Marketing = s.Marketing
	}
	if choice.Analytics != nil {
		next.Analytics = *choice.Analytics
	}
	if choice.Marketing != nil {
		next.Marketing = *choice.Marketing
	}
	return next
}

// Parse decodes a stored consent record. The legacy simple form is a bare
// boolean string: "true" grants both analytics and marketing. Anything
// unparseable is treated as no stored record.
func Parse(raw string) *State {
	if raw == "" {
		return nil
	}

	var state State
	if err := json.Unmarshal([]byte(raw), &state); err == nil && raw[0] == '{' {
		state.Functional = true
		return &state
	}

	switch raw {
	case "true", `"true"`:
		return &State{Analytics: true, Marketing: true, Functional: true}
	case "false", `"false"`:
		return &State{Functional: true}
	}

	return nil
}
