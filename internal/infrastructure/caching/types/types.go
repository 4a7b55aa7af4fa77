// Package types defines the in-memory state kept per visitor session. The
// browser holds nothing but an opaque session id; everything a page needs to
// render consistently lives here.
package types

import (
	"sync"
	"time"

	"github.com/AldiyarDigital/aldiyar-go/internal/domain/analytics"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/attribution"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/compare"
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/consent"
)

// Pixel load lifecycle. A pixel never moves backwards: once Loaded it stays
// Loaded for the life of the session even if consent is later withdrawn.
const (
	PixelNotLoaded = "not_loaded"
	PixelLoading   = "loading"
	PixelLoaded    = "loaded"
	PixelFailed    = "failed"
)

// PixelState tracks one vendor script for a session. ElementID is stable per
// vendor so repeated render instructions stay idempotent.
type PixelState struct {
	Vendor    string    `json:"vendor"`
	Status    string    `json:"status"`
	ElementID string    `json:"elementId"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
}

// SessionState is the full server-side state for one visitor session.
// Mu guards every field; stores hand out the pointer and callers lock.
type SessionState struct {
	Mu sync.Mutex `json:"-"`

	SessionID    string    `json:"sessionId"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
	ExpiresAt    time.Time `json:"expiresAt"`

	LandingPage  string `json:"landingPage"`
	CurrentPage  string `json:"currentPage"`
	ReferrerHost string `json:"referrerHost,omitempty"`
	DeviceType   string `json:"deviceType"`
	Language     string `json:"language"`

	// Consent is nil until the visitor decides; nil fails closed.
	Consent *consent.State `json:"consent,omitempty"`

	// UTM params are first-touch: captured once, never overwritten.
	UTM         analytics.UTMParams `json:"utm"`
	UTMCaptured bool                `json:"utmCaptured"`

	// Events is the bounded attribution history.
	Events *attribution.Buffer `json:"-"`

	// ScrollMilestones records which depth thresholds already fired,
	// keyed by page path then milestone percent.
	ScrollMilestones map[string]map[int]bool `json:"-"`

	// Pixels tracks vendor script state keyed by vendor name.
	Pixels map[string]*PixelState `json:"-"`

	// Compare is the bounded comparison selection.
	Compare *compare.Selection `json:"-"`
}

// Touch extends the session lifetime after activity.
func (s *SessionState) Touch(ttl time.Duration) {
	now := time.Now().UTC()
	s.LastActivity = now
	s.ExpiresAt = now.Add(ttl)
}

// Expired reports whether the session has passed its expiry.
func (s *SessionState) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}
