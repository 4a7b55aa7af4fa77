// Package analytics defines first-party event types and campaign attribution
// values captured per session.
package analytics

import (
	"net/url"
	"strings"
	"time"
)

// TrackedEvent is a first-party analytics event destined for the
// website_events table. Persistence is best-effort; a failed write is logged
// and swallowed, never surfaced to the visitor.
type TrackedEvent struct {
	EventName  string         `json:"event_name"`
	EventData  map[string]any `json:"event_data,omitempty"`
	SessionID  string         `json:"session_id"`
	PageURL    string         `json:"page_url"`
	PageTitle  string         `json:"page_title,omitempty"`
	Referrer   string         `json:"referrer,omitempty"`
	DeviceType string         `json:"device_type"`
	Language   string         `json:"language"`
	UTM        UTMParams      `json:"utm"`
	CreatedAt  time.Time      `json:"created_at"`
}

// UTMParams holds the campaign parameters captured once per session on their
// first appearance in a landing URL (first-touch attribution).
type UTMParams struct {
	Source   string `json:"utm_source,omitempty"`
	Medium   string `json:"utm_medium,omitempty"`
	Campaign string `json:"utm_campaign,omitempty"`
	Term     string `json:"utm_term,omitempty"`
	Content  string `json:"utm_content,omitempty"`
}

// IsZero reports whether no campaign parameter is set.
func (u UTMParams) IsZero() bool {
	return u == UTMParams{}
}

// ParseUTM extracts campaign parameters from a raw landing URL. Absent keys
// stay empty; a malformed URL yields zero params.
func ParseUTM(rawURL string) UTMParams {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return UTMParams{}
	}

	query := parsed.Query()
	return UTMParams{
		Source:   query.Get("utm_source"),
		Medium:   query.Get("utm_medium"),
		Campaign: query.Get("utm_campaign"),
		Term:     query.Get("utm_term"),
		Content:  query.Get("utm_content"),
	}
}

// ReferrerHost reduces a referrer URL to its hostname. The full URL may carry
// query or path PII and is never retained.
func ReferrerHost(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// DeviceTypeFromUserAgent buckets a user agent into desktop/mobile/tablet.
func DeviceTypeFromUserAgent(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return "tablet"
	case strings.Contains(ua, "mobi") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone"):
		return "mobile"
	default:
		return "desktop"
	}
}

// ScrollMilestones are the depth thresholds reported at most once per page
// visit.
var ScrollMilestones = []int{25, 50, 75, 100}

// CrossedMilestones returns the milestones reached at the given scroll depth.
func CrossedMilestones(percent int) []int {
	var crossed []int
	for _, m := range ScrollMilestones {
		if percent >= m {
			crossed = append(crossed, m)
		}
	}
	return crossed
}
