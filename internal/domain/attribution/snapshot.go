package attribution

import (
	"github.com/AldiyarDigital/aldiyar-go/internal/domain/analytics"
)

// Snapshot is the lead-attribution record assembled at submission time. The
// session fields are always present; campaign, referrer, and event-history
// fields are populated only when analytics consent is currently granted,
// gated as a whole group, never partially.
type Snapshot struct {
	SessionID            string `json:"session_id"`
	LandingPage          string `json:"landing_page"`
	LastPageBeforeSubmit string `json:"last_page_before_submit"`
	DeviceType           string `json:"device_type"`
	BrowserLanguage      string `json:"browser_language"`

	UTMSource         string         `json:"utm_source,omitempty"`
	UTMMedium         string         `json:"utm_medium,omitempty"`
	UTMCampaign       string         `json:"utm_campaign,omitempty"`
	UTMTerm           string         `json:"utm_term,omitempty"`
	UTMContent        string         `json:"utm_content,omitempty"`
	ReferrerDomain    string         `json:"referrer_domain,omitempty"`
	LastEventsSummary []EventSummary `json:"last_events_summary,omitempty"`
}

// SnapshotInput carries everything Assemble needs from the session.
type SnapshotInput struct {
	SessionID        string
	LandingPage      string
	CurrentPage      string
	DeviceType       string
	BrowserLanguage  string
	UTM              analytics.UTMParams
	ReferrerDomain   string
	Buffer           *Buffer
	AnalyticsConsent bool
	SummaryMax       int
}

// Assemble builds the snapshot, withholding every consent-gated field when
// analytics consent is absent.
func Assemble(in SnapshotInput) Snapshot {
	snapshot := Snapshot{
		SessionID:            in.SessionID,
		LandingPage:          in.LandingPage,
		LastPageBeforeSubmit: in.CurrentPage,
		DeviceType:           in.DeviceType,
		BrowserLanguage:      in.BrowserLanguage,
	}

	if !in.AnalyticsConsent {
		return snapshot
	}

	snapshot.UTMSource = in.UTM.Source
	snapshot.UTMMedium = in.UTM.Medium
	snapshot.UTMCampaign = in.UTM.Campaign
	snapshot.UTMTerm = in.UTM.Term
	snapshot.UTMContent = in.UTM.Content
	snapshot.ReferrerDomain = in.ReferrerDomain
	if in.Buffer != nil {
		snapshot.LastEventsSummary = in.Buffer.Summary(in.SummaryMax)
	}

	return snapshot
}
