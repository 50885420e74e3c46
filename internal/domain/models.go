package domain

import (
	"time"
)

// Link represents a short code mapped to a destination URL with its metadata
type Link struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Destination string     `json:"destination_url"`
	CustomAlias bool       `json:"custom_alias"`
	OwnerID     *string    `json:"owner_id,omitempty"`
	Clicks      int64      `json:"clicks"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired reports whether the link's expiry timestamp has passed at the given time
func (l *Link) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(now)
}

// VisitEvent is one immutable record of a single resolved redirect
type VisitEvent struct {
	ID         string    `json:"id"`
	LinkID     int64     `json:"link_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Device     string    `json:"device"`
	Browser    string    `json:"browser"`
	OS         string    `json:"os"`
	Referrer   string    `json:"referrer"`
	Country    string    `json:"country"`
	City       string    `json:"city"`
	IPAddress  string    `json:"ip_address,omitempty"`
}

// LinkUpdate carries the mutable link fields; nil fields are left unchanged
type LinkUpdate struct {
	Active    *bool      `json:"active,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// VisitContext bundles the request metadata captured alongside a redirect
type VisitContext struct {
	UserAgent string
	Referrer  string
	IPAddress string
}

// CreateLinkRequest represents the request to create a short link
type CreateLinkRequest struct {
	DestinationURL string     `json:"destination_url"`
	CustomAlias    string     `json:"custom_alias,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
}

// LinkInfo is the external representation of a link, with the
// resolved short URL and without internal identifiers
type LinkInfo struct {
	Code        string     `json:"code"`
	ShortURL    string     `json:"short_url"`
	Destination string     `json:"destination_url"`
	CustomAlias bool       `json:"custom_alias"`
	Clicks      int64      `json:"clicks"`
	Active      bool       `json:"active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SeriesPoint is one UTC calendar day bucket in a clicks-over-time series
type SeriesPoint struct {
	Date   time.Time `json:"date"`
	Clicks int64     `json:"clicks"`
}

// CategoryCount is one bucket of a single-dimension categorical breakdown
type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// TopLink is one entry of the summary's best-performing links
type TopLink struct {
	Code        string `json:"code"`
	ShortURL    string `json:"short_url"`
	Destination string `json:"destination_url"`
	Clicks      int64  `json:"clicks"`
}

// AnalyticsSummary is the owner-scoped dashboard view computed over links and events
type AnalyticsSummary struct {
	TotalURLs    int             `json:"total_urls"`
	TotalClicks  int64           `json:"total_clicks"`
	TopURLs      []TopLink       `json:"top_urls"`
	RecentEvents []*VisitEvent   `json:"recent_events"`
	DeviceTally  []CategoryCount `json:"device_breakdown"`
}

// Time-series window names accepted by the analytics queries
const (
	WindowDay   = "day"
	WindowWeek  = "week"
	WindowMonth = "month"
	WindowYear  = "year"
)

// Breakdown dimension names
const (
	DimensionDevice  = "device"
	DimensionBrowser = "browser"
	DimensionOS      = "os"
)
