// Package analytics provides privacy-first page view analytics backed by
// SQLite. IP addresses are never stored; visitors are identified by a
// salted hash that cannot be reversed to an address.
package analytics

import (
	"regexp"
	"strings"
	"time"
)

// Visit represents a single page view.
type Visit struct {
	ID        int64     `json:"-"`
	VisitorID string    `json:"visitor_id"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
	Path      string    `json:"path"`
	Referrer  string    `json:"referrer"`
	Timestamp time.Time `json:"timestamp"`
}

// VisitRequest is the payload sent by the tracking script.
type VisitRequest struct {
	Path     string `json:"path"`
	Referrer string `json:"referrer"`
}

// Stats holds aggregated analytics for a period.
type Stats struct {
	Days           int             `json:"days"`
	TotalViews     int             `json:"total_views"`
	UniqueVisitors int             `json:"unique_visitors"`
	TopPages       []PageStat      `json:"top_pages"`
	Browsers       []DimensionStat `json:"browsers"`
	Referrers      []DimensionStat `json:"referrers"`
	DailyViews     []DailyView     `json:"daily_views"`
}

// PageStat counts views of one path.
type PageStat struct {
	Path  string `json:"path"`
	Views int    `json:"views"`
}

// DimensionStat is a breakdown bucket (browser, referrer).
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DailyView counts views on one calendar day.
type DailyView struct {
	Date  string `json:"date"`
	Views int    `json:"views"`
}

// ParseUserAgent extracts browser, OS, and device class from a User-Agent.
func ParseUserAgent(ua string) (browser, os, device string) {
	ua = strings.ToLower(ua)

	switch {
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Other"
	}

	// Android UAs contain "linux", so check it first.
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "macintosh") || strings.Contains(ua, "mac os"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	default:
		os = "Other"
	}

	switch {
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		device = "Tablet"
	case strings.Contains(ua, "mobile"):
		device = "Mobile"
	default:
		device = "Desktop"
	}

	return
}

// IsBot checks if the User-Agent is likely a crawler.
func IsBot(ua string) bool {
	ua = strings.ToLower(ua)
	for _, marker := range []string{"bot", "crawler", "spider", "crawl", "slurp", "scrape"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

var referrerDomainRegex = regexp.MustCompile(`^https?://(?:www\.)?([^/]+)`)

// CleanReferrer reduces a referrer URL to a reportable name.
func CleanReferrer(ref string) string {
	if ref == "" {
		return "Direct"
	}
	refLower := strings.ToLower(ref)
	switch {
	case strings.Contains(refLower, "google."):
		return "Google"
	case strings.Contains(refLower, "bing."):
		return "Bing"
	case strings.Contains(refLower, "duckduckgo."):
		return "DuckDuckGo"
	}
	if m := referrerDomainRegex.FindStringSubmatch(ref); len(m) > 1 {
		return m[1]
	}
	return "Other"
}
