package reviewpress

import "time"

// SiteConfig holds all configuration for a reviewpress site.
type SiteConfig struct {
	Name        string // Site name (default "Review Site")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for meta tags and RSS
	Author      string // Default author name for JSON-LD

	Addr       string // Listen address (default ":3000")
	ContentDir string // Directory holding blogs/ and reviews/ (default "content")

	UploadDir    string // Processed image directory (default "public/uploads/images")
	ImageMetaDir string // Image metadata sidecar directory (default "data/images")

	AdminPassword string // Required: admin login password
	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	CacheTTL time.Duration // Content cache TTL (default 1h)

	HomeLatestCount int // Latest posts/reviews shown on the homepage (default 5)

	MaxImageWidth int // Images wider than this are downscaled (default 800)
	ThumbnailSize int // Thumbnail bounding box in pixels (default 300)

	IndexNowKey string // IndexNow API key; empty disables search engine pings

	AnalyticsEnabled      bool   // Enable page-view analytics
	AnalyticsDatabasePath string // Analytics SQLite path (default "data/analytics.db")

	CrawlDelay int // robots.txt Crawl-delay in seconds (default 1)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Review Site"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content"
	}
	if c.UploadDir == "" {
		c.UploadDir = "public/uploads/images"
	}
	if c.ImageMetaDir == "" {
		c.ImageMetaDir = "data/images"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = time.Hour
	}
	if c.HomeLatestCount == 0 {
		c.HomeLatestCount = 5
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 800
	}
	if c.ThumbnailSize == 0 {
		c.ThumbnailSize = 300
	}
	if c.AnalyticsDatabasePath == "" {
		c.AnalyticsDatabasePath = "data/analytics.db"
	}
	if c.CrawlDelay == 0 {
		c.CrawlDelay = 1
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}
