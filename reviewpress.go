// Package reviewpress is a file-backed content engine for product review
// sites, built with Go, Echo, and templ. Blog posts and reviews live as one
// YAML file per record on disk; an in-memory cache with per-entry TTL sits
// in front of the file store. Admin CRUD, image uploads, sitemaps, RSS,
// IndexNow pings, and ZIP export/import come out of the box.
//
// Users provide their own templ templates via the ViewFuncs struct, and
// reviewpress handles the handler logic, middleware, and storage.
package reviewpress

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/reviewpress/analytics"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. This is the inversion-of-control mechanism that
// lets users own and customize all templates.
type ViewFuncs struct {
	Home         func(featured []Review, latestPosts []BlogPost, latestReviews []Review, siteURL string) templ.Component
	BlogList     func(posts []BlogPost, activeTag string, tags []string, siteURL string) templ.Component
	BlogDetail   func(post BlogPost, related []BlogPost, siteURL string) templ.Component
	ReviewList   func(reviews []Review, activeTag string, tags []string, siteURL string) templ.Component
	ReviewDetail func(review Review, related []Review, siteURL string) templ.Component
	Search       func(query string, results SearchResults, siteURL string) templ.Component

	AdminLogin      func(showError bool, csrfToken string) templ.Component
	AdminDashboard  func(posts []BlogPost, reviews []Review, message string, csrfToken string) templ.Component
	AdminBlogForm   func(post BlogPost, csrfToken string) templ.Component
	AdminReviewForm func(review Review, csrfToken string) templ.Component
	AdminImages     func(images []Image, csrfToken string) templ.Component

	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App is the central reviewpress application. It wires together the store,
// cache, content service, handlers, middleware, and user-provided templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Cache   *Cache
	Content *ContentService
	Images  *ImageStore
	Views   ViewFuncs

	loginLimiter   *LoginLimiter
	indexNow       *IndexNowClient
	analyticsStore *analytics.Store
	customRoutes   []func(*App)
	staticDir      string
}

// New creates a reviewpress App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Start initializes storage, cache, middleware, and routes, then starts the
// server. It blocks until the server stops.
func (a *App) Start() error {
	if a.Config.AdminPassword == "" {
		return fmt.Errorf("reviewpress: AdminPassword is required")
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("reviewpress: SessionSecret is required")
	}

	store, err := NewStore(a.Config.ContentDir)
	if err != nil {
		return fmt.Errorf("reviewpress: init store: %w", err)
	}
	a.Store = store

	a.Cache = NewCache(a.Config.CacheTTL)
	a.Content = NewContentService(a.Store, a.Cache)

	images, err := NewImageStore(a.Config.UploadDir, a.Config.ImageMetaDir,
		a.Config.MaxImageWidth, a.Config.ThumbnailSize)
	if err != nil {
		return fmt.Errorf("reviewpress: init image store: %w", err)
	}
	a.Images = images

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.indexNow = NewIndexNowClient(a.Config.URL, a.Config.IndexNowKey)

	if a.Config.AnalyticsEnabled {
		analyticsStore, err := analytics.NewStore(a.Config.AnalyticsDatabasePath)
		if err != nil {
			return fmt.Errorf("reviewpress: init analytics: %w", err)
		}
		a.analyticsStore = analyticsStore
		stopCleanup := analyticsStore.StartCleanupScheduler(365, 24*time.Hour)
		defer stopCleanup()
	}

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}

	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Static assets and crawler surfaces
	e.Static("/public", a.staticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/sitemap-index.xml", a.handleSitemapIndex)
	e.GET("/sitemap-blogs.xml", a.handleBlogSitemap)
	e.GET("/sitemap-reviews.xml", a.handleReviewsSitemap)
	e.GET("/feed.xml", a.handleFeed)
	if a.Config.IndexNowKey != "" {
		e.GET("/"+a.Config.IndexNowKey+".txt", a.handleIndexNowKey)
	}

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/blogs/", a.handleBlogs)
	e.GET("/blogs/:slug/", a.handleBlogDetail)
	e.GET("/reviews/", a.handleReviews)
	e.GET("/reviews/:slug/", a.handleReviewDetail)
	e.GET("/search/", a.handleSearch)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/blogs/:slug/", a.handleAdminBlogForm)
	e.POST("/admin/blogs/save/", a.handleAdminBlogSave)
	e.DELETE("/admin/blogs/:slug/", a.handleAdminBlogDelete)
	e.GET("/admin/reviews/:slug/", a.handleAdminReviewForm)
	e.POST("/admin/reviews/save/", a.handleAdminReviewSave)
	e.DELETE("/admin/reviews/:slug/", a.handleAdminReviewDelete)
	e.GET("/admin/export/", a.handleExportDownload)
	e.POST("/admin/import/", a.handleAdminImport)
	e.POST("/admin/import/preview/", a.handleAdminImportPreview)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.POST("/admin/images/:id/", a.handleImageUpdate)
	e.DELETE("/admin/images/:id/", a.handleImageDelete)

	// Management API
	api := e.Group("/api", requireAdminAPI)
	api.POST("/cache/clear", a.handleCacheClear)
	api.POST("/cache/clear/:region", a.handleCacheClearRegion)
	api.POST("/cache/reload", a.handleCacheReload)
	api.GET("/cache/regions", a.handleCacheRegions)
	api.GET("/export/stats", a.handleExportStats)
	api.POST("/indexnow/submit", a.handleSubmitURL)

	// Analytics routes
	if a.Config.AnalyticsEnabled && a.analyticsStore != nil {
		handler := analytics.NewHandler(a.analyticsStore)
		e.POST("/api/analytics/collect", handler.Collect)
		api.GET("/analytics/stats", handler.Stats)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.analyticsStore != nil {
		return a.analyticsStore.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
// This is a convenience function for use in scaffolded main.go files.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("reviewpress: required environment variable %s is not set", key)
	}
	return v
}
