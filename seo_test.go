package reviewpress

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func setupTestApp(t *testing.T) *App {
	t.Helper()
	cs := setupTestContent(t)
	cfg := SiteConfig{URL: "https://example.com", CrawlDelay: 2, HomeLatestCount: 5}
	return &App{
		Config:  cfg,
		Echo:    echo.New(),
		Content: cs,
	}
}

func getRequest(t *testing.T, a *App, path string, handler echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	return rec
}

func TestRobotsTxt(t *testing.T) {
	cfg := SiteConfig{URL: "https://example.com", CrawlDelay: 2}
	body := RobotsTxt(cfg)

	for _, want := range []string{
		"User-agent: *",
		"Disallow: /admin/",
		"Disallow: /api/cache/",
		"Crawl-delay: 2",
		"User-agent: SemrushBot\nDisallow: /",
		"Sitemap: https://example.com/sitemap.xml",
		"Sitemap: https://example.com/sitemap-index.xml",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("robots.txt missing %q:\n%s", want, body)
		}
	}
}

func TestSitemapIncludesAllContent(t *testing.T) {
	a := setupTestApp(t)
	date := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	mustSavePost(t, a.Content, "Sitemap Post", date)
	mustSaveReview(t, a.Content, "Sitemap Review", date)

	rec := getRequest(t, a, "/sitemap.xml", a.handleSitemap)
	body := rec.Body.String()

	for _, want := range []string{
		"<loc>https://example.com</loc>",
		"<loc>https://example.com/blogs/sitemap-post</loc>",
		"<loc>https://example.com/reviews/sitemap-review</loc>",
		"<lastmod>2026-04-01</lastmod>",
		"<priority>0.7</priority>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %q:\n%s", want, body)
		}
	}
	if got := rec.Header().Get(echo.HeaderContentType); !strings.Contains(got, "application/xml") {
		t.Errorf("Content-Type = %q, want application/xml", got)
	}
}

func TestReviewsSitemapOnlyHasReviews(t *testing.T) {
	a := setupTestApp(t)
	now := time.Now()
	mustSavePost(t, a.Content, "A Post", now)
	mustSaveReview(t, a.Content, "A Review", now)

	body := getRequest(t, a, "/sitemap-reviews.xml", a.handleReviewsSitemap).Body.String()
	if !strings.Contains(body, "/reviews/a-review") {
		t.Error("reviews sitemap should contain the review")
	}
	if strings.Contains(body, "/blogs/a-post") {
		t.Error("reviews sitemap should not contain blog posts")
	}
}

func TestSitemapIndex(t *testing.T) {
	a := setupTestApp(t)
	body := getRequest(t, a, "/sitemap-index.xml", a.handleSitemapIndex).Body.String()

	for _, want := range []string{
		"<sitemapindex",
		"https://example.com/sitemap.xml",
		"https://example.com/sitemap-blogs.xml",
		"https://example.com/sitemap-reviews.xml",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap index missing %q:\n%s", want, body)
		}
	}
}

func TestRSSFeed(t *testing.T) {
	a := setupTestApp(t)
	a.Config.Name = "Example Reviews"
	a.Config.Description = "Reviews and guides"
	date := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	mustSavePost(t, a.Content, "Feed Post", date)

	rec := getRequest(t, a, "/feed.xml", a.handleFeed)
	body := rec.Body.String()

	for _, want := range []string{
		"<title>Example Reviews</title>",
		"<title>Feed Post</title>",
		"https://example.com/blogs/feed-post",
		"02 Apr 2026",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("feed missing %q:\n%s", want, body)
		}
	}
}
