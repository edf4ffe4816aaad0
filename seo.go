package reviewpress

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type sitemapIndex struct {
	XMLName  xml.Name          `xml:"sitemapindex"`
	XMLNS    string            `xml:"xmlns,attr"`
	Sitemaps []sitemapIndexRef `xml:"sitemap"`
}

type sitemapIndexRef struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

const sitemapXMLNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

func (a *App) blogSitemapURLs() ([]sitemapURL, error) {
	posts, err := a.Content.AllBlogPosts()
	if err != nil {
		return nil, err
	}
	urls := make([]sitemapURL, 0, len(posts))
	for _, p := range posts {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(a.Config.URL, "blogs", p.EffectiveSlug()),
			LastMod:    p.Date.Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}
	return urls, nil
}

func (a *App) reviewSitemapURLs() ([]sitemapURL, error) {
	reviews, err := a.Content.AllReviews()
	if err != nil {
		return nil, err
	}
	urls := make([]sitemapURL, 0, len(reviews))
	for _, r := range reviews {
		urls = append(urls, sitemapURL{
			Loc:        BuildURL(a.Config.URL, "reviews", r.EffectiveSlug()),
			LastMod:    r.Date.Format("2006-01-02"),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	return urls, nil
}

func (a *App) staticSitemapURLs() []sitemapURL {
	base := a.Config.URL
	return []sitemapURL{
		{Loc: BuildURL(base), ChangeFreq: "daily", Priority: "1.0"},
		{Loc: BuildURL(base, "blogs"), ChangeFreq: "daily", Priority: "0.8"},
		{Loc: BuildURL(base, "reviews"), ChangeFreq: "daily", Priority: "0.8"},
		{Loc: BuildURL(base, "search"), ChangeFreq: "weekly", Priority: "0.5"},
	}
}

// handleSitemap serves the combined sitemap: static pages plus every blog
// post and review.
func (a *App) handleSitemap(c echo.Context) error {
	urls := a.staticSitemapURLs()
	blogURLs, err := a.blogSitemapURLs()
	if err != nil {
		return err
	}
	reviewURLs, err := a.reviewSitemapURLs()
	if err != nil {
		return err
	}
	urls = append(urls, blogURLs...)
	urls = append(urls, reviewURLs...)
	return writeSitemapXML(c, sitemapURLSet{XMLNS: sitemapXMLNS, URLs: urls})
}

// handleBlogSitemap serves a sitemap restricted to blog posts.
func (a *App) handleBlogSitemap(c echo.Context) error {
	urls, err := a.blogSitemapURLs()
	if err != nil {
		return err
	}
	return writeSitemapXML(c, sitemapURLSet{XMLNS: sitemapXMLNS, URLs: urls})
}

// handleReviewsSitemap serves a sitemap restricted to reviews.
func (a *App) handleReviewsSitemap(c echo.Context) error {
	urls, err := a.reviewSitemapURLs()
	if err != nil {
		return err
	}
	return writeSitemapXML(c, sitemapURLSet{XMLNS: sitemapXMLNS, URLs: urls})
}

// handleSitemapIndex serves the index referencing the section sitemaps.
func (a *App) handleSitemapIndex(c echo.Context) error {
	today := time.Now().Format("2006-01-02")
	index := sitemapIndex{
		XMLNS: sitemapXMLNS,
		Sitemaps: []sitemapIndexRef{
			{Loc: a.Config.URL + "/sitemap.xml", LastMod: today},
			{Loc: a.Config.URL + "/sitemap-blogs.xml", LastMod: today},
			{Loc: a.Config.URL + "/sitemap-reviews.xml", LastMod: today},
		},
	}
	return writeSitemapXML(c, index)
}

func writeSitemapXML(c echo.Context, v interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(v)
}

// blockedBots are crawlers disallowed outright in robots.txt.
var blockedBots = []string{"SemrushBot", "AhrefsBot", "MJ12bot"}

// RobotsTxt builds the robots.txt body from site configuration.
func RobotsTxt(cfg SiteConfig) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /admin/\n")
	b.WriteString("Disallow: /api/cache/\n")
	fmt.Fprintf(&b, "Crawl-delay: %d\n", cfg.CrawlDelay)

	b.WriteString("\nUser-agent: Googlebot\nAllow: /\nCrawl-delay: 1\n")
	b.WriteString("\nUser-agent: Bingbot\nAllow: /\nCrawl-delay: 2\n")

	for _, bot := range blockedBots {
		fmt.Fprintf(&b, "\nUser-agent: %s\nDisallow: /\n", bot)
	}

	fmt.Fprintf(&b, "\nSitemap: %s/sitemap.xml\n", cfg.URL)
	fmt.Fprintf(&b, "Sitemap: %s/sitemap-index.xml\n", cfg.URL)
	return b.String()
}

// handleRobots serves robots.txt generated from SiteConfig.
func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, RobotsTxt(a.Config))
}
