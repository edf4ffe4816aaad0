package reviewpress

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	featured, err := a.Content.FeaturedReviews()
	if err != nil {
		return err
	}
	latestPosts, err := a.Content.LatestBlogPosts(a.Config.HomeLatestCount)
	if err != nil {
		return err
	}
	latestReviews, err := a.Content.LatestReviews(a.Config.HomeLatestCount)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Home(featured, latestPosts, latestReviews, a.Config.URL))
}

func (a *App) handleBlogs(c echo.Context) error {
	tag := c.QueryParam("tag")
	var (
		posts []BlogPost
		err   error
	)
	if tag != "" {
		posts, err = a.Content.BlogPostsByTag(tag)
	} else {
		posts, err = a.Content.AllBlogPosts()
	}
	if err != nil {
		return err
	}
	tags, err := a.Content.BlogTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.BlogList(posts, tag, tags, a.Config.URL))
}

func (a *App) handleBlogDetail(c echo.Context) error {
	post, err := a.Content.BlogPostBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if lang := c.QueryParam("lang"); lang != "" {
		post = post.Localize(lang)
	}
	related, err := a.Content.LatestBlogPosts(a.Config.HomeLatestCount)
	if err != nil {
		return err
	}
	return Render(c, a.Views.BlogDetail(post, related, a.Config.URL))
}

func (a *App) handleReviews(c echo.Context) error {
	tag := c.QueryParam("tag")
	var (
		reviews []Review
		err     error
	)
	if tag != "" {
		reviews, err = a.Content.ReviewsByTag(tag)
	} else {
		reviews, err = a.Content.AllReviews()
	}
	if err != nil {
		return err
	}
	tags, err := a.Content.ReviewTags()
	if err != nil {
		return err
	}
	return Render(c, a.Views.ReviewList(reviews, tag, tags, a.Config.URL))
}

func (a *App) handleReviewDetail(c echo.Context) error {
	review, err := a.Content.ReviewBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if lang := c.QueryParam("lang"); lang != "" {
		review = review.Localize(lang)
	}
	related, err := a.Content.LatestReviews(a.Config.HomeLatestCount)
	if err != nil {
		return err
	}
	return Render(c, a.Views.ReviewDetail(review, related, a.Config.URL))
}

func (a *App) handleSearch(c echo.Context) error {
	query := c.QueryParam("q")
	results, err := a.Content.SearchContent(query)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Search(query, results, a.Config.URL))
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Content.AllBlogPosts()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

// handleIndexNowKey serves the key verification file search engines fetch
// to prove ownership of the host.
func (a *App) handleIndexNowKey(c echo.Context) error {
	return c.String(http.StatusOK, a.Config.IndexNowKey)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

// requireAdminAPI gates the JSON management endpoints behind the admin session.
func requireAdminAPI(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !IsAdmin(c) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "admin session required"})
		}
		return next(c)
	}
}

// handleCacheClear drops every cache region.
func (a *App) handleCacheClear(c echo.Context) error {
	a.Cache.EvictAll()
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared"})
}

// handleCacheClearRegion drops one named region.
func (a *App) handleCacheClearRegion(c echo.Context) error {
	region := c.Param("region")
	a.Cache.EvictRegion(region)
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared", "region": region})
}

// handleCacheReload clears the cache and repopulates the bulk entries so the
// next visitor does not pay the disk read.
func (a *App) handleCacheReload(c echo.Context) error {
	a.Cache.EvictAll()
	blogs, err := a.Content.AllBlogPosts()
	if err != nil {
		return err
	}
	reviews, err := a.Content.AllReviews()
	if err != nil {
		return err
	}
	tags, err := a.Content.AllTags()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "reloaded",
		"blogs":   len(blogs),
		"reviews": len(reviews),
		"tags":    len(tags),
	})
}

// handleCacheRegions reports the active region names.
func (a *App) handleCacheRegions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{"regions": a.Cache.Regions()})
}

// handleExportStats reports how many record files an export would contain.
func (a *App) handleExportStats(c echo.Context) error {
	stats, err := a.Content.ExportStatistics()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// handleSubmitURL pings IndexNow with a single URL.
func (a *App) handleSubmitURL(c echo.Context) error {
	if !a.indexNow.Enabled() {
		return c.JSON(http.StatusConflict, map[string]string{"error": "IndexNow is not configured"})
	}
	target := c.FormValue("url")
	if target == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}
	if err := a.indexNow.SubmitURL(target); err != nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "submitted", "url": target})
}

// parseRatingForm reads the rating form value, defaulting when absent.
func parseRatingForm(raw string) float64 {
	if raw == "" {
		return defaultRating
	}
	rating, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return defaultRating
	}
	return rating
}
