package reviewpress

import (
	"bytes"
	"crypto/subtle"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		a.loginLimiter.Reset(ip)
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Content.AllBlogPosts()
	if err != nil {
		return err
	}
	reviews, err := a.Content.AllReviews()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(posts, reviews, msg, CsrfToken(c)))
}

func (a *App) handleAdminBlogForm(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if slug == "new" {
		return Render(c, a.Views.AdminBlogForm(BlogPost{Date: Now()}, CsrfToken(c)))
	}
	post, err := a.Content.BlogPostBySlug(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminBlogForm(post, CsrfToken(c)))
}

func (a *App) handleAdminReviewForm(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if slug == "new" {
		return Render(c, a.Views.AdminReviewForm(Review{Date: Now(), Rating: defaultRating}, CsrfToken(c)))
	}
	review, err := a.Content.ReviewBySlug(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminReviewForm(review, CsrfToken(c)))
}

// formTags splits a comma-separated tags field and drops blanks.
func formTags(raw string) []string {
	tags := strings.Split(raw, ",")
	for i := range tags {
		tags[i] = strings.TrimSpace(tags[i])
	}
	return FilterEmpty(tags)
}

func (a *App) handleAdminBlogSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	post := BlogPost{
		Title:           strings.TrimSpace(c.FormValue("title")),
		Author:          strings.TrimSpace(c.FormValue("author")),
		Slug:            strings.TrimSpace(c.FormValue("slug")),
		Tags:            formTags(c.FormValue("tags")),
		MetaTitle:       strings.TrimSpace(c.FormValue("metaTitle")),
		MetaDescription: strings.TrimSpace(c.FormValue("metaDescription")),
		Content:         c.FormValue("content"),
	}
	if raw := strings.TrimSpace(c.FormValue("date")); raw != "" {
		parsed, err := parseFormDate(raw)
		if err != nil {
			return c.Redirect(http.StatusSeeOther, "/admin/?msg=Invalid+date+format.+Use+YYYY-MM-DD.")
		}
		post.Date = parsed
	}
	if raw := c.FormValue("sortOrder"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			post.SortOrder = n
		}
	}
	if err := ValidateBlogPost(&post); err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+escapeMsg(err.Error()))
	}

	oldSlug := strings.TrimSpace(c.FormValue("oldSlug"))
	var err error
	if oldSlug != "" && oldSlug != post.EffectiveSlug() {
		err = a.Content.RenameBlogPost(oldSlug, &post)
	} else {
		err = a.Content.SaveBlogPost(&post)
	}
	if err != nil {
		return err
	}
	a.pingIndexNow(BuildURL(a.Config.URL, "blogs", post.EffectiveSlug()))
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminReviewSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	review := Review{
		Title:           strings.TrimSpace(c.FormValue("title")),
		Author:          strings.TrimSpace(c.FormValue("author")),
		Slug:            strings.TrimSpace(c.FormValue("slug")),
		Tags:            formTags(c.FormValue("tags")),
		MetaTitle:       strings.TrimSpace(c.FormValue("metaTitle")),
		MetaDescription: strings.TrimSpace(c.FormValue("metaDescription")),
		Content:         c.FormValue("content"),
		ProductName:     strings.TrimSpace(c.FormValue("productName")),
		ProductBrand:    strings.TrimSpace(c.FormValue("productBrand")),
		Rating:          parseRatingForm(c.FormValue("rating")),
		Pros:            c.FormValue("pros"),
		Cons:            c.FormValue("cons"),
		Conclusion:      c.FormValue("conclusion"),
	}
	if raw := strings.TrimSpace(c.FormValue("date")); raw != "" {
		parsed, err := parseFormDate(raw)
		if err != nil {
			return c.Redirect(http.StatusSeeOther, "/admin/?msg=Invalid+date+format.+Use+YYYY-MM-DD.")
		}
		review.Date = parsed
	}
	if raw := c.FormValue("sortOrder"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			review.SortOrder = n
		}
	}
	if err := ValidateReview(&review); err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/?msg="+escapeMsg(err.Error()))
	}

	oldSlug := strings.TrimSpace(c.FormValue("oldSlug"))
	var err error
	if oldSlug != "" && oldSlug != review.EffectiveSlug() {
		err = a.Content.RenameReview(oldSlug, &review)
	} else {
		err = a.Content.SaveReview(&review)
	}
	if err != nil {
		return err
	}
	a.pingIndexNow(BuildURL(a.Config.URL, "reviews", review.EffectiveSlug()))
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminBlogDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Content.DeleteBlogPost(c.Param("slug")); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) handleAdminReviewDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Content.DeleteReview(c.Param("slug")); err != nil {
		return err
	}
	return a.renderAdminDashboard(c, "deleted")
}

// pingIndexNow submits a URL in the background so save requests do not block
// on a search engine round trip.
func (a *App) pingIndexNow(url string) {
	if !a.indexNow.Enabled() {
		return
	}
	go func() {
		if err := a.indexNow.SubmitURL(url); err != nil {
			log.Printf("reviewpress: IndexNow submission failed for %s: %v", url, err)
		}
	}()
}

// handleExportDownload streams every record file as a ZIP archive.
func (a *App) handleExportDownload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	archive, err := a.Content.ExportArchive()
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="content-export.zip"`)
	return c.Blob(http.StatusOK, "application/zip", archive)
}

// readImportContent pulls the YAML body from either an uploaded file or the
// pasted-content form field.
func readImportContent(c echo.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		src, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer src.Close()
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, src); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return []byte(c.FormValue("content")), nil
}

func (a *App) handleAdminImport(c echo.Context) error {
	if !IsAdmin(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "admin session required"})
	}
	content, err := readImportContent(c)
	if err != nil {
		return err
	}
	result, err := a.Content.ImportYAML(content, c.FormValue("contentType"))
	if err != nil {
		return err
	}
	code := http.StatusOK
	if !result.Success {
		code = http.StatusUnprocessableEntity
	}
	return c.JSON(code, result)
}

func (a *App) handleAdminImportPreview(c echo.Context) error {
	if !IsAdmin(c) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "admin session required"})
	}
	content, err := readImportContent(c)
	if err != nil {
		return err
	}
	result := a.Content.PreviewYAML(content, c.FormValue("contentType"))
	code := http.StatusOK
	if !result.Success {
		code = http.StatusUnprocessableEntity
	}
	return c.JSON(code, result)
}

func (a *App) handleImageList(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	return a.renderImageList(c)
}

func (a *App) renderImageList(c echo.Context) error {
	images, err := a.Images.List()
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminImages(images, CsrfToken(c)))
}

func (a *App) handleImageUpload(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	file, err := c.FormFile("image")
	if err != nil {
		return c.String(http.StatusBadRequest, "No image file provided")
	}
	if file.Size > maxUploadSize {
		return c.String(http.StatusBadRequest, "File too large (max 10MB)")
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = a.Images.Upload(src, file.Filename,
		c.FormValue("title"), c.FormValue("altText"),
		c.FormValue("category"), c.FormValue("tags"))
	if err != nil {
		return c.String(http.StatusBadRequest, "Invalid image: "+err.Error())
	}
	return a.renderImageList(c)
}

func (a *App) handleImageUpdate(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	_, err := a.Images.Update(c.Param("id"),
		c.FormValue("title"), c.FormValue("description"),
		c.FormValue("altText"), c.FormValue("category"), c.FormValue("tags"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return a.renderImageList(c)
}

func (a *App) handleImageDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := a.Images.Delete(c.Param("id")); err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return a.renderImageList(c)
}
