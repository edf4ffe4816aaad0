package reviewpress

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode"
)

// Slugify converts a title to a URL-safe slug: lowercase, strip everything
// outside [a-z0-9 space hyphen], collapse whitespace runs to a single
// hyphen, collapse hyphen runs, trim leading and trailing hyphens.
// Applying Slugify to an already-slugified string returns it unchanged.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsSpace(r), r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
		// Any other rune is dropped without producing a hyphen.
	}
	return strings.TrimRight(b.String(), "-")
}

// parseFormDate parses an admin form date field using the same layouts the
// store accepts on disk.
func parseFormDate(raw string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return Timestamp{parsed}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid date %q", raw)
}

// escapeMsg query-escapes a message for use in a redirect URL.
func escapeMsg(msg string) string {
	return url.QueryEscape(msg)
}

// BuildURL joins a base URL with path segments.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// PathEscape escapes a string for use in a URL path.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post BlogPost, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "blogs", post.EffectiveSlug())
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.MetaDescription,
		"datePublished": post.Date.Format("2006-01-02"),
		"url":           postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	author := post.Author
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// ReviewJsonLD returns a JSON-LD string for a schema.org Review of a Product.
func ReviewJsonLD(review Review, cfg SiteConfig) string {
	reviewURL := BuildURL(cfg.URL, "reviews", review.EffectiveSlug())
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "Review",
		"name":          review.Title,
		"url":           reviewURL,
		"datePublished": review.Date.Format("2006-01-02"),
		"itemReviewed": map[string]interface{}{
			"@type": "Product",
			"name":  review.ProductName,
			"brand": map[string]string{
				"@type": "Brand",
				"name":  review.ProductBrand,
			},
		},
		"reviewRating": map[string]interface{}{
			"@type":       "Rating",
			"ratingValue": review.Rating,
			"bestRating":  5,
			"worstRating": 1,
		},
	}
	author := review.Author
	if author == "" {
		author = cfg.Author
	}
	if author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
