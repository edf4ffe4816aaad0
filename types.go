package reviewpress

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// timestampLayout is the canonical on-disk date format for content records.
const timestampLayout = "2006-01-02 15:04:05"

// timestampLayouts are accepted on read; the first is used on write.
var timestampLayouts = []string{
	timestampLayout,
	"2006-01-02",
	time.RFC3339,
}

// Timestamp is a time.Time that marshals to "2006-01-02 15:04:05" in YAML.
type Timestamp struct {
	time.Time
}

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return Timestamp{time.Now()}
}

// MarshalYAML renders the timestamp in the canonical layout.
func (t Timestamp) MarshalYAML() (interface{}, error) {
	return t.Format(timestampLayout), nil
}

// UnmarshalYAML accepts the canonical layout plus date-only and RFC 3339.
// An unparseable date is an error for the whole document, so the store
// skips the file rather than listing a record it cannot sort.
func (t *Timestamp) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", raw)
}

// LocalizedContent is a per-language override bundle attached to a record.
// Pros, cons, and conclusion only apply to reviews.
type LocalizedContent struct {
	Title           string `yaml:"title,omitempty"`
	MetaTitle       string `yaml:"metaTitle,omitempty"`
	MetaDescription string `yaml:"metaDescription,omitempty"`
	Content         string `yaml:"content,omitempty"`
	Pros            string `yaml:"pros,omitempty"`
	Cons            string `yaml:"cons,omitempty"`
	Conclusion      string `yaml:"conclusion,omitempty"`
}

// BlogPost is a content record stored as a single YAML file under the blogs
// directory, keyed by slug.
type BlogPost struct {
	Title           string                      `yaml:"title"`
	Author          string                      `yaml:"author,omitempty"`
	Date            Timestamp                   `yaml:"date"`
	Tags            []string                    `yaml:"tags,omitempty"`
	MetaTitle       string                      `yaml:"metaTitle,omitempty"`
	MetaDescription string                      `yaml:"metaDescription,omitempty"`
	Content         string                      `yaml:"content"`
	Slug            string                      `yaml:"slug,omitempty"`
	SortOrder       int                         `yaml:"sortOrder,omitempty"`
	Localized       map[string]LocalizedContent `yaml:"localized,omitempty"`
}

// EffectiveSlug returns the explicit slug if set, otherwise one derived
// from the title. Lookups must match against both so records survive
// title edits that postdate their slug.
func (p *BlogPost) EffectiveSlug() string {
	if s := strings.TrimSpace(p.Slug); s != "" {
		return s
	}
	return Slugify(p.Title)
}

// ShowOnHomepage reports whether the post has a homepage display rank.
func (p *BlogPost) ShowOnHomepage() bool {
	return p.SortOrder > 0
}

// Localize returns a copy of the post with the overrides for lang applied.
// Unknown languages return the post unchanged.
func (p BlogPost) Localize(lang string) BlogPost {
	lc, ok := p.Localized[lang]
	if !ok {
		return p
	}
	if lc.Title != "" {
		p.Title = lc.Title
	}
	if lc.MetaTitle != "" {
		p.MetaTitle = lc.MetaTitle
	}
	if lc.MetaDescription != "" {
		p.MetaDescription = lc.MetaDescription
	}
	if lc.Content != "" {
		p.Content = lc.Content
	}
	return p
}

// Review is a product review record. It extends the blog post shape with
// product fields and a 1–5 star rating.
type Review struct {
	Title           string                      `yaml:"title"`
	Author          string                      `yaml:"author,omitempty"`
	Date            Timestamp                   `yaml:"date"`
	Tags            []string                    `yaml:"tags,omitempty"`
	MetaTitle       string                      `yaml:"metaTitle,omitempty"`
	MetaDescription string                      `yaml:"metaDescription,omitempty"`
	Content         string                      `yaml:"content"`
	Slug            string                      `yaml:"slug,omitempty"`
	SortOrder       int                         `yaml:"sortOrder,omitempty"`
	ProductName     string                      `yaml:"productName"`
	ProductBrand    string                      `yaml:"productBrand"`
	Rating          float64                     `yaml:"rating"`
	Pros            string                      `yaml:"pros,omitempty"`
	Cons            string                      `yaml:"cons,omitempty"`
	Conclusion      string                      `yaml:"conclusion,omitempty"`
	Localized       map[string]LocalizedContent `yaml:"localized,omitempty"`
}

// EffectiveSlug returns the explicit slug if set, otherwise one derived
// from the title.
func (r *Review) EffectiveSlug() string {
	if s := strings.TrimSpace(r.Slug); s != "" {
		return s
	}
	return Slugify(r.Title)
}

// ShowOnHomepage reports whether the review has a homepage display rank.
func (r *Review) ShowOnHomepage() bool {
	return r.SortOrder > 0
}

// Localize returns a copy of the review with the overrides for lang applied.
func (r Review) Localize(lang string) Review {
	lc, ok := r.Localized[lang]
	if !ok {
		return r
	}
	if lc.Title != "" {
		r.Title = lc.Title
	}
	if lc.MetaTitle != "" {
		r.MetaTitle = lc.MetaTitle
	}
	if lc.MetaDescription != "" {
		r.MetaDescription = lc.MetaDescription
	}
	if lc.Content != "" {
		r.Content = lc.Content
	}
	if lc.Pros != "" {
		r.Pros = lc.Pros
	}
	if lc.Cons != "" {
		r.Cons = lc.Cons
	}
	if lc.Conclusion != "" {
		r.Conclusion = lc.Conclusion
	}
	return r
}

// Image holds metadata for an uploaded image, persisted as a YAML sidecar
// in the metadata directory.
type Image struct {
	ID               string    `yaml:"id"`
	Title            string    `yaml:"title"`
	Description      string    `yaml:"description,omitempty"`
	Filename         string    `yaml:"filename"`
	OriginalFilename string    `yaml:"originalFilename"`
	ThumbnailFile    string    `yaml:"thumbnailFile,omitempty"`
	MimeType         string    `yaml:"mimeType"`
	FileSize         int64     `yaml:"fileSize"`
	Width            int       `yaml:"width"`
	Height           int       `yaml:"height"`
	AltText          string    `yaml:"altText,omitempty"`
	Category         string    `yaml:"category,omitempty"`
	Tags             string    `yaml:"tags,omitempty"`
	UploadDate       Timestamp `yaml:"uploadDate"`
	ModifiedDate     Timestamp `yaml:"modifiedDate"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}
