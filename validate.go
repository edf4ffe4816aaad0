package reviewpress

import (
	"fmt"
	"log"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultAuthor is assigned when an imported record carries no author.
const defaultAuthor = "Admin"

// defaultRating replaces an out-of-range review rating.
const defaultRating = 5.0

// FieldError describes a single invalid field on a record.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates the field-level failures of one record. The
// admin form path and the bulk import path both go through the same
// validators, so a record rejected in one place is rejected in the other.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateBlogPost checks required fields and fills defaults in place:
// date defaults to now, author to Admin, slug is derived from the title.
// No partial write happens on failure; the caller only saves on nil error.
func ValidateBlogPost(post *BlogPost) error {
	var verr ValidationError
	if strings.TrimSpace(post.Title) == "" {
		verr.add("title", "missing required field")
	}
	if strings.TrimSpace(post.Content) == "" {
		verr.add("content", "missing required field")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	if post.Date.IsZero() {
		post.Date = Now()
	}
	// Explicit slugs pass through the same derivation as titles, so a slug
	// like "../evil" or "My Slug" can never reach the filesystem verbatim.
	post.Slug = Slugify(post.Slug)
	if post.Slug == "" {
		post.Slug = Slugify(post.Title)
	}
	if strings.TrimSpace(post.Author) == "" {
		post.Author = defaultAuthor
	}
	return nil
}

// ValidateReview checks required fields and fills defaults. An out-of-range
// rating is coerced to the default with a warning rather than rejected.
func ValidateReview(review *Review) error {
	var verr ValidationError
	if strings.TrimSpace(review.Title) == "" {
		verr.add("title", "missing required field")
	}
	if strings.TrimSpace(review.Content) == "" {
		verr.add("content", "missing required field")
	}
	if strings.TrimSpace(review.ProductName) == "" {
		verr.add("productName", "missing required field")
	}
	if strings.TrimSpace(review.ProductBrand) == "" {
		verr.add("productBrand", "missing required field")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	if review.Rating < 1 || review.Rating > 5 {
		log.Printf("reviewpress: rating %.1f out of range for %q, using default %.1f",
			review.Rating, review.Title, defaultRating)
		review.Rating = defaultRating
	}
	if review.Date.IsZero() {
		review.Date = Now()
	}
	review.Slug = Slugify(review.Slug)
	if review.Slug == "" {
		review.Slug = Slugify(review.Title)
	}
	if strings.TrimSpace(review.Author) == "" {
		review.Author = defaultAuthor
	}
	return nil
}

// ParseBlogPost decodes a single YAML document into a validated blog post.
func ParseBlogPost(data []byte) (*BlogPost, error) {
	var post BlogPost
	if err := yaml.Unmarshal(data, &post); err != nil {
		return nil, fmt.Errorf("parse blog post: %w", err)
	}
	if err := ValidateBlogPost(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

// ParseReview decodes a single YAML document into a validated review.
func ParseReview(data []byte) (*Review, error) {
	var review Review
	if err := yaml.Unmarshal(data, &review); err != nil {
		return nil, fmt.Errorf("parse review: %w", err)
	}
	if err := ValidateReview(&review); err != nil {
		return nil, err
	}
	return &review, nil
}
