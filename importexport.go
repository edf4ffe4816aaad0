package reviewpress

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Content type identifiers used by the import and export endpoints.
const (
	ContentTypeBlogs   = "blogs"
	ContentTypeReviews = "reviews"
)

// ImportResult reports the outcome of importing one YAML document.
type ImportResult struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	FileName string `json:"fileName,omitempty"`
}

// PreviewResult carries a parsed-but-not-saved record back to the admin UI.
type PreviewResult struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	ContentType string    `json:"contentType,omitempty"`
	RawContent  string    `json:"rawContent,omitempty"`
	BlogPost    *BlogPost `json:"blogPost,omitempty"`
	Review      *Review   `json:"review,omitempty"`
}

// ExportStats counts the record files available for export.
type ExportStats struct {
	BlogFiles   int `json:"blogFiles"`
	ReviewFiles int `json:"reviewFiles"`
	TotalFiles  int `json:"totalFiles"`
}

// ExportArchive bundles every record file from both content directories
// into a ZIP, preserving the blogs/ and reviews/ layout so the archive can
// be unpacked straight back into a content directory.
func (cs *ContentService) ExportArchive() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	dirs := []struct {
		path   string
		prefix string
	}{
		{cs.store.BlogsDir(), "blogs/"},
		{cs.store.ReviewsDir(), "reviews/"},
	}
	for _, d := range dirs {
		files, err := listYAMLFiles(d.path)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			if err := addFileToZip(zw, path, d.prefix+filepath.Base(path)); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close export archive: %w", err)
	}
	return buf.Bytes(), nil
}

func addFileToZip(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create zip entry %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write zip entry %s: %w", name, err)
	}
	return nil
}

// ExportStatistics returns the file counts the export page shows.
func (cs *ContentService) ExportStatistics() (ExportStats, error) {
	blogs, reviews, err := cs.store.CountFiles()
	if err != nil {
		return ExportStats{}, err
	}
	return ExportStats{
		BlogFiles:   blogs,
		ReviewFiles: reviews,
		TotalFiles:  blogs + reviews,
	}, nil
}

// ImportYAML validates and saves one YAML document into the given content
// type. Validation failures come back as a rejected result, not an error;
// only I/O failures are errors.
func (cs *ContentService) ImportYAML(content []byte, contentType string) (ImportResult, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		return ImportResult{Message: "content is empty"}, nil
	}
	switch contentType {
	case ContentTypeBlogs:
		post, err := ParseBlogPost(content)
		if err != nil {
			return ImportResult{Message: err.Error()}, nil
		}
		if err := cs.SaveBlogPost(post); err != nil {
			return ImportResult{}, err
		}
		return ImportResult{
			Success:  true,
			Message:  "blog post imported: " + post.Title,
			FileName: post.Slug + ".yaml",
		}, nil
	case ContentTypeReviews:
		review, err := ParseReview(content)
		if err != nil {
			return ImportResult{Message: err.Error()}, nil
		}
		if err := cs.SaveReview(review); err != nil {
			return ImportResult{}, err
		}
		return ImportResult{
			Success:  true,
			Message:  "review imported: " + review.Title,
			FileName: review.Slug + ".yaml",
		}, nil
	default:
		return ImportResult{Message: "unsupported content type: " + contentType}, nil
	}
}

// PreviewYAML parses and validates a YAML document without saving it.
func (cs *ContentService) PreviewYAML(content []byte, contentType string) PreviewResult {
	if len(strings.TrimSpace(string(content))) == 0 {
		return PreviewResult{Message: "content is empty"}
	}
	result := PreviewResult{
		ContentType: contentType,
		RawContent:  string(content),
	}
	switch contentType {
	case ContentTypeBlogs:
		post, err := ParseBlogPost(content)
		if err != nil {
			result.Message = err.Error()
			return result
		}
		result.Success = true
		result.Message = "blog post preview generated"
		result.BlogPost = post
	case ContentTypeReviews:
		review, err := ParseReview(content)
		if err != nil {
			result.Message = err.Error()
			return result
		}
		result.Success = true
		result.Message = "review preview generated"
		result.Review = review
	default:
		return PreviewResult{Message: "unsupported content type: " + contentType}
	}
	return result
}
