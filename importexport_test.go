package reviewpress

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"
)

func TestImportYAMLBlog(t *testing.T) {
	cs := setupTestContent(t)

	doc := []byte("title: Imported Post\ndate: 2026-03-01\ncontent: imported body\n")
	result, err := cs.ImportYAML(doc, ContentTypeBlogs)
	if err != nil {
		t.Fatalf("ImportYAML failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("import rejected: %s", result.Message)
	}
	if result.FileName != "imported-post.yaml" {
		t.Errorf("FileName = %q, want imported-post.yaml", result.FileName)
	}

	post, err := cs.BlogPostBySlug("imported-post")
	if err != nil {
		t.Fatalf("imported post not found: %v", err)
	}
	if post.Content != "imported body" {
		t.Errorf("Content = %q, want %q", post.Content, "imported body")
	}
}

func TestImportYAMLRejections(t *testing.T) {
	cs := setupTestContent(t)

	// Empty content is rejected, not an error.
	result, err := cs.ImportYAML([]byte("   \n"), ContentTypeBlogs)
	if err != nil {
		t.Fatalf("ImportYAML failed: %v", err)
	}
	if result.Success {
		t.Error("expected empty document to be rejected")
	}

	// Validation failure is rejected, not an error.
	result, err = cs.ImportYAML([]byte("title: No Body\n"), ContentTypeBlogs)
	if err != nil {
		t.Fatalf("ImportYAML failed: %v", err)
	}
	if result.Success {
		t.Error("expected invalid document to be rejected")
	}

	// Unknown content type is rejected.
	result, err = cs.ImportYAML([]byte("title: X\ncontent: y\n"), "podcasts")
	if err != nil {
		t.Fatalf("ImportYAML failed: %v", err)
	}
	if result.Success {
		t.Error("expected unknown content type to be rejected")
	}
}

func TestPreviewYAMLDoesNotSave(t *testing.T) {
	cs := setupTestContent(t)

	doc := []byte(`title: Previewed Review
productName: Widget
productBrand: Acme
rating: 4
content: preview body
`)
	result := cs.PreviewYAML(doc, ContentTypeReviews)
	if !result.Success {
		t.Fatalf("preview rejected: %s", result.Message)
	}
	if result.Review == nil || result.Review.Title != "Previewed Review" {
		t.Errorf("Review = %+v, want parsed review", result.Review)
	}
	if result.RawContent == "" {
		t.Error("RawContent should carry the original document")
	}

	// Nothing was written.
	reviews, err := cs.AllReviews()
	if err != nil {
		t.Fatalf("AllReviews failed: %v", err)
	}
	if len(reviews) != 0 {
		t.Errorf("got %d reviews after preview, want 0", len(reviews))
	}
}

func TestExportArchive(t *testing.T) {
	cs := setupTestContent(t)
	now := time.Now()
	mustSavePost(t, cs, "Export Post", now)
	mustSaveReview(t, cs, "Export Review", now)

	archive, err := cs.ExportArchive()
	if err != nil {
		t.Fatalf("ExportArchive failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["blogs/export-post.yaml"] {
		t.Errorf("archive missing blogs/export-post.yaml, got %v", names)
	}
	if !names["reviews/export-review.yaml"] {
		t.Errorf("archive missing reviews/export-review.yaml, got %v", names)
	}
}

func TestExportStatistics(t *testing.T) {
	cs := setupTestContent(t)
	now := time.Now()
	mustSavePost(t, cs, "One", now)
	mustSavePost(t, cs, "Two", now)
	mustSaveReview(t, cs, "Three", now)

	stats, err := cs.ExportStatistics()
	if err != nil {
		t.Fatalf("ExportStatistics failed: %v", err)
	}
	if stats.BlogFiles != 2 || stats.ReviewFiles != 1 || stats.TotalFiles != 3 {
		t.Errorf("stats = %+v, want 2/1/3", stats)
	}
}
