package reviewpress

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func setupTestImages(t *testing.T) *ImageStore {
	t.Helper()
	base := t.TempDir()
	is, err := NewImageStore(filepath.Join(base, "uploads"), filepath.Join(base, "meta"), 100, 40)
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}
	return is
}

func pngBytes(t *testing.T, w, h int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &buf
}

func TestUploadResizesWideImage(t *testing.T) {
	is := setupTestImages(t)

	meta, err := is.Upload(pngBytes(t, 400, 200), "Big Photo.PNG", "Big Photo", "alt", "cats", "fluffy")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if meta.Width != 100 || meta.Height != 50 {
		t.Errorf("dimensions = %dx%d, want 100x50 (downscaled)", meta.Width, meta.Height)
	}
	if meta.Filename != "big-photo.jpg" {
		t.Errorf("Filename = %q, want big-photo.jpg", meta.Filename)
	}
	if meta.MimeType != "image/jpeg" {
		t.Errorf("MimeType = %q, want image/jpeg", meta.MimeType)
	}
	if meta.ID == "" {
		t.Error("expected a generated id")
	}

	if _, err := os.Stat(filepath.Join(is.uploadDir, "big-photo.jpg")); err != nil {
		t.Errorf("image file missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(is.uploadDir, thumbsSubdir, "big-photo.jpg")); err != nil {
		t.Errorf("thumbnail missing: %v", err)
	}
}

func TestUploadKeepsSmallImageSize(t *testing.T) {
	is := setupTestImages(t)

	meta, err := is.Upload(pngBytes(t, 60, 30), "small.png", "", "", "", "")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if meta.Width != 60 || meta.Height != 30 {
		t.Errorf("dimensions = %dx%d, want 60x30 (no upscale)", meta.Width, meta.Height)
	}
	if meta.Title != "small.png" {
		t.Errorf("Title = %q, want original filename fallback", meta.Title)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	is := setupTestImages(t)

	if _, err := is.Upload(bytes.NewReader([]byte("not an image")), "doc.pdf", "", "", "", ""); err == nil {
		t.Error("expected unsupported extension to be rejected")
	}
}

func TestUploadUniqueFilenames(t *testing.T) {
	is := setupTestImages(t)

	first, err := is.Upload(pngBytes(t, 20, 20), "dup.png", "", "", "", "")
	if err != nil {
		t.Fatalf("first Upload failed: %v", err)
	}
	second, err := is.Upload(pngBytes(t, 20, 20), "dup.png", "", "", "", "")
	if err != nil {
		t.Fatalf("second Upload failed: %v", err)
	}
	if first.Filename == second.Filename {
		t.Errorf("both uploads got %q, want distinct filenames", first.Filename)
	}
	if second.Filename != "dup-2.jpg" {
		t.Errorf("second Filename = %q, want dup-2.jpg", second.Filename)
	}
}

func TestImageMetadataLifecycle(t *testing.T) {
	is := setupTestImages(t)

	meta, err := is.Upload(pngBytes(t, 20, 20), "life.png", "Life", "", "cats", "")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	got, err := is.Get(meta.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Life" || got.Category != "cats" {
		t.Errorf("got %+v, want saved metadata back", got)
	}

	updated, err := is.Update(meta.ID, "New Title", "desc", "alt", "dogs", "tag")
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "New Title" || updated.Description != "desc" || updated.Category != "dogs" {
		t.Errorf("update not applied: %+v", updated)
	}

	list, err := is.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d images, want 1", len(list))
	}

	if err := is.Delete(meta.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := is.Get(meta.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(is.uploadDir, meta.Filename)); !os.IsNotExist(err) {
		t.Error("image file should be removed")
	}
}
