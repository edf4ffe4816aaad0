package reviewpress

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"gopkg.in/yaml.v3"
)

const (
	jpegQuality   = 80
	maxUploadSize = 10 << 20 // 10MB
	thumbsSubdir  = "thumbnails"
)

// allowedImageExtensions are the upload extensions the image store accepts.
var allowedImageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
}

// ImageStore manages uploaded images: processed JPEGs and thumbnails in the
// upload directory, one YAML metadata sidecar per image in the metadata
// directory.
type ImageStore struct {
	uploadDir string
	metaDir   string
	maxWidth  int
	thumbSize int
}

// NewImageStore ensures the upload, thumbnail, and metadata directories exist.
func NewImageStore(uploadDir, metaDir string, maxWidth, thumbSize int) (*ImageStore, error) {
	for _, dir := range []string{uploadDir, filepath.Join(uploadDir, thumbsSubdir), metaDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create image dir %s: %w", dir, err)
		}
	}
	return &ImageStore{
		uploadDir: uploadDir,
		metaDir:   metaDir,
		maxWidth:  maxWidth,
		thumbSize: thumbSize,
	}, nil
}

// processImage decodes src, downscales to the store's max width if needed,
// and encodes the result plus a thumbnail as JPEG.
func (is *ImageStore) processImage(src io.Reader, originalName string) (Image, []byte, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > is.maxWidth {
		newH := h * is.maxWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, is.maxWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = is.maxWidth, newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return Image{}, nil, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	thumb, err := is.makeThumbnail(img, w, h)
	if err != nil {
		return Image{}, nil, nil, err
	}

	filename := slugifyFilename(originalName) + ".jpg"
	meta := Image{
		ID:               uuid.NewString(),
		Filename:         filename,
		OriginalFilename: originalName,
		ThumbnailFile:    filename,
		MimeType:         "image/jpeg",
		FileSize:         int64(buf.Len()),
		Width:            w,
		Height:           h,
		UploadDate:       Now(),
		ModifiedDate:     Now(),
	}
	return meta, buf.Bytes(), thumb, nil
}

// makeThumbnail scales the image into the thumbnail bounding box.
func (is *ImageStore) makeThumbnail(img image.Image, w, h int) ([]byte, error) {
	tw, th := w, h
	if w >= h && w > is.thumbSize {
		tw = is.thumbSize
		th = h * is.thumbSize / w
	} else if h > w && h > is.thumbSize {
		th = is.thumbSize
		tw = w * is.thumbSize / h
	}
	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// slugifyFilename converts a filename (without extension) to a URL-safe slug.
func slugifyFilename(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	slug := Slugify(base)
	if slug == "" {
		slug = "image"
	}
	return slug
}

// ensureUniqueFilename appends a counter while the candidate name exists on disk.
func (is *ImageStore) ensureUniqueFilename(img *Image) {
	base := strings.TrimSuffix(img.Filename, ".jpg")
	candidate := img.Filename
	counter := 1
	for {
		if _, err := os.Stat(filepath.Join(is.uploadDir, candidate)); os.IsNotExist(err) {
			break
		}
		counter++
		candidate = fmt.Sprintf("%s-%d.jpg", base, counter)
	}
	img.Filename = candidate
	img.ThumbnailFile = candidate
}

// Upload validates, processes, and persists one uploaded image along with
// its metadata sidecar, returning the stored metadata.
func (is *ImageStore) Upload(src io.Reader, originalName, title, altText, category, tags string) (Image, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExtensions[ext] {
		return Image{}, fmt.Errorf("unsupported image type %q", ext)
	}

	meta, data, thumb, err := is.processImage(src, originalName)
	if err != nil {
		return Image{}, err
	}
	if title != "" {
		meta.Title = title
	} else {
		meta.Title = originalName
	}
	meta.AltText = altText
	meta.Category = category
	meta.Tags = tags

	is.ensureUniqueFilename(&meta)

	if err := os.WriteFile(filepath.Join(is.uploadDir, meta.Filename), data, 0o644); err != nil {
		return Image{}, fmt.Errorf("write image: %w", err)
	}
	if err := os.WriteFile(filepath.Join(is.uploadDir, thumbsSubdir, meta.ThumbnailFile), thumb, 0o644); err != nil {
		return Image{}, fmt.Errorf("write thumbnail: %w", err)
	}
	if err := is.saveMeta(meta); err != nil {
		return Image{}, err
	}
	return meta, nil
}

func (is *ImageStore) metaPath(id string) string {
	return filepath.Join(is.metaDir, id+".yaml")
}

func (is *ImageStore) saveMeta(meta Image) error {
	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal image metadata %s: %w", meta.ID, err)
	}
	if err := os.WriteFile(is.metaPath(meta.ID), data, 0o644); err != nil {
		return fmt.Errorf("write image metadata %s: %w", meta.ID, err)
	}
	return nil
}

// List returns the metadata for every stored image, skipping sidecars that
// fail to parse, the same way the content store skips malformed records.
func (is *ImageStore) List() ([]Image, error) {
	files, err := listYAMLFiles(is.metaDir)
	if err != nil {
		return nil, err
	}
	var images []Image
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("reviewpress: skipping image metadata %s: %v", filepath.Base(path), err)
			continue
		}
		var img Image
		if err := yaml.Unmarshal(data, &img); err != nil {
			log.Printf("reviewpress: skipping malformed image metadata %s: %v", filepath.Base(path), err)
			continue
		}
		images = append(images, img)
	}
	return images, nil
}

// Get returns the metadata for one image by id.
func (is *ImageStore) Get(id string) (Image, error) {
	data, err := os.ReadFile(is.metaPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Image{}, ErrNotFound
		}
		return Image{}, fmt.Errorf("read image metadata %s: %w", id, err)
	}
	var img Image
	if err := yaml.Unmarshal(data, &img); err != nil {
		return Image{}, fmt.Errorf("parse image metadata %s: %w", id, err)
	}
	return img, nil
}

// Update rewrites the editable metadata fields of an image.
func (is *ImageStore) Update(id, title, description, altText, category, tags string) (Image, error) {
	img, err := is.Get(id)
	if err != nil {
		return Image{}, err
	}
	img.Title = title
	img.Description = description
	img.AltText = altText
	img.Category = category
	img.Tags = tags
	img.ModifiedDate = Now()
	if err := is.saveMeta(img); err != nil {
		return Image{}, err
	}
	return img, nil
}

// Delete removes the image file, its thumbnail, and the metadata sidecar.
// Missing files are ignored so a half-deleted image can be cleaned up.
func (is *ImageStore) Delete(id string) error {
	img, err := is.Get(id)
	if err != nil {
		return err
	}
	_ = os.Remove(filepath.Join(is.uploadDir, img.Filename))
	if img.ThumbnailFile != "" {
		_ = os.Remove(filepath.Join(is.uploadDir, thumbsSubdir, img.ThumbnailFile))
	}
	if err := os.Remove(is.metaPath(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image metadata %s: %w", id, err)
	}
	return nil
}
