package reviewpress

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("reviewpress: not found")

const (
	blogsSubdir   = "blogs"
	reviewsSubdir = "reviews"
)

// Store maps content-type directories to records, one YAML file per record
// named <slug>.yaml. There is no index beyond the directory itself; callers
// front the store with a Cache so the linear scans stay cheap.
type Store struct {
	contentDir string
}

// NewStore ensures the blogs and reviews directories exist under contentDir.
func NewStore(contentDir string) (*Store, error) {
	for _, sub := range []string{blogsSubdir, reviewsSubdir} {
		if err := os.MkdirAll(filepath.Join(contentDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create content dir %s: %w", sub, err)
		}
	}
	return &Store{contentDir: contentDir}, nil
}

// BlogsDir returns the directory holding blog post files.
func (s *Store) BlogsDir() string {
	return filepath.Join(s.contentDir, blogsSubdir)
}

// ReviewsDir returns the directory holding review files.
func (s *Store) ReviewsDir() string {
	return filepath.Join(s.contentDir, reviewsSubdir)
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// listYAMLFiles enumerates the YAML files in dir. A missing directory is an
// empty listing, any other I/O failure propagates.
func listYAMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !isYAMLFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ListBlogPosts parses every blog file in the blogs directory. A file that
// fails to parse is logged and skipped so one bad record cannot take the
// whole content type offline. Order is unspecified; callers sort.
func (s *Store) ListBlogPosts() ([]BlogPost, error) {
	files, err := listYAMLFiles(s.BlogsDir())
	if err != nil {
		return nil, err
	}
	var posts []BlogPost
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("reviewpress: skipping blog file %s: %v", filepath.Base(path), err)
			continue
		}
		var post BlogPost
		if err := yaml.Unmarshal(data, &post); err != nil {
			log.Printf("reviewpress: skipping malformed blog file %s: %v", filepath.Base(path), err)
			continue
		}
		if strings.TrimSpace(post.Slug) == "" {
			post.Slug = Slugify(post.Title)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

// ListReviews parses every review file in the reviews directory with the
// same skip-on-parse-failure semantics as ListBlogPosts.
func (s *Store) ListReviews() ([]Review, error) {
	files, err := listYAMLFiles(s.ReviewsDir())
	if err != nil {
		return nil, err
	}
	var reviews []Review
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("reviewpress: skipping review file %s: %v", filepath.Base(path), err)
			continue
		}
		var review Review
		if err := yaml.Unmarshal(data, &review); err != nil {
			log.Printf("reviewpress: skipping malformed review file %s: %v", filepath.Base(path), err)
			continue
		}
		if strings.TrimSpace(review.Slug) == "" {
			review.Slug = Slugify(review.Title)
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

// SaveBlogPost writes the post to <blogs>/<slug>.yaml, deriving the slug
// from the title first if missing. An existing file of that name is
// overwritten; two records normalizing to the same slug are last-write-wins.
func (s *Store) SaveBlogPost(post *BlogPost) error {
	if strings.TrimSpace(post.Slug) == "" {
		post.Slug = Slugify(post.Title)
	}
	if post.Slug == "" {
		return errors.New("reviewpress: blog post has no slug and no title to derive one from")
	}
	data, err := yaml.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal blog post %s: %w", post.Slug, err)
	}
	path := filepath.Join(s.BlogsDir(), post.Slug+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write blog post %s: %w", post.Slug, err)
	}
	return removeYMLSibling(s.BlogsDir(), post.Slug)
}

// SaveReview writes the review to <reviews>/<slug>.yaml.
func (s *Store) SaveReview(review *Review) error {
	if strings.TrimSpace(review.Slug) == "" {
		review.Slug = Slugify(review.Title)
	}
	if review.Slug == "" {
		return errors.New("reviewpress: review has no slug and no title to derive one from")
	}
	data, err := yaml.Marshal(review)
	if err != nil {
		return fmt.Errorf("marshal review %s: %w", review.Slug, err)
	}
	path := filepath.Join(s.ReviewsDir(), review.Slug+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write review %s: %w", review.Slug, err)
	}
	return removeYMLSibling(s.ReviewsDir(), review.Slug)
}

// DeleteBlogPost removes the file for slug; a missing file is not an error.
func (s *Store) DeleteBlogPost(slug string) error {
	return removeRecordFile(s.BlogsDir(), slug)
}

// DeleteReview removes the file for slug; a missing file is not an error.
func (s *Store) DeleteReview(slug string) error {
	return removeRecordFile(s.ReviewsDir(), slug)
}

// removeRecordFile removes every file for slug. Both extensions are tried
// so a record never survives its own deletion under the other suffix.
func removeRecordFile(dir, slug string) error {
	for _, ext := range []string{".yaml", ".yml"} {
		if err := os.Remove(filepath.Join(dir, slug+ext)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("delete %s%s: %w", slug, ext, err)
		}
	}
	return nil
}

// removeYMLSibling drops the .yml file for slug after a save has written the
// canonical .yaml name, so a record that originated as .yml does not end up
// as two files with the same slug.
func removeYMLSibling(dir, slug string) error {
	if err := os.Remove(filepath.Join(dir, slug+".yml")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s.yml: %w", slug, err)
	}
	return nil
}

// CountFiles returns the number of record files per content type,
// used by the export statistics endpoint.
func (s *Store) CountFiles() (blogs, reviews int, err error) {
	blogFiles, err := listYAMLFiles(s.BlogsDir())
	if err != nil {
		return 0, 0, err
	}
	reviewFiles, err := listYAMLFiles(s.ReviewsDir())
	if err != nil {
		return 0, 0, err
	}
	return len(blogFiles), len(reviewFiles), nil
}
