package reviewpress

import (
	"fmt"
	"sort"
	"strings"
)

// Cache region names. Each content type owns one region; tag aggregations
// live in their own region so mutations can clear them coarsely.
const (
	regionBlogs   = "blogs"
	regionReviews = "reviews"
	regionTags    = "tags"
)

const (
	keyAll    = "all"
	keySlug   = "slug:"
	keyLatest = "latest:"
	keyTag    = "tag:"
)

// ContentService is the only component the rest of the application talks to
// for reading and writing content. It fronts the Store with the Cache and
// owns the cache-key conventions and invalidation on every mutation.
type ContentService struct {
	store *Store
	cache *Cache
}

// NewContentService wires a Store and a Cache together.
func NewContentService(store *Store, cache *Cache) *ContentService {
	return &ContentService{store: store, cache: cache}
}

// AllBlogPosts returns every blog post sorted by date, newest first.
func (cs *ContentService) AllBlogPosts() ([]BlogPost, error) {
	if v, ok := cs.cache.Get(regionBlogs, keyAll); ok {
		return v.([]BlogPost), nil
	}
	posts, err := cs.store.ListBlogPosts()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Date.After(posts[j].Date.Time)
	})
	cs.cache.Put(regionBlogs, keyAll, posts)
	return posts, nil
}

// AllReviews returns every review sorted by date, newest first.
func (cs *ContentService) AllReviews() ([]Review, error) {
	if v, ok := cs.cache.Get(regionReviews, keyAll); ok {
		return v.([]Review), nil
	}
	reviews, err := cs.store.ListReviews()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].Date.After(reviews[j].Date.Time)
	})
	cs.cache.Put(regionReviews, keyAll, reviews)
	return reviews, nil
}

// BlogPostBySlug finds a post whose stored or freshly derived slug matches,
// so a post found under its old slug after a title edit still resolves.
// Misses are not cached. Returns ErrNotFound when nothing matches.
func (cs *ContentService) BlogPostBySlug(slug string) (BlogPost, error) {
	if v, ok := cs.cache.Get(regionBlogs, keySlug+slug); ok {
		return v.(BlogPost), nil
	}
	posts, err := cs.AllBlogPosts()
	if err != nil {
		return BlogPost{}, err
	}
	for _, p := range posts {
		if slug == p.Slug || slug == Slugify(p.Title) {
			cs.cache.Put(regionBlogs, keySlug+slug, p)
			return p, nil
		}
	}
	return BlogPost{}, ErrNotFound
}

// ReviewBySlug finds a review by stored or derived slug.
func (cs *ContentService) ReviewBySlug(slug string) (Review, error) {
	if v, ok := cs.cache.Get(regionReviews, keySlug+slug); ok {
		return v.(Review), nil
	}
	reviews, err := cs.AllReviews()
	if err != nil {
		return Review{}, err
	}
	for _, r := range reviews {
		if slug == r.Slug || slug == Slugify(r.Title) {
			cs.cache.Put(regionReviews, keySlug+slug, r)
			return r, nil
		}
	}
	return Review{}, ErrNotFound
}

// LatestBlogPosts returns the first n posts of the date-sorted listing.
func (cs *ContentService) LatestBlogPosts(n int) ([]BlogPost, error) {
	key := fmt.Sprintf("%s%d", keyLatest, n)
	if v, ok := cs.cache.Get(regionBlogs, key); ok {
		return v.([]BlogPost), nil
	}
	posts, err := cs.AllBlogPosts()
	if err != nil {
		return nil, err
	}
	if n < len(posts) {
		posts = posts[:n]
	}
	cs.cache.Put(regionBlogs, key, posts)
	return posts, nil
}

// LatestReviews returns the first n reviews of the date-sorted listing.
func (cs *ContentService) LatestReviews(n int) ([]Review, error) {
	key := fmt.Sprintf("%s%d", keyLatest, n)
	if v, ok := cs.cache.Get(regionReviews, key); ok {
		return v.([]Review), nil
	}
	reviews, err := cs.AllReviews()
	if err != nil {
		return nil, err
	}
	if n < len(reviews) {
		reviews = reviews[:n]
	}
	cs.cache.Put(regionReviews, key, reviews)
	return reviews, nil
}

// BlogPostsByTag returns posts whose tag list contains tag exactly
// (case-sensitive). Posts with no tags never appear.
func (cs *ContentService) BlogPostsByTag(tag string) ([]BlogPost, error) {
	if v, ok := cs.cache.Get(regionBlogs, keyTag+tag); ok {
		return v.([]BlogPost), nil
	}
	posts, err := cs.AllBlogPosts()
	if err != nil {
		return nil, err
	}
	filtered := []BlogPost{}
	for _, p := range posts {
		if containsTag(p.Tags, tag) {
			filtered = append(filtered, p)
		}
	}
	cs.cache.Put(regionBlogs, keyTag+tag, filtered)
	return filtered, nil
}

// ReviewsByTag returns reviews whose tag list contains tag exactly.
func (cs *ContentService) ReviewsByTag(tag string) ([]Review, error) {
	if v, ok := cs.cache.Get(regionReviews, keyTag+tag); ok {
		return v.([]Review), nil
	}
	reviews, err := cs.AllReviews()
	if err != nil {
		return nil, err
	}
	filtered := []Review{}
	for _, r := range reviews {
		if containsTag(r.Tags, tag) {
			filtered = append(filtered, r)
		}
	}
	cs.cache.Put(regionReviews, keyTag+tag, filtered)
	return filtered, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AllTags returns the union of every record's tags, sorted.
func (cs *ContentService) AllTags() ([]string, error) {
	if v, ok := cs.cache.Get(regionTags, keyAll); ok {
		return v.([]string), nil
	}
	set := make(map[string]struct{})
	posts, err := cs.AllBlogPosts()
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		for _, t := range p.Tags {
			set[t] = struct{}{}
		}
	}
	reviews, err := cs.AllReviews()
	if err != nil {
		return nil, err
	}
	for _, r := range reviews {
		for _, t := range r.Tags {
			set[t] = struct{}{}
		}
	}
	tags := sortedKeys(set)
	cs.cache.Put(regionTags, keyAll, tags)
	return tags, nil
}

// BlogTags returns the tags that match at least one blog post.
func (cs *ContentService) BlogTags() ([]string, error) {
	if v, ok := cs.cache.Get(regionTags, "blogs"); ok {
		return v.([]string), nil
	}
	posts, err := cs.AllBlogPosts()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			set[t] = struct{}{}
		}
	}
	tags := sortedKeys(set)
	cs.cache.Put(regionTags, "blogs", tags)
	return tags, nil
}

// ReviewTags returns the tags that match at least one review.
func (cs *ContentService) ReviewTags() ([]string, error) {
	if v, ok := cs.cache.Get(regionTags, "reviews"); ok {
		return v.([]string), nil
	}
	reviews, err := cs.AllReviews()
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, r := range reviews {
		for _, t := range r.Tags {
			set[t] = struct{}{}
		}
	}
	tags := sortedKeys(set)
	cs.cache.Put(regionTags, "reviews", tags)
	return tags, nil
}

// ValidTags returns tags that yield a non-empty filter result in either
// content type, so the navigation UI never links to an empty listing.
func (cs *ContentService) ValidTags() ([]string, error) {
	if v, ok := cs.cache.Get(regionTags, "valid"); ok {
		return v.([]string), nil
	}
	all, err := cs.AllTags()
	if err != nil {
		return nil, err
	}
	var valid []string
	for _, tag := range all {
		posts, err := cs.BlogPostsByTag(tag)
		if err != nil {
			return nil, err
		}
		if len(posts) > 0 {
			valid = append(valid, tag)
			continue
		}
		reviews, err := cs.ReviewsByTag(tag)
		if err != nil {
			return nil, err
		}
		if len(reviews) > 0 {
			valid = append(valid, tag)
		}
	}
	cs.cache.Put(regionTags, "valid", valid)
	return valid, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FeaturedBlogPosts returns posts with a positive homepage rank, ascending.
func (cs *ContentService) FeaturedBlogPosts() ([]BlogPost, error) {
	posts, err := cs.AllBlogPosts()
	if err != nil {
		return nil, err
	}
	var featured []BlogPost
	for _, p := range posts {
		if p.ShowOnHomepage() {
			featured = append(featured, p)
		}
	}
	sort.SliceStable(featured, func(i, j int) bool {
		return featured[i].SortOrder < featured[j].SortOrder
	})
	return featured, nil
}

// FeaturedReviews returns reviews with a positive homepage rank, ascending.
func (cs *ContentService) FeaturedReviews() ([]Review, error) {
	reviews, err := cs.AllReviews()
	if err != nil {
		return nil, err
	}
	var featured []Review
	for _, r := range reviews {
		if r.ShowOnHomepage() {
			featured = append(featured, r)
		}
	}
	sort.SliceStable(featured, func(i, j int) bool {
		return featured[i].SortOrder < featured[j].SortOrder
	})
	return featured, nil
}

// SearchResults groups the matches of a full-content search.
type SearchResults struct {
	BlogPosts []BlogPost
	Reviews   []Review
}

// SearchContent does a case-insensitive substring search over titles,
// content, and tags of both content types. Results are not cached.
func (cs *ContentService) SearchContent(q string) (SearchResults, error) {
	var results SearchResults
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return results, nil
	}
	posts, err := cs.AllBlogPosts()
	if err != nil {
		return results, err
	}
	for _, p := range posts {
		if matchesQuery(q, p.Title, p.Content, p.Tags) {
			results.BlogPosts = append(results.BlogPosts, p)
		}
	}
	reviews, err := cs.AllReviews()
	if err != nil {
		return results, err
	}
	for _, r := range reviews {
		if matchesQuery(q, r.Title, r.Content, r.Tags) ||
			strings.Contains(strings.ToLower(r.ProductName), q) ||
			strings.Contains(strings.ToLower(r.ProductBrand), q) {
			results.Reviews = append(results.Reviews, r)
		}
	}
	return results, nil
}

func matchesQuery(q, title, content string, tags []string) bool {
	if strings.Contains(strings.ToLower(title), q) {
		return true
	}
	if strings.Contains(strings.ToLower(content), q) {
		return true
	}
	for _, t := range tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// SaveBlogPost persists the post and then invalidates every cache entry
// that could serve a stale view of it. Write first, invalidate second, so
// the cache never holds a value for something that failed to persist.
func (cs *ContentService) SaveBlogPost(post *BlogPost) error {
	if err := cs.store.SaveBlogPost(post); err != nil {
		return err
	}
	cs.invalidateBlogPosts()
	return nil
}

// SaveReview persists the review and invalidates, same discipline as
// SaveBlogPost.
func (cs *ContentService) SaveReview(review *Review) error {
	if err := cs.store.SaveReview(review); err != nil {
		return err
	}
	cs.invalidateReviews()
	return nil
}

// RenameBlogPost moves a post to a new slug: the old file is deleted and
// the record rewritten under the new name.
func (cs *ContentService) RenameBlogPost(oldSlug string, post *BlogPost) error {
	if err := cs.store.DeleteBlogPost(oldSlug); err != nil {
		return err
	}
	if err := cs.store.SaveBlogPost(post); err != nil {
		return err
	}
	cs.invalidateBlogPosts()
	return nil
}

// RenameReview moves a review to a new slug.
func (cs *ContentService) RenameReview(oldSlug string, review *Review) error {
	if err := cs.store.DeleteReview(oldSlug); err != nil {
		return err
	}
	if err := cs.store.SaveReview(review); err != nil {
		return err
	}
	cs.invalidateReviews()
	return nil
}

// DeleteBlogPost removes the record and evicts the same set as a save.
func (cs *ContentService) DeleteBlogPost(slug string) error {
	if err := cs.store.DeleteBlogPost(slug); err != nil {
		return err
	}
	cs.invalidateBlogPosts()
	return nil
}

// DeleteReview removes the record and evicts the same set as a save.
func (cs *ContentService) DeleteReview(slug string) error {
	if err := cs.store.DeleteReview(slug); err != nil {
		return err
	}
	cs.invalidateReviews()
	return nil
}

// invalidateBlogPosts drops the whole blogs region rather than computing
// which listing, slug, latest, or tag keys a mutation touched, and clears
// the tag region since any save can change tag aggregation. The region
// clear also covers the old and new slug entries on a rename.
func (cs *ContentService) invalidateBlogPosts() {
	cs.cache.EvictRegion(regionBlogs)
	cs.cache.EvictRegion(regionTags)
}

func (cs *ContentService) invalidateReviews() {
	cs.cache.EvictRegion(regionReviews)
	cs.cache.EvictRegion(regionTags)
}

// Cache exposes the underlying cache for the cache control endpoint.
func (cs *ContentService) Cache() *Cache {
	return cs.cache
}
