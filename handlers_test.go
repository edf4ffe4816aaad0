package reviewpress

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func postRequest(t *testing.T, a *App, path string, handler echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, nil)
	rec := httptest.NewRecorder()
	c := a.Echo.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	if err := handler(c); err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	return rec
}

func TestCacheClearEndpoint(t *testing.T) {
	a := setupTestApp(t)
	a.Cache = NewCache(time.Minute)
	a.Content = NewContentService(a.Content.store, a.Cache)

	mustSavePost(t, a.Content, "Cached Post", time.Now())
	if _, err := a.Content.AllBlogPosts(); err != nil {
		t.Fatalf("AllBlogPosts failed: %v", err)
	}
	if _, ok := a.Cache.Get(regionBlogs, keyAll); !ok {
		t.Fatal("expected listing to be cached")
	}

	rec := postRequest(t, a, "/api/cache/clear", a.handleCacheClear)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, ok := a.Cache.Get(regionBlogs, keyAll); ok {
		t.Error("expected cache to be empty after clear")
	}
}

func TestCacheClearRegionEndpoint(t *testing.T) {
	a := setupTestApp(t)
	a.Cache = NewCache(time.Minute)
	a.Cache.Put(regionBlogs, keyAll, "x")
	a.Cache.Put(regionReviews, keyAll, "y")

	rec := postRequest(t, a, "/api/cache/clear/blogs", a.handleCacheClearRegion, "region", "blogs")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, ok := a.Cache.Get(regionBlogs, keyAll); ok {
		t.Error("blogs region should be cleared")
	}
	if _, ok := a.Cache.Get(regionReviews, keyAll); !ok {
		t.Error("reviews region should survive")
	}
}

func TestCacheReloadEndpoint(t *testing.T) {
	a := setupTestApp(t)
	a.Cache = NewCache(time.Minute)
	a.Content = NewContentService(a.Content.store, a.Cache)
	mustSavePost(t, a.Content, "Reload Post", time.Now())
	mustSaveReview(t, a.Content, "Reload Review", time.Now())

	rec := postRequest(t, a, "/api/cache/reload", a.handleCacheReload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["blogs"].(float64) != 1 || body["reviews"].(float64) != 1 {
		t.Errorf("reload counts = %v, want 1 blog and 1 review", body)
	}

	// Bulk entries are warm again after the reload.
	if _, ok := a.Cache.Get(regionBlogs, keyAll); !ok {
		t.Error("expected blogs listing to be repopulated")
	}
}

func TestParseRatingForm(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", defaultRating},
		{"junk", defaultRating},
		{"4.5", 4.5},
		{"3", 3},
	}
	for _, tt := range tests {
		if got := parseRatingForm(tt.raw); got != tt.want {
			t.Errorf("parseRatingForm(%q) = %.1f, want %.1f", tt.raw, got, tt.want)
		}
	}
}

func TestIndexNowKeyHandler(t *testing.T) {
	a := setupTestApp(t)
	a.Config.IndexNowKey = "abc123"

	rec := getRequest(t, a, "/abc123.txt", a.handleIndexNowKey)
	if rec.Body.String() != "abc123" {
		t.Errorf("key body = %q, want abc123", rec.Body.String())
	}
}
