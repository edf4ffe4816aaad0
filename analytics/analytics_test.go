package analytics

import (
	"path/filepath"
	"testing"
	"time"
)

func TestParseUserAgent(t *testing.T) {
	tests := []struct {
		ua      string
		browser string
		os      string
		device  string
	}{
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0", "Chrome", "Windows", "Desktop"},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Safari/605.1.15", "Safari", "macOS", "Desktop"},
		{"Mozilla/5.0 (Linux; Android 14; Pixel 8) Chrome/120.0 Mobile", "Chrome", "Android", "Mobile"},
		{"Mozilla/5.0 (iPad; CPU OS 17_0) Safari/604.1", "Safari", "iOS", "Tablet"},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Firefox/120.0", "Firefox", "Linux", "Desktop"},
	}
	for _, tt := range tests {
		browser, os, device := ParseUserAgent(tt.ua)
		if browser != tt.browser || os != tt.os || device != tt.device {
			t.Errorf("ParseUserAgent(%q) = (%s, %s, %s), want (%s, %s, %s)",
				tt.ua, browser, os, device, tt.browser, tt.os, tt.device)
		}
	}
}

func TestIsBot(t *testing.T) {
	if !IsBot("Mozilla/5.0 (compatible; Googlebot/2.1)") {
		t.Error("Googlebot should be detected as a bot")
	}
	if IsBot("Mozilla/5.0 (Windows NT 10.0) Chrome/120.0") {
		t.Error("Chrome should not be detected as a bot")
	}
}

func TestCleanReferrer(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "Direct"},
		{"https://www.google.com/search?q=x", "Google"},
		{"https://www.reddit.com/r/dogs", "reddit.com"},
		{"garbage", "Other"},
	}
	for _, tt := range tests {
		if got := CleanReferrer(tt.in); got != tt.want {
			t.Errorf("CleanReferrer(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("failed to create analytics store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreSaltPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analytics.db")

	s1, err := NewStore(path)
	if err != nil {
		t.Fatalf("first open failed: %v", err)
	}
	salt1 := s1.salt
	s1.Close()

	s2, err := NewStore(path)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	defer s2.Close()

	if salt1 == "" || s2.salt != salt1 {
		t.Errorf("salt should persist across opens, got %q then %q", salt1, s2.salt)
	}
}

func TestRecordVisitAndStats(t *testing.T) {
	s := setupTestStore(t)
	now := time.Now().UTC()

	visits := []Visit{
		{VisitorID: "v1", Browser: "Chrome", OS: "Linux", Device: "Desktop", Path: "/reviews/a", Referrer: "Google", Timestamp: now},
		{VisitorID: "v1", Browser: "Chrome", OS: "Linux", Device: "Desktop", Path: "/reviews/a", Referrer: "Direct", Timestamp: now},
		{VisitorID: "v2", Browser: "Firefox", OS: "Windows", Device: "Desktop", Path: "/blogs/b", Referrer: "Direct", Timestamp: now},
	}
	for _, v := range visits {
		if err := s.RecordVisit(v); err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
	}

	stats, err := s.Stats(7)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalViews != 3 {
		t.Errorf("TotalViews = %d, want 3", stats.TotalViews)
	}
	if stats.UniqueVisitors != 2 {
		t.Errorf("UniqueVisitors = %d, want 2", stats.UniqueVisitors)
	}
	if len(stats.TopPages) == 0 || stats.TopPages[0].Path != "/reviews/a" {
		t.Errorf("TopPages = %v, want /reviews/a first", stats.TopPages)
	}
}

func TestDeleteOlderThan(t *testing.T) {
	s := setupTestStore(t)

	old := Visit{VisitorID: "v1", Browser: "Chrome", OS: "Linux", Device: "Desktop",
		Path: "/old", Timestamp: time.Now().AddDate(0, 0, -400)}
	fresh := Visit{VisitorID: "v1", Browser: "Chrome", OS: "Linux", Device: "Desktop",
		Path: "/fresh", Timestamp: time.Now()}
	for _, v := range []Visit{old, fresh} {
		if err := s.RecordVisit(v); err != nil {
			t.Fatalf("RecordVisit failed: %v", err)
		}
	}

	n, err := s.DeleteOlderThan(365)
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
}

func TestVisitorIDIsStable(t *testing.T) {
	s := setupTestStore(t)

	a := s.VisitorID("203.0.113.1", "ua")
	b := s.VisitorID("203.0.113.1", "ua")
	c := s.VisitorID("203.0.113.2", "ua")
	if a != b {
		t.Error("same inputs should hash to the same visitor id")
	}
	if a == c {
		t.Error("different IPs should hash differently")
	}
	if len(a) != 16 {
		t.Errorf("visitor id length = %d, want 16", len(a))
	}
}
