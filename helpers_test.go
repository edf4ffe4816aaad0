package reviewpress

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Title!", "my-title"},
		{"Hello World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Multiple   spaces", "multiple-spaces"},
		{"Already-slugified-title", "already-slugified-title"},
		{"Dog Food -- Top 10 Picks!", "dog-food-top-10-picks"},
		{"Über Äpfel", "ber-pfel"},
		{"100% Natural", "100-natural"},
		{"---", ""},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"My Title!", "Dog Food -- Top 10 Picks!", "Hello World"}
	for _, in := range inputs {
		once := Slugify(in)
		twice := Slugify(once)
		if once != twice {
			t.Errorf("Slugify not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestBuildURL(t *testing.T) {
	got := BuildURL("https://example.com", "reviews", "best-dog-food")
	want := "https://example.com/reviews/best-dog-food"
	if got != want {
		t.Errorf("BuildURL = %q, want %q", got, want)
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{"a", "", "  ", "b"})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("FilterEmpty = %v, want [a b]", got)
	}
}

func TestParseFormDate(t *testing.T) {
	for _, raw := range []string{"2026-01-15", "2026-01-15 10:30:00"} {
		ts, err := parseFormDate(raw)
		if err != nil {
			t.Fatalf("parseFormDate(%q) failed: %v", raw, err)
		}
		if ts.Year() != 2026 || int(ts.Month()) != 1 || ts.Day() != 15 {
			t.Errorf("parseFormDate(%q) = %v, want 2026-01-15", raw, ts)
		}
	}
	if _, err := parseFormDate("15/01/2026"); err == nil {
		t.Error("expected error for unsupported date format")
	}
}

func TestReviewJsonLD(t *testing.T) {
	review := Review{
		Title:        "Best Dog Food",
		ProductName:  "Acme Kibble",
		ProductBrand: "Acme",
		Rating:       4.5,
		Date:         Now(),
	}
	cfg := SiteConfig{Name: "Review Site", URL: "https://example.com"}
	got := ReviewJsonLD(review, cfg)
	for _, want := range []string{`"@type":"Review"`, `"Acme Kibble"`, `"ratingValue":4.5`} {
		if !strings.Contains(got, want) {
			t.Errorf("ReviewJsonLD missing %s in %s", want, got)
		}
	}
}
