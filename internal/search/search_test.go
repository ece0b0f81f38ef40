package search_test

import (
	"testing"

	"github.com/oakmoor/scout/internal/search"
)

func TestValidURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"https", "https://aqua.example.co.uk", true},
		{"http with path", "http://example.com/bathrooms", true},
		{"missing scheme", "aqua.example.co.uk", false},
		{"relative path", "/contact", false},
		{"unsupported scheme", "ftp://example.com", false},
		{"empty", "", false},
		{"scheme only", "https://", false},
		{"garbage", "http://%zz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := search.ValidURL(tt.raw); got != tt.want {
				t.Errorf("ValidURL(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	in := []search.Candidate{
		{Name: "Aqua Bathrooms", URL: "https://aqua.example.co.uk"},
		{Name: "Duplicate Aqua", URL: "https://aqua.example.co.uk"},
		{Name: "  ", URL: "https://blank-name.example.com"},
		{Name: "No URL Installers", URL: ""},
		{Name: "Bad URL Ltd", URL: "not-a-url"},
		{Name: " Leeds Wetrooms ", URL: " https://wetrooms.example.com "},
	}

	got := search.Sanitize(in)
	if len(got) != 2 {
		t.Fatalf("Sanitize returned %d candidates, want 2: %+v", len(got), got)
	}
	if got[0].Name != "Aqua Bathrooms" || got[0].URL != "https://aqua.example.co.uk" {
		t.Errorf("first candidate = %+v", got[0])
	}
	if got[1].Name != "Leeds Wetrooms" || got[1].URL != "https://wetrooms.example.com" {
		t.Errorf("second candidate = %+v (whitespace should be trimmed)", got[1])
	}

	seen := map[string]int{}
	for _, c := range got {
		seen[c.URL]++
	}
	for url, n := range seen {
		if n > 1 {
			t.Errorf("duplicate URL survived sanitize: %s x%d", url, n)
		}
	}
}

func TestSanitizeEmpty(t *testing.T) {
	if got := search.Sanitize(nil); len(got) != 0 {
		t.Errorf("Sanitize(nil) = %+v, want empty", got)
	}
}
