// Package search implements the search-and-validate stage: query the web
// search capability for installer businesses in a locality, then filter
// the raw hits down to plausible installer sites.
package search

import (
	"context"
	"net/url"
	"strings"
)

// Result is one raw hit from the search capability.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider is the web-search capability.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}

// Candidate is a search hit that passed the installer-vs-noise filter.
type Candidate struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ValidURL reports whether raw is a syntactically valid absolute
// http(s) URL.
func ValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Sanitize drops candidates with empty names or invalid URLs and
// deduplicates by URL, keeping the first occurrence. Order is otherwise
// preserved.
func Sanitize(candidates []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]Candidate, 0, len(candidates))

	for _, c := range candidates {
		c.Name = strings.TrimSpace(c.Name)
		c.URL = strings.TrimSpace(c.URL)
		if c.Name == "" || !ValidURL(c.URL) {
			continue
		}
		if _, dup := seen[c.URL]; dup {
			continue
		}
		seen[c.URL] = struct{}{}
		out = append(out, c)
	}

	return out
}
