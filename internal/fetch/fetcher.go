// Package fetch provides the web-content capability: given a URL, return
// the page's readable text. Failures are reported per URL so callers can
// skip a page without aborting a batch.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrFetchFailed covers every per-URL failure class: network errors,
// timeouts, non-2xx responses, and unparseable content.
var ErrFetchFailed = errors.New("fetch failed")

// Fetcher is the content-fetch capability.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher retrieves pages directly over HTTP and reduces the HTML to
// readable text.
type HTTPFetcher struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewHTTPFetcher creates a fetcher from finalized configuration.
func NewHTTPFetcher(cfg *Config, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		config: cfg,
		client: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "fetch"),
	}
}

// Fetch executes a GET request against url and returns the page text.
// The response body is capped at MaxBodyBytes before parsing.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: status %d for %s", ErrFetchFailed, resp.StatusCode, url)
	}

	body := io.LimitReader(resp.Body, f.config.MaxBodyBytes)
	text, err := ExtractText(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	if text == "" {
		return "", fmt.Errorf("%w: no readable text at %s", ErrFetchFailed, url)
	}

	f.logger.Debug("page fetched", "url", url, "chars", len(text))
	return text, nil
}

// ExtractText parses HTML and returns its visible text with collapsed
// whitespace. Script, style, and markup-only elements are discarded.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	doc.Find("script, style, noscript, iframe, svg").Remove()

	var sb strings.Builder
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		sb.WriteString(title)
		sb.WriteString("\n")
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	sb.WriteString(body.Text())

	return strings.Join(strings.Fields(sb.String()), " "), nil
}
