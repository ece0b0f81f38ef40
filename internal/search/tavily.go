package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrProviderFailed covers search provider errors. Callers treat a failed
// search the same as an empty one; the sentinel exists for logging and tests.
var ErrProviderFailed = errors.New("search provider failed")

// TavilyClient speaks the Tavily search and extract APIs. It implements
// Provider, and its Fetch method satisfies the content-fetch capability
// for deployments that prefer Tavily extraction over direct HTTP.
type TavilyClient struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewTavilyClient creates a client from finalized configuration.
func NewTavilyClient(cfg *Config, logger *slog.Logger) *TavilyClient {
	return &TavilyClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "tavily"),
	}
}

// Search issues a basic-depth search and maps the hits to Results.
func (t *TavilyClient) Search(ctx context.Context, query string) ([]Result, error) {
	payload := map[string]any{
		"query":        query,
		"search_depth": "basic",
		"max_results":  t.config.MaxResults,
	}

	var parsed struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}

	if err := t.post(ctx, "/search", payload, &parsed); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}

	t.logger.Debug("search completed", "query", query, "results", len(results))
	return results, nil
}

// Fetch retrieves the raw text content of a single URL via the extract
// endpoint. A URL listed under failed_results is reported as an error.
func (t *TavilyClient) Fetch(ctx context.Context, url string) (string, error) {
	payload := map[string]any{
		"urls": []string{url},
	}

	var parsed struct {
		Results []struct {
			URL        string `json:"url"`
			RawContent string `json:"raw_content"`
		} `json:"results"`
		FailedResults []struct {
			URL   string `json:"url"`
			Error string `json:"error"`
		} `json:"failed_results"`
	}

	if err := t.post(ctx, "/extract", payload, &parsed); err != nil {
		return "", err
	}

	if len(parsed.Results) == 0 || parsed.Results[0].RawContent == "" {
		if len(parsed.FailedResults) > 0 {
			return "", fmt.Errorf("%w: extract %s: %s", ErrProviderFailed, url, parsed.FailedResults[0].Error)
		}
		return "", fmt.Errorf("%w: no content extracted from %s", ErrProviderFailed, url)
	}

	return parsed.Results[0].RawContent, nil
}

func (t *TavilyClient) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: encode request: %w", ErrProviderFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: create request: %w", ErrProviderFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.config.APIKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("%w: status %d: %s", ErrProviderFailed, resp.StatusCode, detail)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrProviderFailed, err)
	}

	return nil
}
