package extract_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/oakmoor/scout/internal/extract"
	"github.com/oakmoor/scout/internal/fetch"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/search"
)

type fakeFetcher struct {
	mu      sync.Mutex
	fetched []string
	pages   map[string]string
	fail    map[string]bool
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	if f.fail[url] {
		return "", fmt.Errorf("%w: status 503 for %s", fetch.ErrFetchFailed, url)
	}
	if page, ok := f.pages[url]; ok {
		return page, nil
	}
	return "Bathroom installation specialists. Call 0113 496 0000.", nil
}

// echoModel builds a structured reply from the candidate line of the input.
type echoModel struct {
	mu        sync.Mutex
	calls     int
	badRounds int
	replies   map[string]string
}

func (m *echoModel) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	m.mu.Lock()
	m.calls++
	bad := m.badRounds > 0
	if bad {
		m.badRounds--
	}
	m.mu.Unlock()

	if bad {
		return &llm.Response{Content: "let me think about that"}, nil
	}

	input := req.Messages[0].Content
	for key, reply := range m.replies {
		if strings.Contains(input, key) {
			return &llm.Response{Content: reply}, nil
		}
	}
	return &llm.Response{Content: `{"name": "", "confidence": 0.4}`}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func candidates(urls ...string) []search.Candidate {
	out := make([]search.Candidate, len(urls))
	for i, u := range urls {
		out[i] = search.Candidate{Name: fmt.Sprintf("Business %d", i+1), URL: u}
	}
	return out
}

func TestExtractRecordsPerCandidate(t *testing.T) {
	fetcher := &fakeFetcher{}
	model := &echoModel{replies: map[string]string{
		"https://one.example.com": `{"name": "Aqua Bathrooms", "phones": ["0113 496 0000"], "emails": ["hi@aqua.example"], "address": "1 Canal St, Leeds", "services": ["wetrooms", "tiling", "Wetrooms"], "years_in_business": 12, "confidence": 0.9}`,
		"https://two.example.com": `{"name": "", "confidence": 0.2}`,
	}}

	cands := candidates("https://one.example.com", "https://two.example.com")
	records, err := extract.NewExtractor(model, fetcher, 4, discard()).Extract(context.Background(), cands)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	first := records[0]
	if first.Name != "Aqua Bathrooms" {
		t.Errorf("name = %q", first.Name)
	}
	if first.SourceURL != "https://one.example.com" {
		t.Errorf("source_url = %q", first.SourceURL)
	}
	if len(first.Services) != 2 {
		t.Errorf("services = %v, want case-insensitive dedupe to 2", first.Services)
	}

	// Empty extracted name falls back to the candidate name.
	if records[1].Name != "Business 2" {
		t.Errorf("fallback name = %q", records[1].Name)
	}
}

func TestExtractPartialFailureIsolation(t *testing.T) {
	fetcher := &fakeFetcher{fail: map[string]bool{"https://two.example.com": true}}
	model := &echoModel{}

	cands := candidates("https://one.example.com", "https://two.example.com", "https://three.example.com")
	records, err := extract.NewExtractor(model, fetcher, 2, discard()).Extract(context.Background(), cands)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (failed fetch skipped)", len(records))
	}
	for _, r := range records {
		if r.SourceURL == "https://two.example.com" {
			t.Errorf("record present for failed candidate: %+v", r)
		}
	}

	// Order stabilized to candidate order.
	if records[0].SourceURL != "https://one.example.com" || records[1].SourceURL != "https://three.example.com" {
		t.Errorf("order = %q, %q", records[0].SourceURL, records[1].SourceURL)
	}
}

func TestExtractOutputNeverExceedsInput(t *testing.T) {
	fetcher := &fakeFetcher{}
	model := &echoModel{}

	for _, n := range []int{0, 1, 5} {
		urls := make([]string, n)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://site%d.example.com", i)
		}
		records, err := extract.NewExtractor(model, fetcher, 3, discard()).Extract(context.Background(), candidates(urls...))
		if err != nil {
			t.Fatalf("Extract returned error: %v", err)
		}
		if len(records) > n {
			t.Errorf("records = %d for %d candidates", len(records), n)
		}
	}
}

func TestExtractMalformedOutputRetriedOnce(t *testing.T) {
	fetcher := &fakeFetcher{}
	model := &echoModel{
		badRounds: 1,
		replies: map[string]string{
			"https://one.example.com": `{"name": "Aqua Bathrooms", "confidence": 0.5}`,
		},
	}

	records, err := extract.NewExtractor(model, fetcher, 1, discard()).Extract(context.Background(), candidates("https://one.example.com"))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1 after retry", len(records))
	}
	if model.calls != 2 {
		t.Errorf("model calls = %d, want 2", model.calls)
	}
}

func TestExtractPersistentlyMalformedSkipped(t *testing.T) {
	fetcher := &fakeFetcher{}
	model := &echoModel{badRounds: 2}

	records, err := extract.NewExtractor(model, fetcher, 1, discard()).Extract(context.Background(), candidates("https://one.example.com"))
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("records = %+v, want candidate skipped", records)
	}
	if model.calls != 2 {
		t.Errorf("model calls = %d, want exactly one retry", model.calls)
	}
}

func TestExtractConfidenceClamped(t *testing.T) {
	fetcher := &fakeFetcher{}
	model := &echoModel{replies: map[string]string{
		"https://one.example.com": `{"name": "A", "confidence": 1.7}`,
		"https://two.example.com": `{"name": "B", "confidence": -0.3}`,
	}}

	records, err := extract.NewExtractor(model, fetcher, 2, discard()).Extract(
		context.Background(),
		candidates("https://one.example.com", "https://two.example.com"),
	)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	for _, r := range records {
		if r.Confidence < 0 || r.Confidence > 1 {
			t.Errorf("confidence %f outside [0,1] for %s", r.Confidence, r.SourceURL)
		}
	}
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	model := &echoModel{}

	_, err := extract.NewExtractor(model, fetcher, 2, discard()).Extract(ctx, candidates("https://one.example.com"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
