package search_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/search"
)

type fakeProvider struct {
	queries []string
	results map[string][]search.Result
	err     error
}

func (f *fakeProvider) Search(ctx context.Context, query string) ([]search.Result, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	return []search.Result{
		{Title: "Aqua Bathrooms | Home", URL: "https://aqua.example.co.uk", Snippet: "Bathroom fitting in Leeds"},
		{Title: "Top 10 installers (directory)", URL: "https://directory.example.com", Snippet: "compare quotes"},
	}, nil
}

// fakeModel replays scripted responses in order.
type fakeModel struct {
	responses []llm.Response
	requests  []llm.Request
	err       error
}

func (f *fakeModel) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, fmt.Errorf("fake model exhausted")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return &resp, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const verdictJSON = `{"candidates": [
	{"name": "Aqua Bathrooms", "url": "https://aqua.example.co.uk", "is_installer": true, "reason": "dedicated installer site"},
	{"name": "Top 10 installers", "url": "https://directory.example.com", "is_installer": false, "reason": "directory"}
]}`

func TestInstallersFiltersAndDedupes(t *testing.T) {
	provider := &fakeProvider{}
	model := &fakeModel{responses: []llm.Response{{Content: verdictJSON}}}

	got, err := search.NewSearcher(provider, model, discard()).Installers(context.Background(), "Leeds")
	if err != nil {
		t.Fatalf("Installers returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %+v, want exactly the installer hit", got)
	}
	if got[0].Name != "Aqua Bathrooms" || got[0].URL != "https://aqua.example.co.uk" {
		t.Errorf("candidate = %+v", got[0])
	}

	if len(provider.queries) != 1 || provider.queries[0] != "bathroom installers in Leeds" {
		t.Errorf("provider queries = %v", provider.queries)
	}
	if len(model.requests) != 1 {
		t.Fatalf("model calls = %d, want 1", len(model.requests))
	}
	if len(model.requests[0].Tools) != 1 {
		t.Errorf("validator should offer the search tool, got %d tools", len(model.requests[0].Tools))
	}
}

func TestInstallersToolRefineRound(t *testing.T) {
	provider := &fakeProvider{results: map[string][]search.Result{
		"bathroom fitters Leeds city centre": {
			{Title: "Wetrooms Leeds", URL: "https://wetrooms.example.com", Snippet: "installers"},
		},
	}}
	model := &fakeModel{responses: []llm.Response{
		{ToolCalls: []llm.ToolCall{{
			ID:        "call_1",
			Name:      "search_installers",
			Arguments: `{"query": "bathroom fitters Leeds city centre"}`,
		}}},
		{Content: `{"candidates": [{"name": "Wetrooms Leeds", "url": "https://wetrooms.example.com", "is_installer": true, "reason": "installer"}]}`,
		},
	}}

	got, err := search.NewSearcher(provider, model, discard()).Installers(context.Background(), "Leeds")
	if err != nil {
		t.Fatalf("Installers returned error: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://wetrooms.example.com" {
		t.Fatalf("candidates = %+v", got)
	}

	if len(provider.queries) != 2 {
		t.Fatalf("provider queries = %v, want original plus refined", provider.queries)
	}
	if provider.queries[1] != "bathroom fitters Leeds city centre" {
		t.Errorf("refined query = %q", provider.queries[1])
	}

	// Second model call must carry the tool result back.
	last := model.requests[1].Messages
	found := false
	for _, m := range last {
		if m.Role == llm.RoleTool && m.ToolCallID == "call_1" {
			found = true
		}
	}
	if !found {
		t.Error("tool result message missing from follow-up request")
	}
}

func TestInstallersMalformedOutputRetriedOnce(t *testing.T) {
	provider := &fakeProvider{}
	model := &fakeModel{responses: []llm.Response{
		{Content: "Sure, these all look legitimate to me!"},
		{Content: verdictJSON},
	}}

	got, err := search.NewSearcher(provider, model, discard()).Installers(context.Background(), "Leeds")
	if err != nil {
		t.Fatalf("Installers returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %+v", got)
	}
	if len(model.requests) != 2 {
		t.Errorf("model calls = %d, want 2 (one bounded retry)", len(model.requests))
	}
}

func TestInstallersProviderFailureIsEmptyNotError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream 503")}
	model := &fakeModel{}

	got, err := search.NewSearcher(provider, model, discard()).Installers(context.Background(), "Leeds")
	if err != nil {
		t.Fatalf("Installers returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %+v, want empty", got)
	}
	if len(model.requests) != 0 {
		t.Error("validation should be skipped when search fails")
	}
}

func TestInstallersModelFailureIsEmptyNotError(t *testing.T) {
	provider := &fakeProvider{}
	model := &fakeModel{err: llm.ErrCompletionFailed}

	got, err := search.NewSearcher(provider, model, discard()).Installers(context.Background(), "Leeds")
	if err != nil {
		t.Fatalf("Installers returned error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %+v, want empty", got)
	}
}

func TestInstallersCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &fakeProvider{err: ctx.Err()}
	model := &fakeModel{}

	_, err := search.NewSearcher(provider, model, discard()).Installers(ctx, "Leeds")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
