package workflow_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/oakmoor/scout/internal/extract"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/location"
	"github.com/oakmoor/scout/internal/search"
	"github.com/oakmoor/scout/internal/workflow"
)

type fakeResolver struct {
	outcome location.Outcome
	err     error
	calls   int
}

func (f *fakeResolver) Resolve(ctx context.Context, conversation []llm.Message) (location.Outcome, error) {
	f.calls++
	return f.outcome, f.err
}

type fakeSearcher struct {
	candidates  []search.Candidate
	err         error
	calls       int
	gotLocation string
}

func (f *fakeSearcher) Installers(ctx context.Context, loc string) ([]search.Candidate, error) {
	f.calls++
	f.gotLocation = loc
	return f.candidates, f.err
}

type fakeExtractor struct {
	records       []extract.BusinessRecord
	err           error
	calls         int
	gotCandidates []search.Candidate
}

func (f *fakeExtractor) Extract(ctx context.Context, candidates []search.Candidate) ([]extract.BusinessRecord, error) {
	f.calls++
	f.gotCandidates = candidates
	return f.records, f.err
}

func runtimeWith(r *fakeResolver, s *fakeSearcher, e *fakeExtractor) *workflow.Runtime {
	return &workflow.Runtime{
		Resolver:  r,
		Searcher:  s,
		Extractor: e,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func conversationText(ws *workflow.WorkflowState) string {
	var sb strings.Builder
	for _, m := range ws.Conversation {
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestExecuteFullPipeline(t *testing.T) {
	candidates := []search.Candidate{
		{Name: "Aqua Bathrooms", URL: "https://aqua.example.co.uk"},
		{Name: "Wetrooms Direct", URL: "https://wetrooms.example.com"},
	}
	records := []extract.BusinessRecord{
		{Name: "Aqua Bathrooms", Confidence: 0.9, SourceURL: "https://aqua.example.co.uk"},
		{Name: "Wetrooms Direct", Confidence: 0.4, SourceURL: "https://wetrooms.example.com"},
	}

	resolver := &fakeResolver{outcome: location.Outcome{Location: "Birmingham"}}
	searcher := &fakeSearcher{candidates: candidates}
	extractor := &fakeExtractor{records: records}

	input := []llm.Message{llm.UserMessage("Find bathroom installers in Birmingham")}
	ws, err := workflow.Execute(context.Background(), runtimeWith(resolver, searcher, extractor), input)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if ws.Status != workflow.StatusFinalized {
		t.Errorf("status = %s, want finalized", ws.Status)
	}
	if ws.Location != "Birmingham" {
		t.Errorf("location = %q", ws.Location)
	}
	if len(ws.Candidates) != 2 || len(ws.Records) != 2 {
		t.Errorf("candidates = %d, records = %d", len(ws.Candidates), len(ws.Records))
	}

	urls := map[string]bool{}
	for _, c := range candidates {
		urls[c.URL] = true
	}
	for _, r := range ws.Records {
		if !urls[r.SourceURL] {
			t.Errorf("record source %q not drawn from candidate set", r.SourceURL)
		}
	}

	if resolver.calls != 1 || searcher.calls != 1 || extractor.calls != 1 {
		t.Errorf("stage calls = %d/%d/%d, want 1/1/1", resolver.calls, searcher.calls, extractor.calls)
	}
	if searcher.gotLocation != "Birmingham" {
		t.Errorf("searcher saw %q", searcher.gotLocation)
	}
	if len(extractor.gotCandidates) != 2 {
		t.Errorf("extractor saw %d candidates", len(extractor.gotCandidates))
	}

	// Conversation is append-only: caller input survives as the prefix.
	if ws.Conversation[0].Content != "Find bathroom installers in Birmingham" {
		t.Errorf("conversation prefix = %q", ws.Conversation[0].Content)
	}
	text := conversationText(ws)
	for _, want := range []string{
		"I'll search for bathroom installers in Birmingham",
		"I found 2 bathroom installers in Birmingham",
		"detailed information about 2 businesses",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("conversation missing %q:\n%s", want, text)
		}
	}

	if ws.CompletedAt.Before(ws.StartedAt) {
		t.Error("completed_at precedes started_at")
	}
}

func TestExecuteNeedsClarification(t *testing.T) {
	resolver := &fakeResolver{outcome: location.Outcome{Feedback: location.FeedbackNoLocation}}
	searcher := &fakeSearcher{}
	extractor := &fakeExtractor{}

	ws, err := workflow.Execute(
		context.Background(),
		runtimeWith(resolver, searcher, extractor),
		[]llm.Message{llm.UserMessage("I need a plumber")},
	)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if ws.Status != workflow.StatusNeedsClarification {
		t.Errorf("status = %s, want needs_clarification", ws.Status)
	}
	if searcher.calls != 0 {
		t.Error("search must not run when no location was resolved")
	}
	if extractor.calls != 0 {
		t.Error("extract must not run when no location was resolved")
	}

	last := ws.Conversation[len(ws.Conversation)-1]
	if last.Role != llm.RoleAssistant || last.Content == "" {
		t.Errorf("last message = %+v, want non-empty assistant feedback", last)
	}
}

func TestExecuteEmptySearchFinalizes(t *testing.T) {
	resolver := &fakeResolver{outcome: location.Outcome{Location: "Carlisle"}}
	searcher := &fakeSearcher{candidates: []search.Candidate{}}
	extractor := &fakeExtractor{}

	ws, err := workflow.Execute(
		context.Background(),
		runtimeWith(resolver, searcher, extractor),
		[]llm.Message{llm.UserMessage("Find bathroom installers in Carlisle")},
	)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if ws.Status != workflow.StatusFinalized {
		t.Errorf("status = %s, want finalized (empty result is not an error)", ws.Status)
	}
	if extractor.calls != 0 {
		t.Error("extract must not run with zero candidates")
	}
	if len(ws.Records) != 0 {
		t.Errorf("records = %d, want 0", len(ws.Records))
	}
	if !strings.Contains(conversationText(ws), "couldn't find any confirmed bathroom installers in Carlisle") {
		t.Error("no-results message missing from conversation")
	}
}

func TestExecutePartialExtractionFinalizes(t *testing.T) {
	candidates := []search.Candidate{
		{Name: "One", URL: "https://one.example.com"},
		{Name: "Two", URL: "https://two.example.com"},
		{Name: "Three", URL: "https://three.example.com"},
	}
	// One of three candidates failed during extraction.
	records := []extract.BusinessRecord{
		{Name: "One", Confidence: 0.8, SourceURL: "https://one.example.com"},
		{Name: "Three", Confidence: 0.6, SourceURL: "https://three.example.com"},
	}

	resolver := &fakeResolver{outcome: location.Outcome{Location: "Leeds"}}
	searcher := &fakeSearcher{candidates: candidates}
	extractor := &fakeExtractor{records: records}

	ws, err := workflow.Execute(
		context.Background(),
		runtimeWith(resolver, searcher, extractor),
		[]llm.Message{llm.UserMessage("Find bathroom installers in Leeds")},
	)
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}

	if ws.Status != workflow.StatusFinalized {
		t.Errorf("status = %s, want finalized", ws.Status)
	}
	if len(ws.Records) != 2 {
		t.Errorf("records = %d, want 2", len(ws.Records))
	}
}

func TestExecuteClarificationRestartIsFreshRun(t *testing.T) {
	resolver := &fakeResolver{outcome: location.Outcome{Feedback: location.FeedbackNoLocation}}
	rt := runtimeWith(resolver, &fakeSearcher{}, &fakeExtractor{})

	first, err := workflow.Execute(context.Background(), rt, []llm.Message{llm.UserMessage("I need a plumber")})
	if err != nil {
		t.Fatalf("first Execute returned error: %v", err)
	}

	// The caller extends the conversation and starts over.
	resolver.outcome = location.Outcome{Location: "Leeds"}
	extended := append(append([]llm.Message(nil), first.Conversation...), llm.UserMessage("In Leeds"))

	second, err := workflow.Execute(context.Background(), rt, extended)
	if err != nil {
		t.Fatalf("second Execute returned error: %v", err)
	}

	if second.ID == first.ID {
		t.Error("restart must be a fresh run with a new ID")
	}
	if second.Status != workflow.StatusFinalized {
		t.Errorf("status = %s, want finalized", second.Status)
	}
	if len(second.Conversation) <= len(first.Conversation) {
		t.Error("extended conversation should carry the prior exchange")
	}
}

func TestExecuteRecordCountNeverExceedsCandidates(t *testing.T) {
	for _, n := range []int{0, 1, 4} {
		candidates := make([]search.Candidate, n)
		records := make([]extract.BusinessRecord, 0, n)
		for i := range candidates {
			url := fmt.Sprintf("https://site%d.example.com", i)
			candidates[i] = search.Candidate{Name: fmt.Sprintf("B%d", i), URL: url}
			if i%2 == 0 {
				records = append(records, extract.BusinessRecord{Name: fmt.Sprintf("B%d", i), SourceURL: url})
			}
		}

		resolver := &fakeResolver{outcome: location.Outcome{Location: "Leeds"}}
		ws, err := workflow.Execute(
			context.Background(),
			runtimeWith(resolver, &fakeSearcher{candidates: candidates}, &fakeExtractor{records: records}),
			[]llm.Message{llm.UserMessage("Find bathroom installers in Leeds")},
		)
		if err != nil {
			t.Fatalf("Execute returned error: %v", err)
		}
		if len(ws.Records) > len(ws.Candidates) {
			t.Errorf("records = %d exceeds candidates = %d", len(ws.Records), len(ws.Candidates))
		}
	}
}
