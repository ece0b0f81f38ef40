package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/prompts"
	"github.com/oakmoor/scout/pkg/formatting"
)

// refineTool lets the validating model re-run the search once with a
// sharper query before committing to a verdict.
var refineTool = llm.Tool{
	Name:        "search_installers",
	Description: "Search the web for bathroom installer businesses. Use to refine the query when the initial results are thin or off-topic.",
	Parameters: json.RawMessage(`{
		"type": "object",
		"properties": {
			"query": {"type": "string", "description": "The refined search query"}
		},
		"required": ["query"]
	}`),
}

type validationReply struct {
	Candidates []struct {
		Name        string `json:"name"`
		URL         string `json:"url"`
		IsInstaller bool   `json:"is_installer"`
		Reason      string `json:"reason"`
	} `json:"candidates"`
}

// Searcher runs the search-and-validate stage. Provider or model failures
// collapse to an empty candidate list; emptiness is a routing signal for
// the orchestrator, never an error.
type Searcher struct {
	provider Provider
	model    llm.Model
	logger   *slog.Logger
}

// NewSearcher creates a Searcher over the given capabilities.
func NewSearcher(provider Provider, model llm.Model, logger *slog.Logger) *Searcher {
	return &Searcher{
		provider: provider,
		model:    model,
		logger:   logger.With("system", "search"),
	}
}

// Installers finds validated installer candidates for location. The
// returned slice is deduplicated by URL and every candidate carries a
// non-empty name and a valid absolute URL. The only returned error is
// context cancellation.
func (s *Searcher) Installers(ctx context.Context, location string) ([]Candidate, error) {
	query := fmt.Sprintf("bathroom installers in %s", location)

	results, err := s.provider.Search(ctx, query)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("search provider failed, treating as no results", "query", query, "error", err)
		return []Candidate{}, nil
	}
	if len(results) == 0 {
		s.logger.Info("search returned no results", "query", query)
		return []Candidate{}, nil
	}

	candidates, err := s.validate(ctx, location, results)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn("validation failed, treating as no results", "location", location, "error", err)
		return []Candidate{}, nil
	}

	s.logger.Info(
		"search-and-validate complete",
		"location", location,
		"raw_results", len(results),
		"candidates", len(candidates),
	)

	return candidates, nil
}

// validate asks the model to classify raw results, allowing one tool
// round to refine the query and one retry on malformed output.
func (s *Searcher) validate(ctx context.Context, location string, results []Result) ([]Candidate, error) {
	instructions, err := prompts.Instructions(prompts.StageValidate)
	if err != nil {
		return nil, err
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		return nil, fmt.Errorf("encode results: %w", err)
	}

	messages := []llm.Message{
		llm.UserMessage(fmt.Sprintf(
			"Search results for bathroom installers in %s:\n%s",
			location, encoded,
		)),
	}

	const maxRounds = 3
	toolUsed := false
	retried := false

	for round := 0; round < maxRounds; round++ {
		resp, err := s.model.Complete(ctx, llm.Request{
			Instructions: instructions,
			Messages:     messages,
			Tools:        []llm.Tool{refineTool},
		})
		if err != nil {
			return nil, err
		}

		if len(resp.ToolCalls) > 0 {
			if toolUsed {
				return nil, fmt.Errorf("model requested a second tool round")
			}
			toolUsed = true

			messages = append(messages, llm.Message{
				Role:      llm.RoleAssistant,
				ToolCalls: resp.ToolCalls,
			})
			messages = append(messages, s.runTool(ctx, resp.ToolCalls[0]))
			continue
		}

		reply, err := formatting.Parse[validationReply](resp.Content)
		if err != nil {
			if errors.Is(err, formatting.ErrParseFailed) && !retried {
				retried = true
				messages = append(messages, llm.AssistantMessage(resp.Content))
				messages = append(messages, llm.UserMessage("Respond with only the JSON object described in your instructions."))
				continue
			}
			return nil, err
		}

		candidates := make([]Candidate, 0, len(reply.Candidates))
		for _, c := range reply.Candidates {
			if !c.IsInstaller {
				continue
			}
			candidates = append(candidates, Candidate{Name: c.Name, URL: c.URL})
		}

		return Sanitize(candidates), nil
	}

	return nil, fmt.Errorf("no parsable verdict after %d rounds", maxRounds)
}

// runTool executes a refine-search tool call and renders the outcome as a
// tool-role message. Failures are reported to the model as an empty
// result set so the round still terminates.
func (s *Searcher) runTool(ctx context.Context, call llm.ToolCall) llm.Message {
	msg := llm.Message{Role: llm.RoleTool, ToolCallID: call.ID}

	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil || args.Query == "" {
		s.logger.Warn("malformed tool arguments", "arguments", call.Arguments)
		msg.Content = "[]"
		return msg
	}

	results, err := s.provider.Search(ctx, args.Query)
	if err != nil {
		s.logger.Warn("refined search failed", "query", args.Query, "error", err)
		msg.Content = "[]"
		return msg
	}

	encoded, err := json.Marshal(results)
	if err != nil {
		msg.Content = "[]"
		return msg
	}

	msg.Content = string(encoded)
	return msg
}
