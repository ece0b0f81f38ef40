package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/oakmoor/scout/internal/fetch"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/prompts"
	"github.com/oakmoor/scout/internal/search"
	"github.com/oakmoor/scout/pkg/formatting"
)

// maxContentChars caps the page text handed to the model per candidate.
const maxContentChars = 16000

// Extractor fans fetch-and-extract work out over candidates with bounded
// concurrency. Candidates are independent: one candidate's failure is
// recorded and skipped without touching the rest of the batch.
type Extractor struct {
	model   llm.Model
	fetcher fetch.Fetcher
	workers int
	logger  *slog.Logger
}

// NewExtractor creates an Extractor. workers bounds the fan-out; values
// below one fall back to serial processing.
func NewExtractor(model llm.Model, fetcher fetch.Fetcher, workers int, logger *slog.Logger) *Extractor {
	return &Extractor{
		model:   model,
		fetcher: fetcher,
		workers: workers,
		logger:  logger.With("system", "extract"),
	}
}

// Extract produces at most one BusinessRecord per candidate, in candidate
// order. Fetch failures and unrecoverable extraction failures drop only
// the affected candidate. The only returned error is context cancellation.
func (e *Extractor) Extract(ctx context.Context, candidates []search.Candidate) ([]BusinessRecord, error) {
	if len(candidates) == 0 {
		return []BusinessRecord{}, nil
	}

	instructions, err := prompts.Instructions(prompts.StageExtract)
	if err != nil {
		return nil, err
	}

	slots := make([]*BusinessRecord, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(e.workers, len(candidates)))

	for i, candidate := range candidates {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			record, err := e.extractOne(gctx, instructions, candidate)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				e.logger.Warn(
					"candidate skipped",
					"name", candidate.Name,
					"url", candidate.URL,
					"error", err,
				)
				return nil
			}

			slots[i] = record
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]BusinessRecord, 0, len(candidates))
	for _, r := range slots {
		if r != nil {
			records = append(records, *r)
		}
	}

	e.logger.Info(
		"extraction complete",
		"candidates", len(candidates),
		"records", len(records),
	)

	return records, nil
}

// extractOne fetches a candidate's page and extracts its profile,
// retrying the model call once when the structured output is malformed.
func (e *Extractor) extractOne(ctx context.Context, instructions string, candidate search.Candidate) (*BusinessRecord, error) {
	text, err := e.fetcher.Fetch(ctx, candidate.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	if len(text) > maxContentChars {
		text = text[:maxContentChars]
	}

	input := llm.UserMessage(fmt.Sprintf(
		"Business: %s\nWebsite: %s\n\nPage text:\n%s",
		candidate.Name, candidate.URL, text,
	))

	var record BusinessRecord
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := e.model.Complete(ctx, llm.Request{
			Instructions: instructions,
			Messages:     []llm.Message{input},
			ForceJSON:    true,
		})
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}

		record, err = formatting.Parse[BusinessRecord](resp.Content)
		if err == nil {
			break
		}
		if !errors.Is(err, formatting.ErrParseFailed) || attempt == 1 {
			return nil, fmt.Errorf("extract: %w", err)
		}
	}

	if record.Name == "" {
		record.Name = candidate.Name
	}
	record.SourceURL = candidate.URL
	record.normalize()

	return &record, nil
}

func workerCount(workers, candidates int) int {
	return max(min(workers, candidates), 1)
}
