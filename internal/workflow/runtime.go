package workflow

import (
	"context"
	"log/slog"

	"github.com/oakmoor/scout/internal/extract"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/location"
	"github.com/oakmoor/scout/internal/search"
)

// LocationResolver is the location resolution stage.
type LocationResolver interface {
	Resolve(ctx context.Context, conversation []llm.Message) (location.Outcome, error)
}

// InstallerSearcher is the search-and-validate stage.
type InstallerSearcher interface {
	Installers(ctx context.Context, location string) ([]search.Candidate, error)
}

// BusinessExtractor is the content-extraction stage.
type BusinessExtractor interface {
	Extract(ctx context.Context, candidates []search.Candidate) ([]extract.BusinessRecord, error)
}

// Runtime bundles the stage dependencies that workflow nodes require.
// It is constructed by composition code from configured capability
// clients, or from fakes in tests.
type Runtime struct {
	Resolver  LocationResolver
	Searcher  InstallerSearcher
	Extractor BusinessExtractor
	Logger    *slog.Logger
}
