package api

import (
	"github.com/oakmoor/scout/internal/config"
	"github.com/oakmoor/scout/internal/extract"
	"github.com/oakmoor/scout/internal/fetch"
	"github.com/oakmoor/scout/internal/infrastructure"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/location"
	"github.com/oakmoor/scout/internal/search"
)

// Runtime extends Infrastructure with the workflow stage components the
// API's domain systems depend on.
type Runtime struct {
	*infrastructure.Infrastructure
	Resolver  *location.Resolver
	Searcher  *search.Searcher
	Extractor *extract.Extractor
}

// NewRuntime creates an API runtime with a module-scoped logger and the
// stage components assembled from configuration.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	logger := infra.Logger.With("module", "api")

	model := llm.NewOpenAIClient(&cfg.LLM, logger)
	tavily := search.NewTavilyClient(&cfg.Search, logger)

	var fetcher fetch.Fetcher = fetch.NewHTTPFetcher(&cfg.Fetch, logger)
	if cfg.Fetch.Provider == fetch.ProviderTavily {
		fetcher = tavily
	}

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
		},
		Resolver:  location.NewResolver(model, logger),
		Searcher:  search.NewSearcher(tavily, model, logger),
		Extractor: extract.NewExtractor(model, fetcher, cfg.Workflow.Workers, logger),
	}
}
