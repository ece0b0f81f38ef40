package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oakmoor/scout/internal/config"
	"github.com/oakmoor/scout/internal/extract"
	"github.com/oakmoor/scout/internal/fetch"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/location"
	"github.com/oakmoor/scout/internal/search"
	"github.com/oakmoor/scout/internal/workflow"
	"github.com/oakmoor/scout/pkg/render"
)

var runFlags struct {
	output  string
	workers int
	quiet   bool
}

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Run an installer discovery query",
	Long: `Run a discovery query and print the conversation as it unfolds.

Usage:
  scout run "Find bathroom installers in Birmingham"
  scout run -o installers.csv "bathroom fitters near Leeds"

Requires OPENAI_API_KEY and TAVILY_API_KEY in the environment or a .env
file in the working directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runFlags.output, "output", "o", "", "Write extracted records as CSV to this file (default: stdout)")
	f.IntVar(&runFlags.workers, "workers", 0, "Concurrent extraction workers (default: from config)")
	f.BoolVarP(&runFlags.quiet, "quiet", "q", false, "Suppress progress messages; print CSV only")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if runFlags.workers > 0 {
		cfg.Workflow.Workers = runFlags.workers
	}

	logLevel := slog.LevelWarn
	if !runFlags.quiet {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	rt := buildRuntime(cfg, logger)

	query := strings.Join(args, " ")
	ws, err := workflow.Execute(cmd.Context(), rt, []llm.Message{llm.UserMessage(query)})
	if err != nil {
		return fmt.Errorf("run discovery: %w", err)
	}

	if !runFlags.quiet {
		for _, msg := range ws.Conversation[1:] {
			if msg.Role == llm.RoleAssistant {
				fmt.Fprintln(cmd.OutOrStdout(), msg.Content)
			}
		}
	}

	if ws.Status == workflow.StatusNeedsClarification {
		// Feedback was already printed; signal the caller to retry.
		os.Exit(2)
	}

	if len(ws.Records) == 0 {
		return nil
	}

	if runFlags.output != "" {
		file, err := os.Create(runFlags.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()

		if err := render.CSV(file, ws.Records); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nCSV written to: %s\n", runFlags.output)
		return nil
	}

	if !runFlags.quiet {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return render.CSV(cmd.OutOrStdout(), ws.Records)
}

func buildRuntime(cfg *config.Config, logger *slog.Logger) *workflow.Runtime {
	model := llm.NewOpenAIClient(&cfg.LLM, logger)
	tavily := search.NewTavilyClient(&cfg.Search, logger)

	var fetcher fetch.Fetcher = fetch.NewHTTPFetcher(&cfg.Fetch, logger)
	if cfg.Fetch.Provider == fetch.ProviderTavily {
		fetcher = tavily
	}

	return &workflow.Runtime{
		Resolver:  location.NewResolver(model, logger),
		Searcher:  search.NewSearcher(tavily, model, logger),
		Extractor: extract.NewExtractor(model, fetcher, cfg.Workflow.Workers, logger),
		Logger:    logger.With("workflow", "discovery"),
	}
}
