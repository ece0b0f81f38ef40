package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/oakmoor/scout/internal/config"
	"github.com/oakmoor/scout/internal/runs"
	"github.com/oakmoor/scout/pkg/database"
	"github.com/oakmoor/scout/pkg/render"
)

var historyFlags struct {
	limit  int
	csvID  string
	output string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored runs, or export one as CSV",
	Long: `List recent discovery runs stored by the server, newest first.

Usage:
  scout history
  scout history --limit 10
  scout history --csv <run-id> -o installers.csv`,
	RunE: runHistory,
}

func init() {
	f := historyCmd.Flags()
	f.IntVar(&historyFlags.limit, "limit", 20, "Maximum number of runs to list")
	f.StringVar(&historyFlags.csvID, "csv", "", "Export the run with this ID as CSV instead of listing")
	f.StringVarP(&historyFlags.output, "output", "o", "", "Write CSV to this file (default: stdout)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Connection().Close()

	// Read-only access; no workflow stages are needed.
	sys := runs.New(db.Connection(), nil, nil, nil, logger)

	if historyFlags.csvID != "" {
		return exportCSV(cmd, sys)
	}

	items, err := sys.List(cmd.Context(), historyFlags.limit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored runs.")
		return nil
	}

	for _, run := range items {
		location := run.Location
		if location == "" {
			location = "-"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-20s %-24s %3d records  %s\n",
			run.ID, run.Status, location, len(run.Records),
			run.StartedAt.Format("2006-01-02 15:04"),
		)
	}
	return nil
}

func exportCSV(cmd *cobra.Command, sys runs.System) error {
	id, err := uuid.Parse(historyFlags.csvID)
	if err != nil {
		return fmt.Errorf("invalid run id: %w", err)
	}

	run, err := sys.Find(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("find run: %w", err)
	}

	if historyFlags.output != "" {
		file, err := os.Create(historyFlags.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer file.Close()
		return render.CSV(file, run.Records)
	}

	return render.CSV(cmd.OutOrStdout(), run.Records)
}
