package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/oakmoor/scout/internal/workflow"
	"github.com/oakmoor/scout/pkg/repository"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type repo struct {
	db     *sql.DB
	rt     *workflow.Runtime
	logger *slog.Logger
}

// New creates a run repository implementing the System interface. It
// internally constructs the workflow runtime from the stage dependencies.
func New(
	db *sql.DB,
	resolver workflow.LocationResolver,
	searcher workflow.InstallerSearcher,
	extractor workflow.BusinessExtractor,
	logger *slog.Logger,
) System {
	rt := &workflow.Runtime{
		Resolver:  resolver,
		Searcher:  searcher,
		Extractor: extractor,
		Logger:    logger.With("workflow", "discovery"),
	}
	return &repo{
		db:     db,
		rt:     rt,
		logger: logger.With("system", "runs"),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Start(ctx context.Context, cmd StartCommand) (*Run, error) {
	if len(cmd.Messages) == 0 && strings.TrimSpace(cmd.Query) == "" {
		return nil, ErrEmptyRequest
	}

	ws, err := workflow.Execute(ctx, r.rt, cmd.conversation())
	if err != nil {
		return nil, fmt.Errorf("execute run: %w", err)
	}

	// The run completed; losing the row is not a reason to lose the result.
	run := fromState(ws)
	if saved, err := r.save(ctx, run); err != nil {
		r.logger.Error("run persistence failed", "id", run.ID, "error", err)
	} else {
		run = saved
	}

	r.logger.Info("run completed",
		"id", run.ID,
		"status", run.Status,
		"location", run.Location,
		"records", len(run.Records),
	)
	return run, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	q := fmt.Sprintf("SELECT %s FROM runs WHERE id = $1", runColumns)

	run, err := repository.QueryOne(ctx, r.db, q, []any{id}, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &run, nil
}

func (r *repo) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	q := fmt.Sprintf("SELECT %s FROM runs ORDER BY started_at DESC LIMIT $1", runColumns)

	items, err := repository.QueryMany(ctx, r.db, q, []any{limit}, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	return items, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, r.db, "DELETE FROM runs WHERE id = $1", id)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return nil
}

func (r *repo) save(ctx context.Context, run *Run) (*Run, error) {
	conversation, err := json.Marshal(run.Conversation)
	if err != nil {
		return nil, fmt.Errorf("marshal conversation: %w", err)
	}
	candidates, err := json.Marshal(run.Candidates)
	if err != nil {
		return nil, fmt.Errorf("marshal candidates: %w", err)
	}
	records, err := json.Marshal(run.Records)
	if err != nil {
		return nil, fmt.Errorf("marshal records: %w", err)
	}

	insertQ := fmt.Sprintf(`
		INSERT INTO runs(id, status, location, conversation, candidates, records, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, runColumns)

	insertArgs := []any{
		run.ID, run.Status, run.Location,
		conversation, candidates, records,
		run.StartedAt, run.CompletedAt,
	}

	saved, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Run, error) {
		return repository.QueryOne(ctx, tx, insertQ, insertArgs, scanRun)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	return &saved, nil
}
