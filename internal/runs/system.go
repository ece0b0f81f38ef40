package runs

import (
	"context"

	"github.com/google/uuid"
)

// System defines the run domain operations.
type System interface {
	// Start executes a discovery run for the command's conversation and
	// persists the result.
	Start(ctx context.Context, cmd StartCommand) (*Run, error)
	// Find returns a stored run by ID.
	Find(ctx context.Context, id uuid.UUID) (*Run, error)
	// List returns the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]Run, error)
	// Delete removes a stored run by ID.
	Delete(ctx context.Context, id uuid.UUID) error
	// Handler returns the HTTP handler for this system.
	Handler() *Handler
}
