package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// FinalizeNode returns the exit node. It stamps the terminal status:
// NeedsClarification when no locality was resolved, Finalized otherwise
// (including the empty-results case, which is a valid terminal value).
func FinalizeNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ws, err := extractWorkflowState(s)
		if err != nil {
			return s, fmt.Errorf("finalize: %w", err)
		}

		if ws.Location == "" {
			ws.Status = StatusNeedsClarification
		} else {
			ws.Status = StatusFinalized
		}
		ws.CompletedAt = time.Now().UTC()

		rt.Logger.InfoContext(
			ctx, "run finalized",
			"run_id", ws.ID,
			"status", ws.Status,
			"records", len(ws.Records),
			"duration", ws.CompletedAt.Sub(ws.StartedAt),
		)

		return s.Set(KeyState, *ws), nil
	})
}
