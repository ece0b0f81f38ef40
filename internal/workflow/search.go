package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// SearchNode returns the state node that finds validated installer
// candidates for the resolved locality. An empty candidate list is a
// routing signal, not a failure: the run finalizes with a no-results
// message appended here.
func SearchNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ws, err := extractWorkflowState(s)
		if err != nil {
			return s, fmt.Errorf("search: %w", err)
		}

		candidates, err := rt.Searcher.Installers(ctx, ws.Location)
		if err != nil {
			return s, fmt.Errorf("search: %w", err)
		}

		ws.Candidates = candidates

		if len(candidates) > 0 {
			ws.Say(fmt.Sprintf(
				"I found %d bathroom installer%s in %s. I'll now gather detailed information about each business.",
				len(candidates), plural(len(candidates)), ws.Location,
			))
		} else {
			ws.Say(fmt.Sprintf(
				"I couldn't find any confirmed bathroom installers in %s. You might want to try searching in nearby areas.",
				ws.Location,
			))
		}

		rt.Logger.InfoContext(
			ctx, "search node complete",
			"run_id", ws.ID,
			"location", ws.Location,
			"candidates", len(candidates),
		)

		return s.Set(KeyState, *ws), nil
	})
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
