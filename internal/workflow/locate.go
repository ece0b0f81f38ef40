package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// LocateNode returns the state node that resolves the target locality
// from the conversation. When no locality can be resolved, the feedback
// message is appended and the run routes straight to finalize, halting
// for user clarification.
func LocateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ws, err := extractWorkflowState(s)
		if err != nil {
			return s, fmt.Errorf("locate: %w", err)
		}

		outcome, err := rt.Resolver.Resolve(ctx, ws.Conversation)
		if err != nil {
			return s, fmt.Errorf("locate: %w", err)
		}

		if outcome.Found() {
			ws.Location = outcome.Location
			ws.Say(fmt.Sprintf(
				"I'll search for bathroom installers in %s. Please wait while I gather the information.",
				outcome.Location,
			))
		} else {
			ws.Say(outcome.Feedback)
		}

		rt.Logger.InfoContext(
			ctx, "locate node complete",
			"run_id", ws.ID,
			"found", outcome.Found(),
			"location", ws.Location,
		)

		return s.Set(KeyState, *ws), nil
	})
}
