package workflow

import (
	"context"
	"fmt"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"
)

// ExtractNode returns the state node that fans out over the validated
// candidates and collects structured business records. Per-candidate
// failures have already been absorbed by the extractor; whatever was
// collected is the result, even when empty.
func ExtractNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ws, err := extractWorkflowState(s)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		records, err := rt.Extractor.Extract(ctx, ws.Candidates)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		ws.Records = records

		if len(records) > 0 {
			contacts := 0
			for _, r := range records {
				if len(r.Phones) > 0 || len(r.Emails) > 0 {
					contacts++
				}
			}
			ws.Say(fmt.Sprintf(
				"I've gathered detailed information about %d business%s, including contact details for %d.",
				len(records), pluralES(len(records)), contacts,
			))
		} else {
			ws.Say("I wasn't able to extract detailed information from any of the installer websites. This might be due to website accessibility issues.")
		}

		rt.Logger.InfoContext(
			ctx, "extract node complete",
			"run_id", ws.ID,
			"candidates", len(ws.Candidates),
			"records", len(records),
		)

		return s.Set(KeyState, *ws), nil
	})
}

func pluralES(n int) string {
	if n == 1 {
		return ""
	}
	return "es"
}
