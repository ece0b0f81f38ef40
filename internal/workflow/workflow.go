package workflow

import (
	"context"
	"fmt"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/oakmoor/scout/internal/llm"
)

// Execute runs one installer discovery run over the given conversation.
// It builds the state graph (locate → search? → extract? → finalize),
// seeds it with a fresh WorkflowState, executes it, and extracts the
// terminal state. Resuming after clarification is a fresh call with the
// extended conversation.
func Execute(ctx context.Context, rt *Runtime, conversation []llm.Message) (*WorkflowState, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initial := state.New(nil).Set(KeyState, *newState(conversation))

	final, err := graph.Execute(ctx, initial)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractWorkflowState(final)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("installer-discovery")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("locate", LocateNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("search", SearchNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("extract", ExtractNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	// locate → search (locality resolved)
	if err := graph.AddEdge("locate", "search", locationFound); err != nil {
		return nil, err
	}

	// locate → finalize (clarification needed; search never runs)
	if err := graph.AddEdge("locate", "finalize", state.Not(locationFound)); err != nil {
		return nil, err
	}

	// search → extract (validated candidates exist)
	if err := graph.AddEdge("search", "extract", hasCandidates); err != nil {
		return nil, err
	}

	// search → finalize (empty result is a valid terminal value)
	if err := graph.AddEdge("search", "finalize", state.Not(hasCandidates)); err != nil {
		return nil, err
	}

	// extract → finalize (unconditional, regardless of per-candidate skips)
	if err := graph.AddEdge("extract", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("locate"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractWorkflowState(s state.State) (*WorkflowState, error) {
	val, ok := s.Get(KeyState)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s", ErrMissingState, KeyState)
	}

	ws, ok := val.(WorkflowState)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not WorkflowState", ErrInvalidState, KeyState)
	}

	return &ws, nil
}

func locationFound(s state.State) bool {
	ws, err := extractWorkflowState(s)
	if err != nil {
		return false
	}
	return ws.Location != ""
}

func hasCandidates(s state.State) bool {
	ws, err := extractWorkflowState(s)
	if err != nil {
		return false
	}
	return len(ws.Candidates) > 0
}
