// Package workflow orchestrates the installer discovery pipeline as an
// explicit state graph: resolve a locality, search and validate installer
// candidates, extract business profiles, and finalize. Stage-local
// failures are absorbed into state; the graph itself never loops back to
// an earlier productive stage within one run.
package workflow

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmoor/scout/internal/extract"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/search"
)

// KeyState names the workflow state entry in the graph's state bag.
const KeyState = "workflow_state"

// Status is the terminal disposition of a run.
type Status string

// Terminal statuses. A run that halts for user clarification restarts as
// a fresh run with the extended conversation, never as an internal loop.
const (
	StatusFinalized          Status = "finalized"
	StatusNeedsClarification Status = "needs_clarification"
)

// WorkflowState is the single record threaded through all stages of one
// run. It is owned by exactly one in-flight run; the conversation is
// append-only and doubles as the audit trail.
type WorkflowState struct {
	ID           uuid.UUID                `json:"id"`
	Status       Status                   `json:"status"`
	Conversation []llm.Message            `json:"conversation"`
	Location     string                   `json:"current_location,omitempty"`
	Candidates   []search.Candidate       `json:"search_results"`
	Records      []extract.BusinessRecord `json:"extracted_info"`
	StartedAt    time.Time                `json:"started_at"`
	CompletedAt  time.Time                `json:"completed_at"`
}

// Say appends an assistant progress message to the conversation.
func (ws *WorkflowState) Say(content string) {
	ws.Conversation = append(ws.Conversation, llm.AssistantMessage(content))
}

// newState seeds a WorkflowState for one run from the caller's
// conversation. The slice is copied so the run owns its state.
func newState(conversation []llm.Message) *WorkflowState {
	return &WorkflowState{
		ID:           uuid.New(),
		Conversation: append([]llm.Message(nil), conversation...),
		Candidates:   []search.Candidate{},
		Records:      []extract.BusinessRecord{},
		StartedAt:    time.Now().UTC(),
	}
}
