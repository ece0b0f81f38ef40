// Package runs implements the run domain: starting installer discovery
// runs, persisting their results, and serving them back over HTTP.
package runs

import (
	"time"

	"github.com/google/uuid"

	"github.com/oakmoor/scout/internal/extract"
	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/search"
	"github.com/oakmoor/scout/internal/workflow"
)

// Run is a stored installer discovery run. It mirrors the runs table
// schema, with conversation, candidates, and records held as JSONB.
type Run struct {
	ID           uuid.UUID                `json:"id"`
	Status       workflow.Status          `json:"status"`
	Location     string                   `json:"location"`
	Conversation []llm.Message            `json:"conversation"`
	Candidates   []search.Candidate       `json:"candidates"`
	Records      []extract.BusinessRecord `json:"records"`
	StartedAt    time.Time                `json:"started_at"`
	CompletedAt  time.Time                `json:"completed_at"`
}

// StartCommand carries the input for a new run. Either Query (a single
// user message) or Messages (a prior conversation extended with the
// user's reply) must be provided; Messages wins when both are set.
type StartCommand struct {
	Query    string        `json:"query"`
	Messages []llm.Message `json:"messages"`
}

func (cmd *StartCommand) conversation() []llm.Message {
	if len(cmd.Messages) > 0 {
		return cmd.Messages
	}
	return []llm.Message{llm.UserMessage(cmd.Query)}
}

func fromState(ws *workflow.WorkflowState) *Run {
	return &Run{
		ID:           ws.ID,
		Status:       ws.Status,
		Location:     ws.Location,
		Conversation: ws.Conversation,
		Candidates:   ws.Candidates,
		Records:      ws.Records,
		StartedAt:    ws.StartedAt,
		CompletedAt:  ws.CompletedAt,
	}
}
