// Package location implements the location resolution stage: identify a
// single UK locality in the user's request, or produce clarification
// feedback when none can be found.
package location

import (
	"context"
	"log/slog"
	"strings"

	"github.com/oakmoor/scout/internal/llm"
	"github.com/oakmoor/scout/internal/prompts"
	"github.com/oakmoor/scout/pkg/formatting"
)

// Feedback strings surfaced to the user. Both mark the normal
// clarification branch, never an error.
const (
	FeedbackNoLocation  = "I couldn't identify a valid UK location in your request. Please specify a city or area in the UK."
	FeedbackUnavailable = "I wasn't able to process your request just now. Please try again with a UK city or area."
)

// Outcome is the result of one resolution attempt: either a locality was
// found, or Feedback explains what the user should clarify.
type Outcome struct {
	Location string `json:"location,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// Found reports whether a locality was resolved.
func (o Outcome) Found() bool {
	return o.Location != ""
}

type locationReply struct {
	Location string `json:"location"`
}

// Resolver extracts a target locality from a conversation.
type Resolver struct {
	model  llm.Model
	logger *slog.Logger
}

// NewResolver creates a Resolver over the given model.
func NewResolver(model llm.Model, logger *slog.Logger) *Resolver {
	return &Resolver{
		model:  model,
		logger: logger.With("system", "location"),
	}
}

// Resolve inspects the latest user message and returns the resolved
// locality or clarification feedback. Model failures are absorbed into a
// retry-later feedback outcome; the only returned error is context
// cancellation. No internal retry: re-asking the user is the caller's
// interaction, not a loop here.
func (r *Resolver) Resolve(ctx context.Context, conversation []llm.Message) (Outcome, error) {
	latest := llm.LastUserContent(conversation)
	if strings.TrimSpace(latest) == "" {
		return Outcome{Feedback: FeedbackNoLocation}, nil
	}

	instructions, err := prompts.Instructions(prompts.StageLocate)
	if err != nil {
		return Outcome{}, err
	}

	resp, err := r.model.Complete(ctx, llm.Request{
		Instructions: instructions,
		Messages:     []llm.Message{llm.UserMessage(latest)},
		ForceJSON:    true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		r.logger.Warn("location model call failed", "error", err)
		return Outcome{Feedback: FeedbackUnavailable}, nil
	}

	reply, err := formatting.Parse[locationReply](resp.Content)
	if err != nil {
		r.logger.Warn("unparsable location reply", "content", resp.Content)
		return Outcome{Feedback: FeedbackUnavailable}, nil
	}

	loc := strings.TrimSpace(reply.Location)
	if loc == "" {
		return Outcome{Feedback: FeedbackNoLocation}, nil
	}

	r.logger.Info("location resolved", "location", loc)
	return Outcome{Location: loc}, nil
}
