// Package llm defines the language-model capability consumed by the
// workflow components and provides an OpenAI-compatible chat client.
// Components depend on the Model interface so tests can substitute a
// deterministic fake.
package llm

import (
	"context"
	"encoding/json"
)

// Message roles used in conversations.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is a single conversation entry. ToolCalls is populated on
// assistant messages that request tool invocations; ToolCallID links a
// tool-role message back to the call it answers.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Tool describes a function the model may invoke. Parameters is a JSON
// schema object.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// ToolCall is a model-requested tool invocation. Arguments is the raw
// JSON argument object as produced by the model.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Request carries one completion invocation. Instructions becomes the
// system message. When ForceJSON is set the model is constrained to emit
// a single JSON object.
type Request struct {
	Instructions string
	Messages     []Message
	Tools        []Tool
	ForceJSON    bool
}

// Response is the model's reply: either content, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Model is the language-understanding capability. Implementations must
// honor context cancellation and apply their own per-call timeout.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// UserMessage is a convenience constructor for user-role messages.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage is a convenience constructor for assistant-role messages.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// LastUserContent returns the content of the most recent user message,
// or "" when the conversation holds none.
func LastUserContent(conversation []Message) string {
	for i := len(conversation) - 1; i >= 0; i-- {
		if conversation[i].Role == RoleUser {
			return conversation[i].Content
		}
	}
	return ""
}
