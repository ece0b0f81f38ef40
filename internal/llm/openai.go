package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Capability errors. Timeouts are classified separately so callers can
// treat them like any other upstream failure at the call site.
var (
	ErrCompletionFailed = errors.New("completion failed")
	ErrTimeout          = errors.New("completion timed out")
)

// OpenAIClient speaks the OpenAI-compatible chat completions API. It
// applies a per-call timeout and retries transient failures with
// exponential backoff.
type OpenAIClient struct {
	config *Config
	client *http.Client
	logger *slog.Logger
}

// NewOpenAIClient creates a client from finalized configuration.
func NewOpenAIClient(cfg *Config, logger *slog.Logger) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.TimeoutDuration()},
		logger: logger.With("system", "llm"),
	}
}

type chatMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCalls  []chatToolCall `json:"tool_calls,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type chatToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type chatTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Parameters  json.RawMessage `json:"parameters"`
	} `json:"function"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	Tools          []chatTool     `json:"tools,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one chat completion request. Transient failures (network
// errors, 5xx, 429) are retried up to MaxRetries times; context expiry is
// returned as ErrTimeout immediately.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.TimeoutDuration())
	defer cancel()

	body, err := json.Marshal(c.buildPayload(req))
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %w", ErrCompletionFailed, err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(200*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrTimeout
			}
		}

		resp, retryable, err := c.attempt(ctx, body)
		if err == nil {
			return resp, nil
		}
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrTimeout
		}
		lastErr = err
		if !retryable {
			break
		}
		c.logger.Warn("completion attempt failed", "attempt", attempt+1, "error", err)
	}

	return nil, fmt.Errorf("%w: %w", ErrCompletionFailed, lastErr)
}

func (c *OpenAIClient) attempt(ctx context.Context, body []byte) (*Response, bool, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.config.BaseURL+"/chat/completions",
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.Token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= http.StatusInternalServerError ||
			resp.StatusCode == http.StatusTooManyRequests
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, retryable, fmt.Errorf("status %d: %s", resp.StatusCode, payload)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, false, fmt.Errorf("api error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, false, fmt.Errorf("no choices in response")
	}

	msg := parsed.Choices[0].Message
	out := &Response{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return out, false, nil
}

func (c *OpenAIClient) buildPayload(req Request) chatRequest {
	payload := chatRequest{
		Model:       c.config.Model,
		Temperature: c.config.Temperature,
	}

	if req.Instructions != "" {
		payload.Messages = append(payload.Messages, chatMessage{
			Role:    RoleSystem,
			Content: req.Instructions,
		})
	}

	for _, m := range req.Messages {
		cm := chatMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			ctc := chatToolCall{ID: tc.ID, Type: "function"}
			ctc.Function.Name = tc.Name
			ctc.Function.Arguments = tc.Arguments
			cm.ToolCalls = append(cm.ToolCalls, ctc)
		}
		payload.Messages = append(payload.Messages, cm)
	}

	for _, t := range req.Tools {
		ct := chatTool{Type: "function"}
		ct.Function.Name = t.Name
		ct.Function.Description = t.Description
		ct.Function.Parameters = t.Parameters
		payload.Tools = append(payload.Tools, ct)
	}

	if req.ForceJSON {
		payload.ResponseFormat = map[string]any{"type": "json_object"}
	}

	return payload
}
