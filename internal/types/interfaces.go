package types

import (
	"context"
)

// LLMClient defines the interface for single-shot LLM interactions.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ChatPrompt is one user turn sent to the model. InlineImage, when set,
// carries a base64-encoded attachment (screen share, uploaded document).
type ChatPrompt struct {
	Text        string
	InlineImage string // base64 payload, no data-URI prefix
	ImageMIME   string
}

// ChatSession is a stateful multi-turn conversation with the LLM
// provider. It owns the conversation history; callers must not share a
// session between concurrent turns.
type ChatSession interface {
	// Initialize prepares the session (system prompt, empty history).
	// Must be called before the first SendMessage.
	Initialize(ctx context.Context) error

	// SendMessage appends a user turn and returns the model reply,
	// which may contain tool calls instead of (or alongside) text.
	SendMessage(ctx context.Context, prompt ChatPrompt) (*LLMToolResponse, error)

	// SendToolResults feeds executed tool results back to the model and
	// returns its follow-up reply.
	SendToolResults(ctx context.Context, results []ToolResponse) (*LLMToolResponse, error)

	// Close releases the session. The session must not be used after.
	Close() error
}

// ToolDefinition describes a tool that the LLM can invoke.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"` // JSON Schema for parameters
}

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID    string                 `json:"id"`
	Name  string                 `json:"name"`
	Input map[string]interface{} `json:"input"`
}

// ToolResponse is the per-call payload fed back to the LLM after a tool
// batch runs. Every requested call gets exactly one response, error or not.
type ToolResponse struct {
	ToolUseID string `json:"tool_use_id"` // Matches ToolCall.ID
	ToolName  string `json:"tool_name"`
	Content   string `json:"content"`
	IsError   bool   `json:"is_error"`
}

// UsageMetadata captures token usage metrics from the LLM.
type UsageMetadata struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// LLMToolResponse contains both text response and tool calls from the LLM.
type LLMToolResponse struct {
	Text       string        `json:"text"`        // May be empty if only tool calls
	ToolCalls  []ToolCall    `json:"tool_calls"`  // Ordered as requested by the model
	StopReason string        `json:"stop_reason"` // "STOP", "MAX_TOKENS", etc.
	Usage      UsageMetadata `json:"usage"`
}

// PeopleSearcher looks up a public profile for a person by full name.
// Best-effort: a nil profile with nil error means nothing was found.
type PeopleSearcher interface {
	SearchPeople(ctx context.Context, fullName string) (*PersonProfile, error)
}

// ImageGenerator produces an image for a prompt and returns it as a
// data URI.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}
