// Package tools provides the function-calling surface exposed to the
// model: a thread-safe registry of tool definitions and the batch
// dispatcher that executes requested calls and accounts for every one.
package tools

import (
	"context"

	"gemma/internal/types"
)

// ToolCategory classifies tools for logging and introspection.
type ToolCategory string

const (
	// CategoryNavigation covers browser and wizard navigation.
	CategoryNavigation ToolCategory = "/navigation"

	// CategoryOrganization covers org identity and board roster changes.
	CategoryOrganization ToolCategory = "/organization"

	// CategoryBranding covers palette and branded-asset generation.
	CategoryBranding ToolCategory = "/branding"

	// CategoryGeneral is for tools that fit no other category.
	CategoryGeneral ToolCategory = "/general"
)

// Property describes a single parameter property for JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Enum        []any  `json:"enum,omitempty"`
}

// ToolSchema defines the JSON schema for tool arguments.
type ToolSchema struct {
	// Required lists parameters that must be provided.
	Required []string `json:"required"`

	// Properties describes each parameter.
	Properties map[string]Property `json:"properties"`
}

// ExecuteFunc is the signature for tool execution.
// Returns the result string and any error.
type ExecuteFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool defines one function the model may call.
type Tool struct {
	// Name is the unique identifier for the tool, as declared to the
	// model.
	Name string

	// Description explains what the tool does. Sent to the model with
	// the declaration.
	Description string

	// Category classifies the tool.
	Category ToolCategory

	// Execute runs the tool with the given arguments.
	Execute ExecuteFunc

	// Schema defines the expected arguments.
	Schema ToolSchema
}

// Validate checks if the tool definition is valid.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return ErrToolNameEmpty
	}
	if t.Execute == nil {
		return ErrToolExecuteNil
	}
	return nil
}

// Definition converts the tool into the wire declaration sent to the
// model.
func (t *Tool) Definition() types.ToolDefinition {
	props := make(map[string]interface{}, len(t.Schema.Properties))
	for name, p := range t.Schema.Properties {
		prop := map[string]interface{}{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		props[name] = prop
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": props,
	}
	if len(t.Schema.Required) > 0 {
		schema["required"] = t.Schema.Required
	}
	return types.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: schema,
	}
}

// ToolResult wraps the result of tool execution with metadata.
type ToolResult struct {
	// ToolName identifies which tool was executed.
	ToolName string

	// Result is the human-readable output fed back to the model.
	Result string

	// Error holds the execution failure, if any.
	Error error

	// DurationMs is the wall-clock execution time.
	DurationMs int64
}
