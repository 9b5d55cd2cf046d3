package tools

import (
	"context"
	"fmt"

	"gemma/internal/logging"
	"gemma/internal/types"
)

// RunBatch executes the tool calls requested by the model, in order,
// and returns exactly one response per call. Handlers run sequentially:
// later calls in a batch may depend on earlier ones (set_org_name
// before generate_branded_letter). A failing or panicking handler
// yields an error response for its own call and never aborts siblings,
// so the model always receives a full accounting.
func RunBatch(ctx context.Context, reg *Registry, calls []types.ToolCall) []types.ToolResponse {
	responses := make([]types.ToolResponse, 0, len(calls))

	for _, call := range calls {
		resp := types.ToolResponse{
			ToolUseID: call.ID,
			ToolName:  call.Name,
		}

		if !reg.Has(call.Name) {
			logging.ToolsWarn("model requested unknown tool %q, skipping", call.Name)
			resp.Content = fmt.Sprintf("Unknown tool: %s", call.Name)
			resp.IsError = true
			responses = append(responses, resp)
			continue
		}

		result := runOne(ctx, reg, call)
		if result.Error != nil {
			logging.ToolsError("tool %s failed: %v", call.Name, result.Error)
			resp.Content = fmt.Sprintf("Error: %v", result.Error)
			resp.IsError = true
		} else {
			resp.Content = result.Result
		}
		responses = append(responses, resp)
	}

	return responses
}

// runOne executes a single call, converting a handler panic into an
// error result.
func runOne(ctx context.Context, reg *Registry, call types.ToolCall) (result *ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			logging.ToolsError("tool %s panicked: %v", call.Name, r)
			result = &ToolResult{
				ToolName: call.Name,
				Error:    fmt.Errorf("tool panicked: %v", r),
			}
		}
	}()

	result, _ = reg.Execute(ctx, call.Name, call.Input)
	return result
}
