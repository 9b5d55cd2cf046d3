package tools

import (
	"context"
	"fmt"
	"testing"

	"gemma/internal/types"
)

func dispatcherRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegister(&Tool{
		Name:        "ok",
		Description: "always succeeds",
		Category:    CategoryGeneral,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "done", nil
		},
	})
	reg.MustRegister(&Tool{
		Name:        "fail",
		Description: "always fails",
		Category:    CategoryGeneral,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return "", fmt.Errorf("service unavailable")
		},
	})
	reg.MustRegister(&Tool{
		Name:        "panic",
		Description: "always panics",
		Category:    CategoryGeneral,
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			panic("boom")
		},
	})
	return reg
}

func TestRunBatchFullAccounting(t *testing.T) {
	reg := dispatcherRegistry(t)

	calls := []types.ToolCall{
		{ID: "call_0", Name: "ok"},
		{ID: "call_1", Name: "fail"},
		{ID: "call_2", Name: "ok"},
	}

	responses := RunBatch(context.Background(), reg, calls)
	if len(responses) != len(calls) {
		t.Fatalf("got %d responses for %d calls", len(responses), len(calls))
	}
	for i, resp := range responses {
		if resp.ToolUseID != calls[i].ID {
			t.Errorf("response %d has ID %q, want %q", i, resp.ToolUseID, calls[i].ID)
		}
	}
	if responses[0].IsError || responses[2].IsError {
		t.Error("successful calls marked as errors")
	}
	if !responses[1].IsError {
		t.Error("failing call not marked as error")
	}
	if responses[1].Content == "" {
		t.Error("failing call has empty content")
	}
}

func TestRunBatchPanicIsContained(t *testing.T) {
	reg := dispatcherRegistry(t)

	calls := []types.ToolCall{
		{ID: "call_0", Name: "panic"},
		{ID: "call_1", Name: "ok"},
	}

	responses := RunBatch(context.Background(), reg, calls)
	if len(responses) != 2 {
		t.Fatalf("got %d responses, want 2", len(responses))
	}
	if !responses[0].IsError {
		t.Error("panicking call not marked as error")
	}
	if responses[1].IsError {
		t.Error("sibling call after panic marked as error")
	}
}

func TestRunBatchUnknownTool(t *testing.T) {
	reg := dispatcherRegistry(t)

	responses := RunBatch(context.Background(), reg, []types.ToolCall{
		{ID: "call_0", Name: "does_not_exist"},
	})
	if len(responses) != 1 {
		t.Fatalf("got %d responses, want 1", len(responses))
	}
	if !responses[0].IsError {
		t.Error("unknown tool not marked as error")
	}
}

func TestRunBatchEmpty(t *testing.T) {
	reg := dispatcherRegistry(t)
	if responses := RunBatch(context.Background(), reg, nil); len(responses) != 0 {
		t.Errorf("got %d responses for empty batch", len(responses))
	}
}
