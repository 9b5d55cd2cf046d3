package tools

import (
	"context"
	"errors"
	"testing"
)

func echoTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "echoes its input",
		Category:    CategoryGeneral,
		Schema: ToolSchema{
			Required: []string{"text"},
			Properties: map[string]Property{
				"text": {Type: "string", Description: "text to echo"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (string, error) {
			return args["text"].(string), nil
		},
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(echoTool("echo")); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if !reg.Has("echo") {
		t.Error("registered tool not found")
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want 1", reg.Count())
	}

	err := reg.Register(echoTool("echo"))
	if !errors.Is(err, ErrToolAlreadyRegistered) {
		t.Errorf("duplicate register error = %v, want ErrToolAlreadyRegistered", err)
	}
}

func TestRegistryRejectsInvalidTool(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(&Tool{Execute: func(ctx context.Context, args map[string]any) (string, error) { return "", nil }}); !errors.Is(err, ErrToolNameEmpty) {
		t.Errorf("error = %v, want ErrToolNameEmpty", err)
	}
	if err := reg.Register(&Tool{Name: "broken"}); !errors.Is(err, ErrToolExecuteNil) {
		t.Errorf("error = %v, want ErrToolExecuteNil", err)
	}
}

func TestRegistryExecute(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoTool("echo"))

	result, err := reg.Execute(context.Background(), "echo", map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Result != "hello" {
		t.Errorf("Result = %q", result.Result)
	}
	if result.ToolName != "echo" {
		t.Errorf("ToolName = %q", result.ToolName)
	}
}

func TestRegistryExecuteMissingTool(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Execute(context.Background(), "nope", nil)
	if !errors.Is(err, ErrToolNotFound) {
		t.Errorf("error = %v, want ErrToolNotFound", err)
	}
}

func TestRegistryValidatesRequiredArgs(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoTool("echo"))

	result, err := reg.Execute(context.Background(), "echo", map[string]any{})
	if !errors.Is(err, ErrMissingRequiredArg) {
		t.Errorf("error = %v, want ErrMissingRequiredArg", err)
	}
	if result == nil || result.Error == nil {
		t.Error("expected a result carrying the validation error")
	}
}

func TestDefinitionsStableOrder(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(echoTool("zeta"))
	reg.MustRegister(echoTool("alpha"))

	defs := reg.Definitions()
	if len(defs) != 2 || defs[0].Name != "alpha" || defs[1].Name != "zeta" {
		t.Errorf("Definitions order = %v", []string{defs[0].Name, defs[1].Name})
	}
	schema := defs[0].InputSchema
	if schema["type"] != "object" {
		t.Errorf("schema type = %v", schema["type"])
	}
}
