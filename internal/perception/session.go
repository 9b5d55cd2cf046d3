package perception

import (
	"context"
	"fmt"

	"gemma/internal/logging"
	"gemma/internal/types"
)

// Session is a stateful multi-turn Gemini conversation. It owns the
// full contents history and replays it on every request (the REST API
// is stateless). Not safe for concurrent use; the turn controller
// serializes access.
type Session struct {
	client *GeminiClient
	system string
	tools  []types.ToolDefinition

	history []GeminiContent
	closed  bool
}

// NewSession creates a chat session with the given system instruction
// and tool declarations.
func NewSession(client *GeminiClient, systemPrompt string, tools []types.ToolDefinition) *Session {
	return &Session{
		client: client,
		system: systemPrompt,
		tools:  tools,
	}
}

// Initialize prepares the session for the first message.
func (s *Session) Initialize(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("session has no client")
	}
	s.history = s.history[:0]
	s.closed = false
	logging.Session("initialized chat session: model=%s tools=%d", s.client.Model(), len(s.tools))
	return nil
}

// SendMessage appends a user turn and returns the model reply.
func (s *Session) SendMessage(ctx context.Context, prompt types.ChatPrompt) (*types.LLMToolResponse, error) {
	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}

	parts := []GeminiPart{{Text: prompt.Text}}
	if prompt.InlineImage != "" {
		mime := prompt.ImageMIME
		if mime == "" {
			mime = "image/png"
		}
		parts = append(parts, GeminiPart{InlineData: &GeminiInlineData{
			MIMEType: mime,
			Data:     prompt.InlineImage,
		}})
	}
	s.history = append(s.history, GeminiContent{Role: "user", Parts: parts})

	return s.generate(ctx)
}

// SendToolResults feeds executed tool results back to the model and
// returns its follow-up reply. One function response part is sent per
// result, in the order given.
func (s *Session) SendToolResults(ctx context.Context, results []types.ToolResponse) (*types.LLMToolResponse, error) {
	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no tool results to send")
	}

	parts := make([]GeminiPart, 0, len(results))
	for _, r := range results {
		payload := map[string]interface{}{"result": r.Content}
		if r.IsError {
			payload = map[string]interface{}{"error": r.Content}
		}
		parts = append(parts, GeminiPart{FunctionResponse: &GeminiFunctionResponse{
			Name:     r.ToolName,
			Response: payload,
		}})
	}
	s.history = append(s.history, GeminiContent{Role: "function", Parts: parts})

	return s.generate(ctx)
}

// Close releases the session.
func (s *Session) Close() error {
	s.closed = true
	s.history = nil
	logging.Session("closed chat session")
	return nil
}

// generate posts the accumulated history and folds the model's answer
// back into it.
func (s *Session) generate(ctx context.Context) (*types.LLMToolResponse, error) {
	reqBody := GeminiRequest{
		Contents: s.history,
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     s.client.temperature,
			MaxOutputTokens: s.client.maxOutputTokens,
		},
	}
	if s.system != "" {
		reqBody.SystemInstruction = &GeminiContent{
			Parts: []GeminiPart{{Text: s.system}},
		}
	}
	if len(s.tools) > 0 {
		decls := make([]GeminiFunctionDeclaration, 0, len(s.tools))
		for _, t := range s.tools {
			decls = append(decls, GeminiFunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			})
		}
		reqBody.Tools = []GeminiTool{{FunctionDeclarations: decls}}
	}

	resp, err := s.client.generateContent(ctx, s.client.model, &reqBody)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from model")
	}

	candidate := resp.Candidates[0]
	s.history = append(s.history, candidate.Content)

	out := &types.LLMToolResponse{
		StopReason: candidate.FinishReason,
		Usage: types.UsageMetadata{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		},
	}
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			out.Text += part.Text
		}
		if part.FunctionCall != nil {
			out.ToolCalls = append(out.ToolCalls, types.ToolCall{
				ID:    fmt.Sprintf("call_%d", len(out.ToolCalls)),
				Name:  part.FunctionCall.Name,
				Input: part.FunctionCall.Args,
			})
		}
	}

	logging.SessionDebug("model reply: text_len=%d tool_calls=%d stop=%s", len(out.Text), len(out.ToolCalls), out.StopReason)
	return out, nil
}
