// Package perception owns the Gemini API surface: the REST client, the
// stateful chat session, and the reply transducer that turns raw model
// text into structured state signals.
package perception

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"gemma/internal/logging"
)

// GeminiClient is a REST client for the Gemini generateContent API.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	imageModel      string
	maxOutputTokens int
	temperature     float64
	httpClient      *http.Client
	mu              sync.Mutex
	lastRequest     time.Time
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-3.0-flash",
		ImageModel:      "gemini-2.5-flash-image",
		Timeout:         60 * time.Second,
		MaxOutputTokens: 8192,
		Temperature:     0.7,
	}
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(apiKey string) *GeminiClient {
	return NewGeminiClientWithConfig(DefaultGeminiConfig(apiKey))
}

// NewGeminiClientWithConfig creates a new Gemini client with custom config.
func NewGeminiClientWithConfig(config GeminiConfig) *GeminiClient {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-3.0-flash"
	}
	imageModel := strings.TrimSpace(config.ImageModel)
	if imageModel == "" {
		imageModel = "gemini-2.5-flash-image"
	}
	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = 8192
	}
	temperature := config.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeminiClient{
		apiKey:          config.APIKey,
		baseURL:         config.BaseURL,
		model:           model,
		imageModel:      imageModel,
		maxOutputTokens: maxOutputTokens,
		temperature:     temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Model returns the configured chat model name.
func (c *GeminiClient) Model() string {
	return c.model
}

// Complete sends a prompt and returns the completion.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		reqBody.SystemInstruction = &GeminiContent{
			Parts: []GeminiPart{{Text: systemPrompt}},
		}
	}

	resp, err := c.generateContent(ctx, c.model, &reqBody)
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

// generateContent posts a request to the given model with rate limiting
// and bounded retry on transient failures.
func (c *GeminiClient) generateContent(ctx context.Context, model string, reqBody *GeminiRequest) (*GeminiResponse, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.PerceptionDebug("[Gemini] generateContent: model=%s contents=%d tools=%d", model, len(reqBody.Contents), len(reqBody.Tools))

	if c.apiKey == "" {
		logging.PerceptionError("[Gemini] generateContent: API key not configured")
		return nil, fmt.Errorf("API key not configured")
	}

	// Rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// Retry loop for rate limits and transient transport errors
	maxRetries := 3
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			time.Sleep(time.Duration(1<<uint(i-1)) * time.Second)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limit exceeded (429)")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}

		var geminiResp GeminiResponse
		if err := json.Unmarshal(body, &geminiResp); err != nil {
			return nil, fmt.Errorf("failed to parse response: %w", err)
		}

		if geminiResp.Error != nil {
			return nil, fmt.Errorf("API error: %s", geminiResp.Error.Message)
		}

		logging.PerceptionDebug("[Gemini] generateContent: done in %v tokens=%d", time.Since(startTime), geminiResp.UsageMetadata.TotalTokenCount)
		return &geminiResp, nil
	}

	logging.PerceptionError("[Gemini] generateContent: exhausted retries: %v", lastErr)
	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, lastErr)
}

// firstText concatenates the text parts of the first candidate.
func firstText(resp *GeminiResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
