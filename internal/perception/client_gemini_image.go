package perception

import (
	"context"
	"fmt"

	"gemma/internal/logging"
)

// GenerateImage asks the image model for a single image and returns it
// as a data URI. Implements types.ImageGenerator.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: prompt}}},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:        c.temperature,
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	resp, err := c.generateContent(ctx, c.imageModel, &reqBody)
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("image generation returned no candidates")
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			logging.PerceptionDebug("[Gemini] GenerateImage: got %s payload (%d bytes base64)", part.InlineData.MIMEType, len(part.InlineData.Data))
			return fmt.Sprintf("data:%s;base64,%s", part.InlineData.MIMEType, part.InlineData.Data), nil
		}
	}
	return "", fmt.Errorf("image generation returned no image part")
}
