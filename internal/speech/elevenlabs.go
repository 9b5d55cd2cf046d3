// Package speech provides text-to-speech via the ElevenLabs REST API.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"gemma/internal/logging"
)

// DefaultVoiceID is Gemma's voice.
const DefaultVoiceID = "uYXf8XasLslADfZ2MB4u"

// Config holds ElevenLabs client configuration.
type Config struct {
	APIKey       string
	BaseURL      string
	VoiceID      string
	ModelID      string
	OutputFormat string
	Timeout      time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:       apiKey,
		BaseURL:      "https://api.elevenlabs.io",
		VoiceID:      DefaultVoiceID,
		ModelID:      "eleven_multilingual_v2",
		OutputFormat: "mp3_44100_128",
		Timeout:      30 * time.Second,
	}
}

// Client converts text to speech audio.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new ElevenLabs client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.elevenlabs.io"
	}
	if cfg.VoiceID == "" {
		cfg.VoiceID = DefaultVoiceID
	}
	if cfg.ModelID == "" {
		cfg.ModelID = "eleven_multilingual_v2"
	}
	if cfg.OutputFormat == "" {
		cfg.OutputFormat = "mp3_44100_128"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// Enabled reports whether an API key is configured. Voice features are
// silently unavailable without one.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != ""
}

type convertRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// Convert synthesizes speech for the given text and returns MP3 audio
// bytes. An empty voiceID uses the configured default.
func (c *Client) Convert(ctx context.Context, text, voiceID string) ([]byte, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ElevenLabs API key not configured")
	}
	if text == "" {
		return nil, fmt.Errorf("no text to synthesize")
	}
	if voiceID == "" {
		voiceID = c.cfg.VoiceID
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	body, err := json.Marshal(convertRequest{
		Text:    text,
		ModelID: c.cfg.ModelID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s", c.cfg.BaseURL, voiceID, c.cfg.OutputFormat)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.SpeechError("TTS request failed with status %d: %s", resp.StatusCode, string(audio))
		return nil, fmt.Errorf("TTS request failed with status %d", resp.StatusCode)
	}

	logging.Speech("synthesized %d chars to %d bytes in %v", len(text), len(audio), time.Since(start))
	return audio, nil
}
