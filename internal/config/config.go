// Package config handles Gemma's configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Speech  SpeechConfig  `yaml:"speech"`
	Browser BrowserConfig `yaml:"browser"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Port        int    `yaml:"port"`
	FrontendURL string `yaml:"frontend_url"` // allowed CORS / websocket origin
}

// LLMConfig holds Gemini API settings.
type LLMConfig struct {
	APIKey          string  `yaml:"api_key"`
	BaseURL         string  `yaml:"base_url"`
	Model           string  `yaml:"model"`
	ImageModel      string  `yaml:"image_model"`
	Timeout         string  `yaml:"timeout"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	Temperature     float64 `yaml:"temperature"`
}

// SpeechConfig holds ElevenLabs text-to-speech settings.
type SpeechConfig struct {
	APIKey       string `yaml:"api_key"`
	VoiceID      string `yaml:"voice_id"`
	ModelID      string `yaml:"model_id"`
	OutputFormat string `yaml:"output_format"`
	Timeout      string `yaml:"timeout"`
}

// BrowserConfig holds the embedded browser automation settings.
type BrowserConfig struct {
	Headless       bool   `yaml:"headless"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	NavTimeout     string `yaml:"nav_timeout"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// LoggingConfig mirrors the logging section; the file-based category
// loggers read their own config from .gemma/config.json at runtime.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "Gemma",
		Version: "1.0.0",

		Server: ServerConfig{
			Port:        8090,
			FrontendURL: "http://localhost:5173",
		},

		LLM: LLMConfig{
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Model:           "gemini-3.0-flash",
			ImageModel:      "gemini-2.5-flash-image",
			Timeout:         "60s",
			MaxOutputTokens: 8192,
			Temperature:     0.7,
		},

		Speech: SpeechConfig{
			VoiceID:      "uYXf8XasLslADfZ2MB4u",
			ModelID:      "eleven_multilingual_v2",
			OutputFormat: "mp3_44100_128",
			Timeout:      "30s",
		},

		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 800,
			NavTimeout:     "30s",
		},

		Store: StoreConfig{
			DatabasePath: "data/gemma.db",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
	}
	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		c.Speech.APIKey = key
	}
	if port := os.Getenv("PORT"); port != "" {
		if n, err := parsePort(port); err == nil {
			c.Server.Port = n
		}
	}
	if url := os.Getenv("FRONTEND_URL"); url != "" {
		c.Server.FrontendURL = url
	}
	if path := os.Getenv("GEMMA_DB"); path != "" {
		c.Store.DatabasePath = path
	}
}

func parsePort(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n < 1 || n > 65535 {
		return 0, fmt.Errorf("port out of range: %d", n)
	}
	return n, nil
}

// GetLLMTimeout returns the LLM timeout as a duration.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetSpeechTimeout returns the text-to-speech timeout as a duration.
func (c *Config) GetSpeechTimeout() time.Duration {
	d, err := time.ParseDuration(c.Speech.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetNavTimeout returns the browser navigation timeout as a duration.
func (c *Config) GetNavTimeout() time.Duration {
	d, err := time.ParseDuration(c.Browser.NavTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("Gemini API key not configured (set GEMINI_API_KEY)")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM model not configured")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	return nil
}
