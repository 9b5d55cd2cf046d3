package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"gemma/internal/browser"
	"gemma/internal/chat"
	"gemma/internal/config"
	"gemma/internal/logging"
	"gemma/internal/perception"
	"gemma/internal/prompt"
	"gemma/internal/server"
	"gemma/internal/speech"
	"gemma/internal/store"
	"gemma/internal/tools"
	"gemma/internal/types"
)

// defaultOrgID identifies the single-workspace conversation. The store
// schema supports multiple organizations; the server currently runs one.
const defaultOrgID = "org_default"

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logging.Initialize(workspace); err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}
	defer logging.CloseAll()
	logging.Boot("gemma %s starting", cfg.Version)

	st, err := store.NewSQLite(cfg.Store.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	org, err := st.GetOrganization(ctx, defaultOrgID)
	if err != nil {
		return fmt.Errorf("load organization: %w", err)
	}
	if org == nil {
		if err := st.CreateOrganization(ctx, types.NewOrganization(defaultOrgID)); err != nil {
			return fmt.Errorf("create organization: %w", err)
		}
	}

	client := perception.NewGeminiClientWithConfig(perception.GeminiConfig{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		ImageModel:      cfg.LLM.ImageModel,
		Timeout:         cfg.GetLLMTimeout(),
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
		Temperature:     cfg.LLM.Temperature,
	})

	var (
		bm      *browser.SessionManager
		nav     tools.Navigator
		people  types.PeopleSearcher
		screens server.Screenshotter
	)
	if !noBrowser {
		bm = browser.NewSessionManager(browser.Config{
			Headless:            cfg.Browser.Headless,
			ViewportWidth:       cfg.Browser.ViewportWidth,
			ViewportHeight:      cfg.Browser.ViewportHeight,
			NavigationTimeoutMs: int(cfg.GetNavTimeout().Milliseconds()),
		})
		if err := bm.Start(ctx); err != nil {
			// Browser tools degrade to state-only updates.
			logging.BrowserError("browser unavailable: %v", err)
		} else {
			defer bm.Shutdown(context.Background())
			nav = bm
			people = bm
			screens = bm
		}
	}

	toolSet := tools.NewSet(nav, people, client)
	registry := tools.NewRegistry()
	toolSet.RegisterAll(registry)

	session := perception.NewSession(client, prompt.SystemPrompt, registry.Definitions())
	defer session.Close()

	ctrl := chat.NewController(defaultOrgID, session, toolSet, registry, client, st)
	if err := ctrl.Restore(ctx, st); err != nil {
		return fmt.Errorf("restore conversation: %w", err)
	}
	if err := ctrl.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize conversation: %w", err)
	}

	var synth server.Synthesizer
	if !noSpeech {
		speechCfg := speech.DefaultConfig(cfg.Speech.APIKey)
		if cfg.Speech.VoiceID != "" {
			speechCfg.VoiceID = cfg.Speech.VoiceID
		}
		if cfg.Speech.ModelID != "" {
			speechCfg.ModelID = cfg.Speech.ModelID
		}
		if cfg.Speech.OutputFormat != "" {
			speechCfg.OutputFormat = cfg.Speech.OutputFormat
		}
		speechCfg.Timeout = cfg.GetSpeechTimeout()
		synth = speech.NewClient(speechCfg)
	}

	srv := server.New(cfg, ctrl, synth, screens, registry)
	logging.Boot("serving on port %d", cfg.Server.Port)
	return srv.Run(ctx)
}
