// Package server exposes the conversation over HTTP and WebSocket for
// the workspace frontend.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"gemma/internal/chat"
	"gemma/internal/config"
	"gemma/internal/logging"
	"gemma/internal/tools"
	"gemma/internal/types"
)

// Conversation is the turn-controller surface the server drives. All
// methods return a render-safe state snapshot.
type Conversation interface {
	State() chat.State
	SendMessage(ctx context.Context, prompt types.ChatPrompt) (types.Message, error)
	ChangeSection(ctx context.Context, section types.Section) chat.State
	SelectStep(ctx context.Context, step types.Step) chat.State
	AnalyzeCampaignDocument(ctx context.Context, fileName, base64Data, mimeType string) (chat.State, error)
	GenerateCampaignImages(ctx context.Context) (chat.State, error)
}

// Synthesizer converts assistant text to speech audio.
type Synthesizer interface {
	Enabled() bool
	Convert(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Screenshotter captures the shared browser view. May be nil when the
// browser is not running.
type Screenshotter interface {
	IsConnected() bool
	Screenshot(ctx context.Context) ([]byte, error)
}

// Server is the HTTP surface for one conversation workspace.
type Server struct {
	cfg     *config.Config
	router  chi.Router
	conv    Conversation
	speech  Synthesizer
	browser Screenshotter
	reg     *tools.Registry
}

// New wires the router. speech, browser and reg may be nil.
func New(cfg *config.Config, conv Conversation, speech Synthesizer, browser Screenshotter, reg *tools.Registry) *Server {
	s := &Server{
		cfg:     cfg,
		conv:    conv,
		speech:  speech,
		browser: browser,
		reg:     reg,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))
	r.Use(corsMiddleware([]string{s.cfg.Server.FrontendURL}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleGetState)
		r.Post("/message", s.handleSendMessage)
		r.Get("/steps", s.handleGetSteps)
		r.Get("/tools", s.handleGetTools)
		r.Post("/section", s.handleChangeSection)
		r.Post("/step", s.handleSelectStep)
		r.Post("/speech", s.handleSpeech)
		r.Get("/browser/screenshot", s.handleScreenshot)
		r.Route("/campaign", func(r chi.Router) {
			r.Post("/analyze", s.handleCampaignAnalyze)
			r.Post("/generate", s.handleCampaignGenerate)
		})
	})

	r.Get("/ws/chat", s.handleWebSocket)

	return r
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logging.API("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logging.API("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
