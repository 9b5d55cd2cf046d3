// Package browser owns the headless Chrome instance behind the
// embedded browser pane and the people-search lookups.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"gemma/internal/logging"
)

// Session describes the public metadata for a tracked browser page.
type Session struct {
	ID         string    `json:"id"`
	URL        string    `json:"url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	LastActive time.Time `json:"last_active"`
}

type sessionRecord struct {
	meta Session
	page *rod.Page
}

// Config holds browser configuration.
type Config struct {
	Headless            bool `json:"headless"`
	ViewportWidth       int  `json:"viewport_width"`
	ViewportHeight      int  `json:"viewport_height"`
	NavigationTimeoutMs int  `json:"navigation_timeout_ms"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Headless:            true,
		ViewportWidth:       1280,
		ViewportHeight:      800,
		NavigationTimeoutMs: 30000,
	}
}

// GetViewportWidth returns viewport width.
func (c Config) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1280
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c Config) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 800
	}
	return c.ViewportHeight
}

// NavigationTimeout returns the navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// SessionManager owns the Chrome instance and tracks active pages.
// The browser is launched lazily on first use.
type SessionManager struct {
	cfg        Config
	mu         sync.RWMutex
	browser    *rod.Browser
	sessions   map[string]*sessionRecord
	mainID     string // session backing the embedded pane
	controlURL string
}

// NewSessionManager creates a new session manager.
func NewSessionManager(cfg Config) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		sessions: make(map[string]*sessionRecord),
	}
}

// Start launches Chrome and connects to it.
func (m *SessionManager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Verify an existing browser is still alive before reusing it
	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		logging.BrowserWarn("stale browser connection, relaunching")
		_ = m.browser.Close()
		m.browser = nil
		m.controlURL = ""
		m.sessions = make(map[string]*sessionRecord)
		m.mainID = ""
	}

	controlURL, err := launcher.New().Headless(m.cfg.Headless).Launch()
	if err != nil {
		return fmt.Errorf("launch chrome: %w", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	m.browser = browser
	m.controlURL = controlURL
	logging.Browser("browser started (headless=%v)", m.cfg.Headless)
	return nil
}

func (m *SessionManager) ensureStarted(ctx context.Context) error {
	m.mu.RLock()
	if m.browser != nil {
		m.mu.RUnlock()
		return nil
	}
	m.mu.RUnlock()
	return m.Start(ctx)
}

// IsConnected returns whether the browser is connected.
func (m *SessionManager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.browser != nil
}

// Shutdown closes tracked pages and the browser.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, record := range m.sessions {
		if record.page != nil {
			_ = record.page.Close()
		}
		delete(m.sessions, id)
	}
	m.mainID = ""

	var err error
	if m.browser != nil {
		err = m.browser.Close()
		m.browser = nil
	}
	m.controlURL = ""
	logging.Browser("browser shut down")
	return err
}

// List returns metadata for all known sessions.
func (m *SessionManager) List() []Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]Session, 0, len(m.sessions))
	for _, record := range m.sessions {
		results = append(results, record.meta)
	}
	return results
}

// CreateSession opens a new incognito page and tracks it.
func (m *SessionManager) CreateSession(ctx context.Context, url string) (*Session, error) {
	if err := m.ensureStarted(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.browser == nil {
		return nil, errors.New("browser not connected")
	}

	incognito, err := m.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.GetViewportWidth(),
		Height:            m.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		logging.BrowserWarn("viewport override failed: %v", err)
	}

	now := time.Now()
	record := &sessionRecord{
		meta: Session{
			ID:         uuid.NewString(),
			URL:        url,
			CreatedAt:  now,
			LastActive: now,
		},
		page: page,
	}
	m.sessions[record.meta.ID] = record

	logging.BrowserDebug("created session %s for %s", record.meta.ID, url)
	meta := record.meta
	return &meta, nil
}

// CloseSession closes and forgets one session.
func (m *SessionManager) CloseSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.sessions[sessionID]
	if !ok {
		return fmt.Errorf("unknown session: %s", sessionID)
	}
	delete(m.sessions, sessionID)
	if m.mainID == sessionID {
		m.mainID = ""
	}
	if record.page != nil {
		return record.page.Close()
	}
	return nil
}

// Navigate drives the embedded pane's page to a URL, creating the page
// on first use. Implements the tool navigator.
func (m *SessionManager) Navigate(ctx context.Context, url string) error {
	if err := m.ensureStarted(ctx); err != nil {
		return err
	}

	m.mu.RLock()
	record := m.sessions[m.mainID]
	m.mu.RUnlock()

	if record == nil {
		session, err := m.CreateSession(ctx, url)
		if err != nil {
			return err
		}
		m.mu.Lock()
		m.mainID = session.ID
		m.mu.Unlock()
		return nil
	}

	page := record.page.Context(ctx).Timeout(m.cfg.NavigationTimeout())
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		logging.BrowserWarn("page load wait for %s: %v", url, err)
	}

	m.mu.Lock()
	record.meta.URL = url
	record.meta.LastActive = time.Now()
	m.mu.Unlock()

	logging.BrowserDebug("navigated main session to %s", url)
	return nil
}

// Screenshot captures the embedded pane's page as PNG.
func (m *SessionManager) Screenshot(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	record := m.sessions[m.mainID]
	m.mu.RUnlock()

	if record == nil {
		return nil, errors.New("no active page to capture")
	}

	page := record.page.Context(ctx)
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot: %w", err)
	}
	return data, nil
}
