package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/entrhq/gridrunner/pkg/capabilities"
	"github.com/entrhq/gridrunner/pkg/grid"
	"github.com/entrhq/gridrunner/pkg/logging"
	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// SessionManager opens and tracks browser sessions for parallel test runs.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	maxSessions int
	initialized bool
	logger      *logging.Logger
}

// NewSessionManager creates a new session manager. logger may be nil.
func NewSessionManager(logger *logging.Logger) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		maxSessions: DefaultMaxSessions,
		logger:      logger,
	}
}

// Initialize installs and starts the Playwright driver.
// This must be called before creating any sessions.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.playwright = pw
	m.initialized = true
	return nil
}

// StartSession opens a session following plan. An empty name gets a
// generated one.
func (m *SessionManager) StartSession(name string, plan Plan, caps *capabilities.Set) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name == "" {
		name = uuid.New().String()
	}
	if _, exists := m.sessions[name]; exists {
		return nil, fmt.Errorf("session %q already exists", name)
	}
	if len(m.sessions) >= m.maxSessions {
		return nil, fmt.Errorf("maximum number of sessions (%d) reached", m.maxSessions)
	}
	if !m.initialized {
		return nil, fmt.Errorf("session manager not initialized")
	}

	browserType := m.browserType(plan.Engine)
	browser, err := m.open(browserType, plan)
	if err != nil {
		return nil, err
	}

	context, err := browser.NewContext(contextOptions(plan))
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	timeout := plan.DefaultTimeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	page.SetDefaultTimeout(timeout)

	session := &Session{
		Name:         name,
		Browser:      browser,
		Context:      context,
		Page:         page,
		Plan:         plan,
		Capabilities: caps,
		CreatedAt:    time.Now(),
	}
	m.sessions[name] = session

	m.logger.Infof("Started %s session %s (%s, headless=%t)", plan.Engine, name, plan.Connection, plan.Headless)
	return session, nil
}

func (m *SessionManager) browserType(engine Engine) playwright.BrowserType {
	switch engine {
	case EngineFirefox:
		return m.playwright.Firefox
	case EngineWebKit:
		return m.playwright.WebKit
	default:
		return m.playwright.Chromium
	}
}

func (m *SessionManager) open(bt playwright.BrowserType, plan Plan) (playwright.Browser, error) {
	switch plan.Connection {
	case ConnectWebSocket:
		browser, err := bt.Connect(plan.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", plan.Endpoint, err)
		}
		return browser, nil
	case ConnectCDP:
		if isWebDriverHub(plan.Endpoint) {
			m.logger.Warnf("%s is a Selenium WebDriver hub; CDP attach will likely fail. Set %s to a CDP or ws:// Playwright endpoint", plan.Endpoint, grid.GridURLEnv)
		}
		browser, err := bt.ConnectOverCDP(plan.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to connect over CDP to %s: %w", plan.Endpoint, err)
		}
		return browser, nil
	default:
		launchOpts := playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(plan.Headless),
			Args:     plan.Args,
		}
		if plan.Engine == EngineChromium {
			launchOpts.ChromiumSandbox = playwright.Bool(plan.Sandbox)
		}
		browser, err := bt.Launch(launchOpts)
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		return browser, nil
	}
}

func contextOptions(plan Plan) playwright.BrowserNewContextOptions {
	vp := plan.Viewport
	if vp == nil {
		vp = &Viewport{Width: DefaultViewportWidth, Height: DefaultViewportHeight}
	}
	opts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: vp.Width, Height: vp.Height},
	}
	if plan.TimezoneID != "" {
		opts.TimezoneId = playwright.String(plan.TimezoneID)
	}
	if plan.RecordVideoDir != "" {
		opts.RecordVideo = &playwright.RecordVideo{Dir: plan.RecordVideoDir}
	}
	return opts
}

// CloseSession closes and removes a browser session.
func (m *SessionManager) CloseSession(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[name]
	if !exists {
		return fmt.Errorf("session %q not found", name)
	}

	_ = session.Page.Close()    // Ignore errors, continue cleanup
	_ = session.Context.Close() // Ignore errors, continue cleanup
	_ = session.Browser.Close() // Ignore errors, continue cleanup

	delete(m.sessions, name)
	return nil
}

// GetSession retrieves an open session by name.
func (m *SessionManager) GetSession(name string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[name]
	if !exists {
		return nil, fmt.Errorf("session %q not found", name)
	}
	return session, nil
}

// SetMaxSessions sets the maximum number of concurrent sessions.
func (m *SessionManager) SetMaxSessions(max int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxSessions = max
}

// Shutdown closes all sessions and stops Playwright.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, session := range m.sessions {
		session.Page.Close()
		session.Context.Close()
		session.Browser.Close()
		delete(m.sessions, name)
	}

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.initialized = false
	}
	return nil
}
