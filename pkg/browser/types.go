package browser

import (
	"time"

	"github.com/entrhq/gridrunner/pkg/capabilities"
	"github.com/playwright-community/playwright-go"
)

// Session represents an open browser session with its associated resources.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated session)
	Context playwright.BrowserContext

	// Page is the current active page
	Page playwright.Page

	// Plan is the launch plan the session was opened with
	Plan Plan

	// Capabilities is the resolved capability set for this session
	Capabilities *capabilities.Set

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for sessions
const (
	DefaultTimeout        = 30000.0 // 30 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 5
)
