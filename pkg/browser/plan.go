package browser

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/entrhq/gridrunner/pkg/capabilities"
	"github.com/entrhq/gridrunner/pkg/grid"
)

// Engine is a Playwright browser engine.
type Engine string

const (
	EngineChromium Engine = "chromium"
	EngineFirefox  Engine = "firefox"
	EngineWebKit   Engine = "webkit"
)

// Connection says how a remote browser is reached.
type Connection string

const (
	// ConnectLaunch starts a local browser
	ConnectLaunch Connection = "launch"
	// ConnectWebSocket attaches to a Playwright server over ws/wss
	ConnectWebSocket Connection = "websocket"
	// ConnectCDP attaches to a Chromium endpoint over http/https
	ConnectCDP Connection = "cdp"
)

// Plan is everything needed to open one session, derived from the execution
// mode and the resolved capability set.
type Plan struct {
	Engine     Engine
	Connection Connection
	Endpoint   string
	Headless   bool
	Args       []string
	Sandbox    bool
	Viewport   *Viewport

	// TimezoneID is an IANA zone; empty leaves the browser default
	TimezoneID string

	// DefaultTimeout is in milliseconds
	DefaultTimeout float64

	// RecordVideoDir is set only when recordVideo resolved to true
	RecordVideoDir string
}

// Sauce uses city names for timeZone; Playwright wants IANA zones.
var cityZones = map[string]string{
	"chicago":     "America/Chicago",
	"new_york":    "America/New_York",
	"denver":      "America/Denver",
	"los_angeles": "America/Los_Angeles",
	"london":      "Europe/London",
	"berlin":      "Europe/Berlin",
	"paris":       "Europe/Paris",
	"tokyo":       "Asia/Tokyo",
	"sydney":      "Australia/Sydney",
	"utc":         "UTC",
}

// NewPlan derives a launch plan. videoDir is used only when the recordVideo
// capability is true.
func NewPlan(mode grid.Mode, caps *capabilities.Set, headless bool, videoDir string) (Plan, error) {
	engine, err := engineFor(caps.String("browserName"))
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Engine:     engine,
		Connection: ConnectLaunch,
		Headless:   headless,
		Args:       grid.ChromeArgs(mode),
		Sandbox:    !mode.Remote,
		TimezoneID: timezoneFor(caps.String("timeZone")),
	}

	if mode.Remote {
		conn, err := connectionFor(mode.URL, engine)
		if err != nil {
			return Plan{}, err
		}
		plan.Connection = conn
		plan.Endpoint = mode.URL
	}

	if res := caps.String("screenResolution"); res != "" {
		vp, err := parseResolution(res)
		if err != nil {
			return Plan{}, err
		}
		plan.Viewport = vp
	}

	if secs, ok := caps.Int("commandTimeout"); ok && secs > 0 {
		plan.DefaultTimeout = float64(secs) * 1000
	}

	if record, ok := caps.Bool("recordVideo"); ok && record {
		plan.RecordVideoDir = videoDir
	}

	return plan, nil
}

func engineFor(browserName string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(browserName)) {
	case "", "chrome", "chromium", "microsoftedge", "edge":
		return EngineChromium, nil
	case "firefox":
		return EngineFirefox, nil
	case "safari", "webkit":
		return EngineWebKit, nil
	default:
		return "", fmt.Errorf("unsupported browserName %q", browserName)
	}
}

func connectionFor(endpoint string, engine Engine) (Connection, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid grid url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
		return ConnectWebSocket, nil
	case "http", "https":
		if engine != EngineChromium {
			if isWebDriverHub(endpoint) {
				return "", fmt.Errorf("%s cannot attach to %s: it is a Selenium WebDriver hub, use a ws:// Playwright server", engine, endpoint)
			}
			return "", fmt.Errorf("%s cannot attach to %s over CDP", engine, endpoint)
		}
		return ConnectCDP, nil
	default:
		return "", fmt.Errorf("unsupported grid url scheme %q", u.Scheme)
	}
}

// isWebDriverHub reports whether endpoint looks like a Selenium hub
// (.../wd/hub), which speaks WebDriver rather than CDP.
func isWebDriverHub(endpoint string) bool {
	u, err := url.Parse(endpoint)
	if err != nil {
		return false
	}
	return strings.HasSuffix(strings.TrimSuffix(u.Path, "/"), "/wd/hub")
}

func timezoneFor(zone string) string {
	zone = strings.TrimSpace(zone)
	if zone == "" || strings.Contains(zone, "/") {
		return zone
	}
	return cityZones[strings.ToLower(strings.ReplaceAll(zone, " ", "_"))]
}

func parseResolution(res string) (*Viewport, error) {
	w, h, ok := strings.Cut(strings.ToLower(res), "x")
	if !ok {
		return nil, fmt.Errorf("invalid screenResolution %q", res)
	}
	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || width <= 0 {
		return nil, fmt.Errorf("invalid screenResolution width %q", res)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || height <= 0 {
		return nil, fmt.Errorf("invalid screenResolution height %q", res)
	}
	return &Viewport{Width: width, Height: height}, nil
}
