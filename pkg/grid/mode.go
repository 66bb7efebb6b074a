// Package grid decides whether a browser session runs on a local driver or on
// a remote Selenium-compatible grid.
package grid

import (
	"strings"

	"github.com/entrhq/gridrunner/pkg/logging"
	"github.com/entrhq/gridrunner/pkg/settings"
)

// DefaultGridURL is used when remote execution is requested without a URL.
const DefaultGridURL = "http://localhost:4444/wd/hub"

// Setting names read by FromSettings.
const (
	RemoteProperty = "selenide.remote"
	RemoteEnv      = "SELENIDE_REMOTE"
	GridURLEnv     = "SELENIUM_REMOTE_URL"
	HeadlessName   = "headless"
)

// Mode is the execution target for one session.
type Mode struct {
	Remote bool

	// URL is the grid endpoint; empty for local sessions
	URL string
}

// EffectiveURL returns the grid URL and whether the session is remote.
func (m Mode) EffectiveURL() (string, bool) {
	return m.URL, m.Remote
}

// String returns "remote" or "local".
func (m Mode) String() string {
	if m.Remote {
		return "remote"
	}
	return "local"
}

// Select picks the execution mode. A session is remote when explicitly
// requested or when a grid URL is given; a remote session without a URL uses
// DefaultGridURL. An absent gridURL and an empty one are treated the same.
func Select(explicitRemote *bool, gridURL string) Mode {
	remote := (explicitRemote != nil && *explicitRemote) || gridURL != ""
	if !remote {
		return Mode{}
	}
	if gridURL == "" {
		gridURL = DefaultGridURL
	}
	return Mode{Remote: true, URL: gridURL}
}

// FromSettings reads the remote flag and grid URL through lookup and selects
// the mode. The flag is taken from selenide.remote, then SELENIDE_REMOTE, and
// only a case-insensitive "true" enables it.
func FromSettings(lookup *settings.Lookup, logger *logging.Logger) Mode {
	var explicit *bool
	for _, name := range []string{RemoteProperty, RemoteEnv} {
		if raw, ok := lookup.Get(name).Get(); ok {
			flag := strings.EqualFold(strings.TrimSpace(raw), "true")
			explicit = &flag
			break
		}
	}

	mode := Select(explicit, lookup.Get(GridURLEnv).String())
	if mode.Remote {
		logger.Infof("Using remote WebDriver (Selenium Grid) at %s", mode.URL)
	} else {
		logger.Infof("Using local browser driver")
	}
	return mode
}

// Headless reports whether sessions should run headless. Anything other than
// a case-insensitive "false" keeps the default of true.
func Headless(lookup *settings.Lookup) bool {
	return !strings.EqualFold(strings.TrimSpace(lookup.GetOr(HeadlessName, "true")), "false")
}

// ChromeArgs returns the Chromium command-line switches for mode. The sandbox
// stays enabled for local runs and is disabled only inside remote containers.
func ChromeArgs(mode Mode) []string {
	args := []string{"--disable-dev-shm-usage", "--disable-gpu"}
	if mode.Remote {
		args = append(args, "--no-sandbox")
	}
	return args
}
