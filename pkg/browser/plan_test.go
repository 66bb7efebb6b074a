package browser

import (
	"testing"

	"github.com/entrhq/gridrunner/pkg/capabilities"
	"github.com/entrhq/gridrunner/pkg/grid"
	"github.com/entrhq/gridrunner/pkg/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolveCaps(t *testing.T, overrides map[string]string) *capabilities.Set {
	t.Helper()
	lookup := settings.NewLookup(settings.NewMemoryStore(overrides), nil)
	return capabilities.NewResolver(lookup, nil).Resolve(capabilities.DefaultTable()).Set
}

func TestNewPlanLocalDefaults(t *testing.T) {
	plan, err := NewPlan(grid.Mode{}, resolveCaps(t, nil), true, "videos")
	require.NoError(t, err)

	assert.Equal(t, EngineChromium, plan.Engine)
	assert.Equal(t, ConnectLaunch, plan.Connection)
	assert.Empty(t, plan.Endpoint)
	assert.True(t, plan.Sandbox, "local sessions keep the sandbox")
	assert.NotContains(t, plan.Args, "--no-sandbox")
	assert.Equal(t, &Viewport{Width: 2560, Height: 1600}, plan.Viewport)
	assert.Equal(t, "America/Chicago", plan.TimezoneID)
	assert.Equal(t, 300000.0, plan.DefaultTimeout)
	assert.Empty(t, plan.RecordVideoDir, "recordVideo defaults to false")
}

func TestNewPlanRemote(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Connection
	}{
		{"http grid uses cdp", grid.DefaultGridURL, ConnectCDP},
		{"ws endpoint uses websocket", "ws://playwright:3000/", ConnectWebSocket},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode := grid.Select(nil, tt.url)
			plan, err := NewPlan(mode, resolveCaps(t, nil), true, "")
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.Connection)
			assert.Equal(t, tt.url, plan.Endpoint)
			assert.False(t, plan.Sandbox)
			assert.Contains(t, plan.Args, "--no-sandbox")
		})
	}
}

func TestNewPlanFromOverrides(t *testing.T) {
	caps := resolveCaps(t, map[string]string{
		"browserName":      "firefox",
		"screenResolution": "1280x960",
		"timeZone":         "Europe/Berlin",
		"recordVideo":      "true",
		"commandTimeout":   "45",
	})

	plan, err := NewPlan(grid.Mode{}, caps, false, "videos")
	require.NoError(t, err)

	assert.Equal(t, EngineFirefox, plan.Engine)
	assert.False(t, plan.Headless)
	assert.Equal(t, &Viewport{Width: 1280, Height: 960}, plan.Viewport)
	assert.Equal(t, "Europe/Berlin", plan.TimezoneID)
	assert.Equal(t, "videos", plan.RecordVideoDir)
	assert.Equal(t, 45000.0, plan.DefaultTimeout)
}

func TestNewPlanErrors(t *testing.T) {
	tests := []struct {
		name      string
		mode      grid.Mode
		overrides map[string]string
	}{
		{"unknown browser", grid.Mode{}, map[string]string{"browserName": "netscape"}},
		{"bad resolution", grid.Mode{}, map[string]string{"screenResolution": "wide"}},
		{"firefox over cdp", grid.Select(nil, "http://grid:4444"), map[string]string{"browserName": "firefox"}},
		{"bad scheme", grid.Select(nil, "ftp://grid"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPlan(tt.mode, resolveCaps(t, tt.overrides), true, "")
			assert.Error(t, err)
		})
	}
}

func TestTimezoneFor(t *testing.T) {
	assert.Equal(t, "America/New_York", timezoneFor("New York"))
	assert.Equal(t, "Asia/Tokyo", timezoneFor("Asia/Tokyo"))
	assert.Equal(t, "", timezoneFor("Atlantis"))
}

func TestContextOptions(t *testing.T) {
	opts := contextOptions(Plan{TimezoneID: "UTC", RecordVideoDir: "out"})
	require.NotNil(t, opts.Viewport)
	assert.Equal(t, DefaultViewportWidth, opts.Viewport.Width)
	require.NotNil(t, opts.TimezoneId)
	assert.Equal(t, "UTC", *opts.TimezoneId)
	require.NotNil(t, opts.RecordVideo)
	assert.Equal(t, "out", opts.RecordVideo.Dir)
}

func TestWebDriverHubEndpoints(t *testing.T) {
	assert.True(t, isWebDriverHub(grid.DefaultGridURL))
	assert.True(t, isWebDriverHub("https://grid.internal/wd/hub/"))
	assert.False(t, isWebDriverHub("http://chrome:9222"))
	assert.False(t, isWebDriverHub("ws://playwright:3000/"))
}

func TestNewPlanFirefoxOnWebDriverHub(t *testing.T) {
	remote := true
	mode := grid.Select(&remote, "")
	require.Equal(t, grid.DefaultGridURL, mode.URL)

	_, err := NewPlan(mode, resolveCaps(t, map[string]string{"browserName": "firefox"}), true, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Selenium WebDriver hub")
}
