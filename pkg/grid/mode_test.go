package grid

import (
	"testing"

	"github.com/entrhq/gridrunner/pkg/settings"
	"github.com/stretchr/testify/assert"
)

func boolPtr(b bool) *bool { return &b }

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		explicit *bool
		gridURL  string
		want     Mode
	}{
		{"no flag, empty url", nil, "", Mode{}},
		{"no flag, url given", nil, "http://grid:4444", Mode{Remote: true, URL: "http://grid:4444"}},
		{"flag true, no url", boolPtr(true), "", Mode{Remote: true, URL: DefaultGridURL}},
		{"flag true, url given", boolPtr(true), "http://grid:4444", Mode{Remote: true, URL: "http://grid:4444"}},
		{"flag false, url given", boolPtr(false), "http://grid:4444", Mode{Remote: true, URL: "http://grid:4444"}},
		{"flag false, no url", boolPtr(false), "", Mode{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.explicit, tt.gridURL)
			assert.Equal(t, tt.want, got)

			url, remote := got.EffectiveURL()
			assert.Equal(t, tt.want.Remote, remote)
			if !remote {
				assert.Empty(t, url)
			}
		})
	}
}

func TestFromSettings(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		env       map[string]string
		want      Mode
	}{
		{"nothing configured", nil, nil, Mode{}},
		{"env flag", nil, map[string]string{RemoteEnv: "TRUE"}, Mode{Remote: true, URL: DefaultGridURL}},
		{"property beats env", map[string]string{RemoteProperty: "false"}, map[string]string{RemoteEnv: "true"}, Mode{}},
		{"grid url alone", nil, map[string]string{GridURLEnv: "http://hub:4444/wd/hub"}, Mode{Remote: true, URL: "http://hub:4444/wd/hub"}},
		{"empty grid url", nil, map[string]string{GridURLEnv: ""}, Mode{}},
		{"non-true flag value", nil, map[string]string{RemoteEnv: "yes"}, Mode{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := settings.NewLookup(settings.NewMemoryStore(tt.overrides), settings.MapSource(tt.env))
			assert.Equal(t, tt.want, FromSettings(lookup, nil))
		})
	}
}

func TestHeadless(t *testing.T) {
	assert.True(t, Headless(settings.NewLookup(nil, nil)))
	assert.False(t, Headless(settings.NewLookup(nil, settings.MapSource{HeadlessName: "False"})))
	assert.True(t, Headless(settings.NewLookup(nil, settings.MapSource{HeadlessName: "no"})))
}

func TestChromeArgs(t *testing.T) {
	local := ChromeArgs(Mode{})
	assert.NotContains(t, local, "--no-sandbox")
	assert.Contains(t, local, "--disable-dev-shm-usage")

	remote := ChromeArgs(Mode{Remote: true, URL: DefaultGridURL})
	assert.Contains(t, remote, "--no-sandbox")
	assert.Contains(t, remote, "--disable-gpu")
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "local", Mode{}.String())
	assert.Equal(t, "remote", Mode{Remote: true}.String())
}
