// Package config loads the optional YAML run file and applies it to the
// override store.
package config

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"

	"github.com/entrhq/gridrunner/pkg/build"
	"github.com/entrhq/gridrunner/pkg/capabilities"
	"github.com/entrhq/gridrunner/pkg/grid"
	"github.com/entrhq/gridrunner/pkg/sauce"
	"github.com/entrhq/gridrunner/pkg/settings"
	"gopkg.in/yaml.v3"
)

// RunConfig is the optional YAML run file. Everything in it is applied to the
// override store, so it ranks with other overrides above the environment.
type RunConfig struct {
	// Overrides are capability or setting overrides, by name
	Overrides map[string]string `yaml:"overrides" json:"overrides"`

	// Grid selects the execution target
	Grid GridConfig `yaml:"grid" json:"grid"`

	// Sauce holds job-tracking credentials
	Sauce SauceConfig `yaml:"sauce" json:"sauce"`

	// Headless toggles headless browsers; nil keeps the default
	Headless *bool `yaml:"headless" json:"headless"`

	// BuildSources replaces the default build identifier probe order
	BuildSources []build.Source `yaml:"build_sources" json:"build_sources"`
}

// GridConfig configures remote execution.
type GridConfig struct {
	Remote *bool  `yaml:"remote" json:"remote"`
	URL    string `yaml:"url" json:"url"`
}

// SauceConfig configures the job-tracking client.
type SauceConfig struct {
	Username   string `yaml:"username" json:"username"`
	AccessKey  string `yaml:"access_key" json:"access_key"`
	DataCenter string `yaml:"data_center" json:"data_center"`
}

// Setting names for Sauce credentials.
const (
	SauceUsernameSetting  = "SAUCE_USERNAME"
	SauceAccessKeySetting = "SAUCE_ACCESS_KEY"
)

// LoadRunConfig reads and validates a YAML run file.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run config: %w", err)
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse run config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the run config.
func (c *RunConfig) Validate() error {
	if c.Grid.URL != "" {
		u, err := url.Parse(c.Grid.URL)
		if err != nil {
			return fmt.Errorf("invalid grid url: %w", err)
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return fmt.Errorf("invalid grid url scheme %q (must be http, https, ws or wss)", u.Scheme)
		}
	}

	// Unknown data centers are not rejected; the client falls back at construction

	seen := make(map[string]bool)
	for i, src := range c.BuildSources {
		if src.Variable == "" {
			return fmt.Errorf("build source %d: variable is required", i)
		}
		if seen[src.Variable] {
			return fmt.Errorf("build source %d: duplicate variable %s", i, src.Variable)
		}
		seen[src.Variable] = true
	}

	return nil
}

// Sources returns the configured build sources, or the defaults.
func (c *RunConfig) Sources() []build.Source {
	if len(c.BuildSources) == 0 {
		return build.DefaultSources()
	}
	out := make([]build.Source, len(c.BuildSources))
	for i, src := range c.BuildSources {
		if src.Label == "" {
			src.Label = src.Variable
		}
		out[i] = src
	}
	return out
}

// Apply writes every configured value into store.
func (c *RunConfig) Apply(store settings.Store) {
	names := make([]string, 0, len(c.Overrides))
	for name := range c.Overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		store.Set(name, c.Overrides[name])
	}

	if c.Grid.Remote != nil {
		store.Set(grid.RemoteProperty, strconv.FormatBool(*c.Grid.Remote))
	}
	if c.Grid.URL != "" {
		store.Set(grid.GridURLEnv, c.Grid.URL)
	}
	if c.Headless != nil {
		store.Set(grid.HeadlessName, strconv.FormatBool(*c.Headless))
	}
	if c.Sauce.Username != "" {
		store.Set(SauceUsernameSetting, c.Sauce.Username)
	}
	if c.Sauce.AccessKey != "" {
		store.Set(SauceAccessKeySetting, c.Sauce.AccessKey)
	}
	if c.Sauce.DataCenter != "" {
		store.Set(sauce.DataCenterSetting, c.Sauce.DataCenter)
	}
}

// Credentials reads Sauce credentials and region through lookup.
// SAUCE_USERNAME and SAUCE_ACCESS_KEY win; otherwise the account comes from
// the session's userName and accessKey capabilities. The table's placeholder
// defaults are not an account and resolve to "".
func Credentials(lookup *settings.Lookup) sauce.Credentials {
	return sauce.Credentials{
		Username:   credential(lookup, SauceUsernameSetting, capabilities.UserNameCapability, capabilities.DefaultUserName),
		AccessKey:  credential(lookup, SauceAccessKeySetting, capabilities.AccessKeyCapability, capabilities.DefaultAccessKey),
		DataCenter: lookup.GetOr(sauce.DataCenterSetting, sauce.DefaultDataCenterName),
	}
}

func credential(lookup *settings.Lookup, setting, capability, placeholder string) string {
	if v := lookup.GetOr(setting, ""); v != "" {
		return v
	}
	if v := lookup.GetOr(capability, ""); v != placeholder {
		return v
	}
	return ""
}
