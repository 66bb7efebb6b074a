// Package harness runs the per-session setup and teardown sequence: pick the
// execution mode, resolve capabilities, and report the verdict afterwards.
package harness

import (
	"context"

	"github.com/entrhq/gridrunner/pkg/build"
	"github.com/entrhq/gridrunner/pkg/capabilities"
	"github.com/entrhq/gridrunner/pkg/config"
	"github.com/entrhq/gridrunner/pkg/grid"
	"github.com/entrhq/gridrunner/pkg/logging"
	"github.com/entrhq/gridrunner/pkg/sauce"
	"github.com/entrhq/gridrunner/pkg/settings"
)

// Options configures a Harness. Zero values get process defaults.
type Options struct {
	// Overrides is the override store; defaults to a fresh MemoryStore
	Overrides settings.Store

	// Env is the environment source; defaults to settings.EnvSource
	Env settings.Source

	// Table is the capability defaults table; defaults to capabilities.DefaultTable
	Table capabilities.Table

	// BuildSources is the build identifier probe order; defaults to build.DefaultSources
	BuildSources []build.Source

	// Factory constructs the job-tracking client; defaults to sauce.DefaultFactory
	Factory *sauce.ClientFactory

	Logger *logging.Logger
}

// Harness is safe for concurrent use by sessions sharing one override store.
type Harness struct {
	lookup       *settings.Lookup
	table        capabilities.Table
	sources      []build.Source
	factory      *sauce.ClientFactory
	capResolver  *capabilities.Resolver
	buildResolve *build.Resolver
	reporter     *sauce.Reporter
	logger       *logging.Logger
}

// SessionConfig is the result of Setup, consumed by the driver.
type SessionConfig struct {
	Mode         grid.Mode
	Capabilities *capabilities.Set
	Overridden   []string
	Defaulted    []string
	ChromeArgs   []string
	Headless     bool
}

// Verdict is the result of Teardown.
type Verdict struct {
	// Passed is the test's own outcome and is never altered by reporting
	Passed bool

	// BuildID is empty when no build identifier was found
	BuildID string

	// ReportErr is non-nil when the job update failed
	ReportErr error
}

// New creates a Harness.
func New(opts Options) *Harness {
	if opts.Overrides == nil {
		opts.Overrides = settings.NewMemoryStore(nil)
	}
	if opts.Env == nil {
		opts.Env = settings.EnvSource{}
	}
	if opts.Table == nil {
		opts.Table = capabilities.DefaultTable()
	}
	if opts.BuildSources == nil {
		opts.BuildSources = build.DefaultSources()
	}
	if opts.Factory == nil {
		opts.Factory = sauce.DefaultFactory()
	}

	opts.Factory.UseLogger(opts.Logger.With("sauce"))

	lookup := settings.NewLookup(opts.Overrides, opts.Env)
	return &Harness{
		lookup:       lookup,
		table:        opts.Table,
		sources:      opts.BuildSources,
		factory:      opts.Factory,
		capResolver:  capabilities.NewResolver(lookup, opts.Logger.With("capabilities")),
		buildResolve: build.NewResolver(lookup, opts.Logger.With("build")),
		reporter:     sauce.NewReporter(opts.Logger.With("sauce")),
		logger:       opts.Logger,
	}
}

// Lookup returns the settings lookup the harness reads through.
func (h *Harness) Lookup() *settings.Lookup {
	return h.lookup
}

// Setup selects the execution mode and resolves the capability set.
// It cannot fail: every setting has a default.
func (h *Harness) Setup() SessionConfig {
	mode := grid.FromSettings(h.lookup, h.logger.With("grid"))
	res := h.capResolver.Resolve(h.table)

	cfg := SessionConfig{
		Mode:         mode,
		Capabilities: res.Set,
		Overridden:   res.Overridden,
		Defaulted:    res.Defaulted,
		ChromeArgs:   grid.ChromeArgs(mode),
		Headless:     grid.Headless(h.lookup),
	}

	headless := "headed"
	if cfg.Headless {
		headless = "headless"
	}
	h.logger.Infof("Session configured in %s mode (%s), %d capabilities", headless, mode, res.Set.Len())
	return cfg
}

// BuildID resolves the CI build identifier.
func (h *Harness) BuildID() (string, bool) {
	return h.buildResolve.Resolve(h.sources)
}

// Teardown reports the verdict for sessionID. A reporting failure is logged
// and returned in the Verdict; Passed always equals passed.
func (h *Harness) Teardown(ctx context.Context, sessionID string, passed bool) Verdict {
	buildID, _ := h.BuildID()
	verdict := Verdict{Passed: passed, BuildID: buildID}

	// An empty account must never bind the shared client
	creds := config.Credentials(h.lookup)
	if creds.Username == "" {
		verdict.ReportErr = &sauce.ReportError{SessionID: sessionID, Err: sauce.ErrNoCredentials}
		h.logger.Warnf("Result for session %s not recorded: %v", sessionID, verdict.ReportErr)
		return verdict
	}

	client := h.factory.GetOrCreate(creds)
	outcome := sauce.Outcome{SessionID: sessionID, Passed: passed, BuildID: buildID}
	if err := h.reporter.Report(ctx, client, outcome); err != nil {
		h.logger.Warnf("Result for session %s not recorded: %v", sessionID, err)
		verdict.ReportErr = err
	}
	return verdict
}
