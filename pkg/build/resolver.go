// Package build finds the CI build identifier for the current run.
package build

import (
	"github.com/entrhq/gridrunner/pkg/logging"
	"github.com/entrhq/gridrunner/pkg/settings"
)

// Source names one CI variable that may carry a build identifier.
type Source struct {
	Label    string `yaml:"label"`
	Variable string `yaml:"variable"`
}

// DefaultSources returns the probe order used when none is configured.
// Several CI systems can populate unrelated variables at once, so the order
// decides which one wins.
func DefaultSources() []Source {
	return []Source{
		{Label: "Bamboo", Variable: "SAUCE_BAMBOO_BUILDNUMBER"},
		{Label: "Jenkins", Variable: "JENKINS_BUILD_NUMBER"},
		{Label: "BUILD_TAG", Variable: "BUILD_TAG"},
		{Label: "BUILD_NUMBER", Variable: "BUILD_NUMBER"},
		{Label: "Travis", Variable: "TRAVIS_BUILD_NUMBER"},
		{Label: "CircleCI", Variable: "CIRCLE_BUILD_NUM"},
	}
}

// Resolver walks build sources through a settings.Lookup.
type Resolver struct {
	lookup *settings.Lookup
	logger *logging.Logger
}

// NewResolver creates a resolver. logger may be nil.
func NewResolver(lookup *settings.Lookup, logger *logging.Logger) *Resolver {
	return &Resolver{lookup: lookup, logger: logger}
}

// Resolve returns the first non-empty value among sources, in order.
// Sources after the first match are not consulted.
func (r *Resolver) Resolve(sources []Source) (string, bool) {
	for _, src := range sources {
		v := r.lookup.Get(src.Variable)
		r.logger.Debugf("build source %s: variable=%s state=%s value=[%s]", src.Label, src.Variable, v.State(), v.String())
		if v.HasValue() {
			r.logger.Infof("Build identifier %q from %s (%s)", v.String(), src.Label, src.Variable)
			return v.String(), true
		}
	}
	r.logger.Infof("No build identifier found in %d sources", len(sources))
	return "", false
}
