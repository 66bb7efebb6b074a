package build

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/entrhq/gridrunner/pkg/logging"
	"github.com/entrhq/gridrunner/pkg/settings"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

// countingSource records which names were looked up.
type countingSource struct {
	values map[string]string
	asked  []string
}

func (c *countingSource) Lookup(name string) (string, bool) {
	c.asked = append(c.asked, name)
	v, ok := c.values[name]
	return v, ok
}

func newResolver(env map[string]string) *Resolver {
	return NewResolver(settings.NewLookup(nil, settings.MapSource(env)), nil)
}

func TestResolveJenkinsBeatsBuildNumber(t *testing.T) {
	resolver := newResolver(map[string]string{
		"JENKINS_BUILD_NUMBER": "42",
		"BUILD_NUMBER":         "99",
	})

	id, ok := resolver.Resolve(DefaultSources())
	assert.True(t, ok)
	assert.Equal(t, "42", id)
}

func TestResolveAllEmpty(t *testing.T) {
	env := make(map[string]string)
	for _, src := range DefaultSources() {
		env[src.Variable] = ""
	}

	id, ok := newResolver(env).Resolve(DefaultSources())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestResolveNothingSet(t *testing.T) {
	_, ok := newResolver(nil).Resolve(DefaultSources())
	assert.False(t, ok)
}

func TestResolveSkipsEmptyAndFallsThrough(t *testing.T) {
	resolver := newResolver(map[string]string{
		"SAUCE_BAMBOO_BUILDNUMBER": "",
		"CIRCLE_BUILD_NUM":         "7",
	})

	id, ok := resolver.Resolve(DefaultSources())
	assert.True(t, ok)
	assert.Equal(t, "7", id)
}

func TestResolveOverrideStoreWins(t *testing.T) {
	store := settings.NewMemoryStore(map[string]string{"BUILD_TAG": "jenkins-app-12"})
	lookup := settings.NewLookup(store, settings.MapSource{"BUILD_TAG": "env-tag"})

	id, ok := NewResolver(lookup, nil).Resolve(DefaultSources())
	assert.True(t, ok)
	assert.Equal(t, "jenkins-app-12", id)
}

func TestResolveShortCircuits(t *testing.T) {
	env := &countingSource{values: map[string]string{
		"JENKINS_BUILD_NUMBER": "42",
		"TRAVIS_BUILD_NUMBER":  "3",
	}}
	resolver := NewResolver(settings.NewLookup(nil, env), nil)

	resolver.Resolve(DefaultSources())

	assert.Equal(t, []string{"SAUCE_BAMBOO_BUILDNUMBER", "JENKINS_BUILD_NUMBER"}, env.asked)
}

func TestResolveLogsSource(t *testing.T) {
	var buf bytes.Buffer
	lookup := settings.NewLookup(nil, settings.MapSource{"TRAVIS_BUILD_NUMBER": "311"})
	resolver := NewResolver(lookup, logging.NewWriterLogger("build", &buf))

	resolver.Resolve(DefaultSources())
	assert.Contains(t, buf.String(), `Build identifier "311" from Travis (TRAVIS_BUILD_NUMBER)`)

	buf.Reset()
	NewResolver(settings.NewLookup(nil, nil), logging.NewWriterLogger("build", &buf)).Resolve(DefaultSources())
	assert.Contains(t, buf.String(), "No build identifier found in 6 sources")
}

func TestFirstMatchWinsProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	// Each generated slot is the value for one source; AlphaString yields empties too.
	properties.Property("result is the first non-empty source value", prop.ForAll(
		func(values []string) bool {
			sources := make([]Source, len(values))
			env := make(map[string]string)
			want := ""
			for i, v := range values {
				name := fmt.Sprintf("CI_VAR_%d", i)
				sources[i] = Source{Label: name, Variable: name}
				env[name] = v
				if want == "" && v != "" {
					want = v
				}
			}

			got, ok := newResolver(env).Resolve(sources)
			return ok == (want != "") && got == want
		},
		gen.SliceOf(gen.AlphaString()),
	))

	properties.TestingRun(t)
}
