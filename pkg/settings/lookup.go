// Package settings resolves named settings from a process-local override
// store with a fallback to the environment.
package settings

// Lookup reads a setting from the override store first and the environment
// second. It has no side effects.
type Lookup struct {
	overrides Store
	env       Source
}

// NewLookup creates a Lookup. Either source may be nil, in which case it is
// skipped.
func NewLookup(overrides Store, env Source) *Lookup {
	return &Lookup{overrides: overrides, env: env}
}

// Get returns the first definition of name, or an unset Value.
func (l *Lookup) Get(name string) Value {
	if l.overrides != nil {
		if v, ok := l.overrides.Get(name); ok {
			return Of(v)
		}
	}
	if l.env != nil {
		if v, ok := l.env.Lookup(name); ok {
			return Of(v)
		}
	}
	return Unset()
}

// GetOr returns the defined value of name, or fallback when unset.
func (l *Lookup) GetOr(name, fallback string) string {
	return l.Get(name).Or(fallback)
}

// Overrides returns the override store this lookup reads from.
func (l *Lookup) Overrides() Store {
	return l.overrides
}
