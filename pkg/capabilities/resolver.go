// Package capabilities builds the capability set for a browser session by
// merging a table of defaults with operator overrides.
package capabilities

import (
	"strconv"

	"github.com/entrhq/gridrunner/pkg/logging"
	"github.com/entrhq/gridrunner/pkg/settings"
)

// Resolution is the outcome of resolving a Table.
type Resolution struct {
	// Set holds exactly one entry per table entry, in table order
	Set *Set

	// Overridden lists names whose value came from an override, in table order
	Overridden []string

	// Defaulted lists names that fell back to the table default, in table order
	Defaulted []string
}

// Resolver merges capability defaults with overrides found through a
// settings.Lookup and materializes every resolved value back into the
// lookup's override store.
type Resolver struct {
	lookup *settings.Lookup
	logger *logging.Logger
}

// NewResolver creates a resolver. logger may be nil.
func NewResolver(lookup *settings.Lookup, logger *logging.Logger) *Resolver {
	return &Resolver{lookup: lookup, logger: logger}
}

// Resolve builds the capability set for table.
//
// A name that is defined anywhere in the lookup, even as an empty string, is
// overridden. The override is coerced to the default's kind when it parses, so
// resolving again after write-back yields an equal Set.
func (r *Resolver) Resolve(table Table) Resolution {
	res := Resolution{Set: newSet(len(table))}
	store := r.lookup.Overrides()

	for _, entry := range table {
		var value any
		override := r.lookup.Get(entry.Name)
		if raw, ok := override.Get(); ok {
			value = coerce(raw, entry.Value)
			res.Overridden = append(res.Overridden, entry.Name)
			if store != nil {
				store.Set(entry.Name, raw)
			}
		} else {
			value = entry.Value
			res.Defaulted = append(res.Defaulted, entry.Name)
			if store != nil {
				store.Set(entry.Name, formatValue(entry.Value))
			}
		}
		res.Set.put(entry.Name, value)
	}

	r.logResolution(res)
	return res
}

func (r *Resolver) logResolution(res Resolution) {
	r.logger.Infof("Overridden capabilities (%d)", len(res.Overridden))
	for _, name := range res.Overridden {
		r.logger.Infof("  overridden %s:[%s]", name, res.Set.String(name))
	}
	r.logger.Infof("Defaulted capabilities (%d)", len(res.Defaulted))
	for _, name := range res.Defaulted {
		r.logger.Infof("  defaulted %s:[%s]", name, res.Set.String(name))
	}
}

// coerce converts raw to the kind of def when possible.
func coerce(raw string, def any) any {
	switch def.(type) {
	case int:
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	case bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	}
	return raw
}
