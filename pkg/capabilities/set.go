package capabilities

import (
	"fmt"
	"reflect"
)

// Set is an ordered, immutable mapping from capability name to resolved value.
// It is built once per session and handed to the driver at session creation.
type Set struct {
	entries []Entry
	index   map[string]int
}

func newSet(capacity int) *Set {
	return &Set{
		entries: make([]Entry, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

// put is only used while a Set is under construction.
func (s *Set) put(name string, value any) {
	if i, ok := s.index[name]; ok {
		s.entries[i].Value = value
		return
	}
	s.index[name] = len(s.entries)
	s.entries = append(s.entries, Entry{Name: name, Value: value})
}

// Len returns the number of capabilities.
func (s *Set) Len() int {
	return len(s.entries)
}

// Names returns the capability names in insertion order.
func (s *Set) Names() []string {
	names := make([]string, len(s.entries))
	for i, e := range s.entries {
		names[i] = e.Name
	}
	return names
}

// Get returns the resolved value for name.
func (s *Set) Get(name string) (any, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.entries[i].Value, true
}

// String returns the value for name formatted as a string, or "" if absent.
func (s *Set) String(name string) string {
	v, ok := s.Get(name)
	if !ok {
		return ""
	}
	return formatValue(v)
}

// Int returns the value for name when it resolved to an int.
func (s *Set) Int(name string) (int, bool) {
	v, ok := s.Get(name)
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

// Bool returns the value for name when it resolved to a bool.
func (s *Set) Bool(name string) (bool, bool) {
	v, ok := s.Get(name)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// Entries returns a copy of the entries in order.
func (s *Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Map returns the capabilities as a plain map, the shape most drivers accept.
func (s *Set) Map() map[string]any {
	out := make(map[string]any, len(s.entries))
	for _, e := range s.entries {
		out[e.Name] = e.Value
	}
	return out
}

// With returns a new Set with name set to value. The receiver is unchanged.
func (s *Set) With(name string, value any) *Set {
	next := newSet(len(s.entries) + 1)
	for _, e := range s.entries {
		next.put(e.Name, e.Value)
	}
	next.put(name, value)
	return next
}

// Equal reports whether both sets hold the same entries in the same order.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	return reflect.DeepEqual(s.entries, other.entries)
}

func formatValue(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
