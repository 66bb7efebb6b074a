package settings

// State describes what a lookup found for a setting name.
type State int

const (
	// StateUnset means neither source defines the name.
	StateUnset State = iota
	// StateEmpty means the name is defined with an empty string.
	StateEmpty
	// StatePresent means the name is defined with a non-empty string.
	StatePresent
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUnset:
		return "unset"
	case StateEmpty:
		return "empty"
	case StatePresent:
		return "present"
	default:
		return "unknown"
	}
}

// Value is the result of a setting lookup. The zero Value is unset.
//
// Unset and empty stay distinguishable so callers can tell "explicitly set to
// empty" apart from "not configured".
type Value struct {
	state State
	raw   string
}

// Unset returns a Value that carries no setting.
func Unset() Value {
	return Value{}
}

// Of wraps a defined setting value.
func Of(raw string) Value {
	if raw == "" {
		return Value{state: StateEmpty}
	}
	return Value{state: StatePresent, raw: raw}
}

// FromLookup converts a (value, ok) pair as returned by os.LookupEnv.
func FromLookup(raw string, ok bool) Value {
	if !ok {
		return Unset()
	}
	return Of(raw)
}

// State reports which of the three lookup outcomes this value is.
func (v Value) State() State {
	return v.state
}

// IsSet reports whether the setting is defined, even if empty.
func (v Value) IsSet() bool {
	return v.state != StateUnset
}

// HasValue reports whether the setting is defined and non-empty.
func (v Value) HasValue() bool {
	return v.state == StatePresent
}

// Get returns the raw value and whether the setting is defined.
func (v Value) Get() (string, bool) {
	return v.raw, v.IsSet()
}

// String returns the raw value, or "" when unset.
func (v Value) String() string {
	return v.raw
}

// Or returns the raw value when defined and fallback otherwise.
func (v Value) Or(fallback string) string {
	if !v.IsSet() {
		return fallback
	}
	return v.raw
}
