package capabilities

import "strconv"

// PrerunName is the capability that runs an executable on the remote VM
// before the browser starts.
const PrerunName = "prerun"

// DefaultPrerunExecutable answers Windows authentication dialogs on the grid VM.
const DefaultPrerunExecutable = "authenticate.exe"

// Prerun builds the prerun capability value.
func Prerun(executable string, background bool) map[string]string {
	if executable == "" {
		executable = DefaultPrerunExecutable
	}
	return map[string]string{
		"executable": executable,
		"background": strconv.FormatBool(background),
	}
}

// WithPrerun returns a copy of set carrying the prerun capability.
func WithPrerun(set *Set, executable string, background bool) *Set {
	return set.With(PrerunName, Prerun(executable, background))
}
