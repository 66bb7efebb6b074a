package capabilities

// Defaults for the Sauce Connect tunnel and credential placeholders.
const (
	DefaultHost             = "sauceconnect.berkley-bts.com"
	DefaultPort             = "4445"
	DefaultTunnelIdentifier = "prodSLTunnel"
	DefaultParentTunnel     = "berkley-technology-services"
	DefaultUserName         = "AUTO_SAUCELABS_USERNAME"
	DefaultAccessKey        = "AUTO_SAUCELABS_ACCESS_KEY"
)

// Capability names that also carry the job-tracking account.
const (
	UserNameCapability  = "userName"
	AccessKeyCapability = "accessKey"
)

// Entry is one named capability with its value. In a Table the value is the
// default; in a Set it is the resolved value. Values are string, bool or int.
type Entry struct {
	Name  string
	Value any
}

// Table is an ordered list of capability defaults.
type Table []Entry

// Names returns the capability names in table order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, e := range t {
		names[i] = e.Name
	}
	return names
}

// Default returns the default for name.
func (t Table) Default(name string) (any, bool) {
	for _, e := range t {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// DefaultTable returns the session defaults used for every grid run.
func DefaultTable() Table {
	return Table{
		{"browser", "chrome"},
		{"forkCount", 1},

		// Selenium
		{"browserName", "chrome"},
		{"version", "latest"},
		{"platform", "WINDOWS"},

		// Alerts
		{"autoAcceptAlerts", true},

		// Test annotation
		{"name", ""},
		{"build", ""},
		{"tags", ""},

		// Timeouts, in seconds
		{"maxDuration", 10800},
		{"commandTimeout", 300},
		{"idleTimeout", 1000},

		// Tunnel and credentials
		{"host", DefaultHost},
		{"port", DefaultPort},
		{UserNameCapability, DefaultUserName},
		{AccessKeyCapability, DefaultAccessKey},
		{"tunnelIdentifier", DefaultTunnelIdentifier},
		{"parentTunnel", DefaultParentTunnel},
		{"screenResolution", "2560x1600"},
		{"timeZone", "Chicago"},

		// Recording is off for speed
		{"recordVideo", false},
		{"videoUploadOnPass", false},
		{"recordScreenshots", false},
		{"recordLogs", false},
		{"webdriver.remote.quietExceptions", false},
		{"extendedDebugging", false},
	}
}
