package sauce

import (
	"errors"
	"fmt"
	"strings"

	"github.com/entrhq/gridrunner/pkg/logging"
)

// DataCenter is a Sauce Labs deployment region.
type DataCenter string

const (
	USWest        DataCenter = "US_WEST"
	USEast        DataCenter = "US_EAST"
	EUCentral     DataCenter = "EU_CENTRAL"
	APACSoutheast DataCenter = "APAC_SOUTHEAST"
)

const (
	// DataCenterSetting names the setting that selects the region.
	DataCenterSetting = "SAUCE_DATACENTER"

	// DefaultDataCenterName is used when DataCenterSetting is unset.
	DefaultDataCenterName = string(USEast)

	// FallbackDataCenter replaces an unrecognized region.
	FallbackDataCenter = USWest
)

// ErrUnknownDataCenter is returned by ParseDataCenter for unrecognized names.
var ErrUnknownDataCenter = errors.New("unknown data center")

type region struct {
	dc     DataCenter
	id     string
	apiURL string
}

var regions = []region{
	{USWest, "us-west-1", "https://api.us-west-1.saucelabs.com"},
	{USEast, "us-east-4", "https://api.us-east-4.saucelabs.com"},
	{EUCentral, "eu-central-1", "https://api.eu-central-1.saucelabs.com"},
	{APACSoutheast, "apac-southeast-1", "https://api.apac-southeast-1.saucelabs.com"},
}

// ParseDataCenter accepts a constant name ("US_WEST") or region id
// ("us-west-1"), case-insensitively.
func ParseDataCenter(name string) (DataCenter, error) {
	trimmed := strings.TrimSpace(name)
	for _, r := range regions {
		if strings.EqualFold(trimmed, string(r.dc)) || strings.EqualFold(trimmed, r.id) {
			return r.dc, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDataCenter, name)
}

// APIURL returns the REST base URL for the data center.
func (d DataCenter) APIURL() string {
	for _, r := range regions {
		if r.dc == d {
			return r.apiURL
		}
	}
	return ""
}

// RegionID returns the short region id, e.g. "us-west-1".
func (d DataCenter) RegionID() string {
	for _, r := range regions {
		if r.dc == d {
			return r.id
		}
	}
	return ""
}

// ResolveDataCenter parses name and substitutes FallbackDataCenter when the
// name is not recognized. The fallback is logged and never returned as an error.
func ResolveDataCenter(name string, logger *logging.Logger) DataCenter {
	candidates := []func() (DataCenter, error){
		func() (DataCenter, error) { return ParseDataCenter(name) },
		func() (DataCenter, error) { return FallbackDataCenter, nil },
	}

	for i, candidate := range candidates {
		dc, err := candidate()
		if err != nil {
			logger.Warnf("Data center %s not available, falling back to %s: %v", name, FallbackDataCenter, err)
			continue
		}
		if i == 0 {
			logger.Infof("Using Sauce Labs data center: %s", dc)
		}
		return dc
	}
	return FallbackDataCenter
}
