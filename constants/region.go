package constants

import (
	"strings"
)

// Region is the label layout family a scan is parsed with.
type Region string

const (
	RegionUS Region = "US"
	RegionUK Region = "UK"
	RegionEU Region = "EU"
	RegionCA Region = "CA"
)

// DefaultRegion is used when the caller does not supply a country.
const DefaultRegion = RegionUS

var allRegions = []Region{RegionUS, RegionUK, RegionEU, RegionCA}

func RegionsAsStringSlice() []string {
	result := make([]string, len(allRegions))
	for i, r := range allRegions {
		result[i] = string(r)
	}
	return result
}

// ParseRegion maps a caller-supplied country code onto a Region.
// Unknown or empty input yields DefaultRegion and false.
func ParseRegion(input string) (Region, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	if normalized == "" {
		return DefaultRegion, false
	}

	synonyms := map[string]Region{
		"GB":             RegionUK,
		"GBR":            RegionUK,
		"UNITED KINGDOM": RegionUK,
		"USA":            RegionUS,
		"UNITED STATES":  RegionUS,
		"CAN":            RegionCA,
		"CANADA":         RegionCA,
		"EUROPE":         RegionEU,
	}
	if r, ok := synonyms[normalized]; ok {
		return r, true
	}

	for _, r := range allRegions {
		if normalized == string(r) {
			return r, true
		}
	}
	return DefaultRegion, false
}

// UsesColumnLayout reports whether labels of this region print a per-100g
// column ahead of the per-serving column. EU and CA currently share the
// single-column US layout.
func (r Region) UsesColumnLayout() bool {
	return r == RegionUK
}
