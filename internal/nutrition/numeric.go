package nutrition

import (
	"regexp"
	"strconv"
)

// MaxPlausibleValue bounds any quantity read off a label.
const MaxPlausibleValue = 10000

const numPattern = `(\d+(?:\.\d+)?)`

var rePercent = regexp.MustCompile(`\d+(?:\.\d+)?\s*%`)

// Candidate searches in priority order. End anchored forms come first since
// label rows usually print the target quantity last.
var numericSearches = []*regexp.Regexp{
	regexp.MustCompile(numPattern + `\s*g\s*$`),
	regexp.MustCompile(numPattern + `\s*mg\s*$`),
	regexp.MustCompile(numPattern + `\s*$`),
	regexp.MustCompile(numPattern + `\s*g\b`),
	regexp.MustCompile(numPattern + `\s*mg\b`),
	regexp.MustCompile(numPattern),
}

// ExtractNumber returns the best numeric candidate in span, ignoring
// percentages. The bool is false when no candidate lies in [0, 10000].
func ExtractNumber(span string) (float64, bool) {
	span = rePercent.ReplaceAllString(span, " ")
	for _, re := range numericSearches {
		for _, m := range re.FindAllStringSubmatch(span, -1) {
			if v, ok := parseBounded(m[1], MaxPlausibleValue); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// parseBounded parses s and checks 0 <= v <= max.
func parseBounded(s string, max float64) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || v > max {
		return 0, false
	}
	return v, true
}
