package nutrition

import (
	"regexp"
	"strings"
)

// MatchResult is one located field value.
type MatchResult struct {
	Value   float64
	Text    string // free text fields such as serving size
	Source  string // matched span or line
	Matcher string
}

// Matcher is one strategy for locating a field in normalized label text.
type Matcher struct {
	Name  string
	Match func(text string) (MatchResult, bool)
}

// FirstMatch runs matchers in order and returns the first hit.
func FirstMatch(text string, matchers []Matcher) (MatchResult, bool) {
	for _, m := range matchers {
		if r, ok := m.Match(text); ok {
			r.Matcher = m.Name
			return r, true
		}
	}
	return MatchResult{}, false
}

// Accept filters a candidate value.
type Accept func(v float64) bool

func within(max float64) Accept {
	return func(v float64) bool { return v >= 0 && v <= max }
}

// regexMatcher takes the group'th capture of the first match of re.
func regexMatcher(name string, re *regexp.Regexp, group int, accept Accept) Matcher {
	return Matcher{Name: name, Match: func(text string) (MatchResult, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil || group >= len(m) {
			return MatchResult{}, false
		}
		v, ok := parseBounded(m[group], MaxPlausibleValue)
		if !ok || !accept(v) {
			return MatchResult{}, false
		}
		return MatchResult{Value: v, Source: m[0]}, true
	}}
}

// scanMatcher tries every match of re in turn, skipping those whose
// containing line is rejected by skipLine.
func scanMatcher(name string, re *regexp.Regexp, group int, skipLine func(string) bool) Matcher {
	return Matcher{Name: name, Match: func(text string) (MatchResult, bool) {
		for _, idx := range re.FindAllStringSubmatchIndex(text, -1) {
			if skipLine != nil && skipLine(lineAt(text, idx[0])) {
				continue
			}
			if idx[2*group] < 0 {
				continue
			}
			if v, ok := parseBounded(text[idx[2*group]:idx[2*group+1]], MaxPlausibleValue); ok {
				return MatchResult{Value: v, Source: text[idx[0]:idx[1]]}, true
			}
		}
		return MatchResult{}, false
	}}
}

// lineMatcher looks at lines containing keyword re, and extracts a number
// from the text following the keyword.
func lineMatcher(name string, re *regexp.Regexp, skipLine func(string) bool) Matcher {
	return Matcher{Name: name, Match: func(text string) (MatchResult, bool) {
		for _, ln := range splitLines(text) {
			if skipLine != nil && skipLine(ln) {
				continue
			}
			loc := re.FindStringIndex(ln)
			if loc == nil {
				continue
			}
			if v, ok := ExtractNumber(ln[loc[1]:]); ok {
				return MatchResult{Value: v, Source: ln}, true
			}
		}
		return MatchResult{}, false
	}}
}

func lineAt(text string, pos int) string {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	end := strings.IndexByte(text[pos:], '\n')
	if end < 0 {
		return text[start:]
	}
	return text[start : pos+end]
}

// splitLines returns the non-empty lines of text.
func splitLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if ln = strings.TrimSpace(ln); ln != "" {
			out = append(out, ln)
		}
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
