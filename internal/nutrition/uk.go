package nutrition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/nutrilabel/constants"
)

// UK labels print three columns per nutrient row: per 100g, per serving and
// %RI. Every matcher here targets the per serving (second) column.

var ukKeywords = map[Field][]string{
	FieldTotalCarbs: {"carbohydrate", "carbohydrates", "total carbohydrate"},
	FieldSugars:     {"sugars", "sugar", "of which sugars"},
	FieldFiber:      {"fibre", "fiber", "dietary fibre"},
	FieldProtein:    {"protein"},
	FieldFat:        {"fat", "total fat"},
	FieldSalt:       {"salt"},
}

var ukNutrientFields = []Field{FieldTotalCarbs, FieldSugars, FieldFiber, FieldProtein, FieldFat, FieldSalt}

// ukColumnTemplate is a row shape over the joined label text. %s is the
// quoted keyword; group is the capture holding the per serving value.
type ukColumnTemplate struct {
	name  string
	expr  string
	group int
}

const ukNum = `(\d+\.?\d*)`

var ukColumnTemplates = []ukColumnTemplate{
	{"three-column", `%s\s+` + ukNum + `g\s+` + ukNum + `g\s+(\d+)%%`, 2},
	{"two-column-ri", `%s\s+` + ukNum + `g\s+` + ukNum + `g\s+\d+%%`, 2},
	{"of-which", `of\s+which\s+%s\s+` + ukNum + `g\s+` + ukNum + `g`, 2},
	{"two-column-ri-ref", `%s\s+` + ukNum + `g\s+` + ukNum + `g\s+\d+%%\s+\d+g`, 2},
	{"two-column", `%s\s+` + ukNum + `g\s+` + ukNum + `g`, 2},
	{"loose-two", `%s.*?` + ukNum + `\s*g.*?` + ukNum + `\s*g`, 2},
	{"loose-one", `%s.*?` + ukNum + `\s*g`, 1},
}

// ukCalorieMatchers target the second kcal figure of the energy row.
func ukCalorieMatchers(max float64) []Matcher {
	accept := within(max)
	return []Matcher{
		regexMatcher("uk.calories.energy-pairs", regexp.MustCompile(`energy\s+\d+kj\s*/\s*\d+kcal\s+\d+kj\s*/\s*(\d+)kcal`), 1, accept),
		regexMatcher("uk.calories.energy-columns", regexp.MustCompile(`energy.*?(\d+)kcal.*?(\d+)kcal.*?\d+%`), 2, accept),
		regexMatcher("uk.calories.pairs", regexp.MustCompile(`\d+kj\s*/\s*\d+kcal\s+\d+kj\s*/\s*(\d+)kcal`), 1, accept),
		regexMatcher("uk.calories.each-paren", regexp.MustCompile(`each\s+\w+\s*\(.*?\)\s+contains.*?(\d+)\s*kcal`), 1, accept),
		regexMatcher("uk.calories.each", regexp.MustCompile(`each\s+\w+\s+contains.*?(\d+)\s*kcal`), 1, accept),
		regexMatcher("uk.calories.kcal-each", regexp.MustCompile(`(\d+)\s*kcal.*?each\s+\w+`), 1, accept),
	}
}

// ukNutrientMatchers builds keyword x template matchers for f, keyword
// major, with f's serving ceiling applied to every candidate.
func ukNutrientMatchers(f Field, limits Limits) []Matcher {
	accept := limits.ceiling(f)
	var out []Matcher
	for _, kw := range ukKeywords[f] {
		q := regexp.QuoteMeta(kw)
		for _, t := range ukColumnTemplates {
			re := regexp.MustCompile(fmt.Sprintf(t.expr, q))
			name := fmt.Sprintf("uk.%s.%s.%s", f, strings.ReplaceAll(kw, " ", "-"), t.name)
			out = append(out, regexMatcher(name, re, t.group, accept))
		}
	}
	return out
}

// ukServingPattern captures a unit word and a weight.
type ukServingPattern struct {
	name   string
	re     *regexp.Regexp
	unit   int
	weight int
}

var ukServingPatterns = []ukServingPattern{
	{"each-typically-contains-weight", regexp.MustCompile(`each\s+(\w+)\s*\(typically.*?contains\s+(\d+g)\)`), 1, 2},
	{"each-typically-weight", regexp.MustCompile(`each\s+(\w+)\s*\(typically.*?(\d+g)\)`), 1, 2},
	{"each-typically-contains", regexp.MustCompile(`each\s+(\w+)\s*\(typically\s*(\d+g)\)\s+contains`), 1, 2},
	{"each-weight-contains", regexp.MustCompile(`each\s+(\w+)\s*\((\d+g)\)\s+contains`), 1, 2},
	{"each-typically", regexp.MustCompile(`each\s+(\w+)\s+\(typically\s*(\d+g)\)`), 1, 2},
	{"each-weight", regexp.MustCompile(`each\s+(\w+)\s+\((\d+g)\)`), 1, 2},
	{"weight-per-unit", regexp.MustCompile(`(\d+g)\s+per\s+(\w+)`), 2, 1},
	{"unit-weight", regexp.MustCompile(`(\w+)\s+\((\d+g)\)`), 1, 2},
	{"each-loose", regexp.MustCompile(`each\s+(\w+).*?(\d+g)`), 1, 2},
}

var reUKLineWeight = regexp.MustCompile(`(\d+g)`)

func ukServingMatchers() []Matcher {
	out := make([]Matcher, 0, len(ukServingPatterns))
	for _, p := range ukServingPatterns {
		p := p
		out = append(out, Matcher{Name: "uk.serving." + p.name, Match: func(text string) (MatchResult, bool) {
			m := p.re.FindStringSubmatch(text)
			if m == nil {
				return MatchResult{}, false
			}
			unit := m[p.unit]
			if unit == "" {
				unit = "serving"
			}
			return MatchResult{Text: fmt.Sprintf("%s (%s)", m[p.weight], unit), Source: m[0]}, true
		}})
	}
	return out
}

// ukServingLineMatcher is the last resort: any serving, slice or cup line
// with a gram weight on it.
var ukServingLineMatcher = Matcher{Name: "uk.serving.line-weight", Match: func(text string) (MatchResult, bool) {
	for _, ln := range splitLines(text) {
		if !containsAny(ln, "serving", "slice", "cup") {
			continue
		}
		if m := reUKLineWeight.FindStringSubmatch(ln); m != nil {
			return MatchResult{Text: m[1], Source: ln}, true
		}
	}
	return MatchResult{}, false
}}

type ukParser struct {
	serving   []Matcher
	calories  []Matcher
	nutrients map[Field][]Matcher
}

func newUKParser(limits Limits) ukParser {
	p := ukParser{
		serving:   ukServingMatchers(),
		calories:  ukCalorieMatchers(limits.MaxServingCalories),
		nutrients: make(map[Field][]Matcher, len(ukNutrientFields)),
	}
	for _, f := range ukNutrientFields {
		p.nutrients[f] = ukNutrientMatchers(f, limits)
	}
	return p
}

func (p ukParser) extract(normalized string) (Record, DebugInfo) {
	rec := NewRecord(constants.RegionUK)
	dbg := newDebugInfo(constants.RegionUK, UKFields)

	// Column rows are matched on the joined text: OCR often splits one
	// table row over several lines.
	lines := splitLines(normalized)
	full := strings.Join(lines, " ")

	if r, ok := FirstMatch(full, p.serving); ok {
		rec.ServingSize = r.Text
		rec.ServingDescription = r.Source
		dbg.record(FieldServingSize, r)
	} else if r, ok := FirstMatch(normalized, []Matcher{ukServingLineMatcher}); ok {
		rec.ServingSize = r.Text
		dbg.record(FieldServingSize, r)
	}

	if r, ok := FirstMatch(full, p.calories); ok {
		rec.Calories = r.Value
		dbg.record(FieldCalories, r)
	}

	for _, f := range ukNutrientFields {
		r, ok := FirstMatch(full, p.nutrients[f])
		if !ok {
			continue
		}
		rec.set(f, r.Value)
		dbg.record(f, r)
	}
	return rec, dbg
}
