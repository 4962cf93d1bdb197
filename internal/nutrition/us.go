package nutrition

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/nutrilabel/constants"
)

// US style labels print one value per nutrient row.

var (
	reUSCarbsKW    = regexp.MustCompile(`\b(?:total\s+carbohydrates?|carbohydrates?\s+total|total\s+carbs)\b`)
	reUSCarbsLoose = regexp.MustCompile(`\bcarbohydrates?\b`)
	reUSSugarsKW   = regexp.MustCompile(`\b(?:total\s+)?sugars?\b`)
	reUSFiberKW    = regexp.MustCompile(`\b(?:dietary\s+fib(?:er|re)|fib(?:er|re))\b`)
	reUSProteinKW  = regexp.MustCompile(`\bprotein\b`)
	reUSFatKW      = regexp.MustCompile(`\b(?:total\s+fat|fat\s+total)\b`)
	reUSFatLine    = regexp.MustCompile(`^fat\b`)

	reUSCaloriesDV      = regexp.MustCompile(`\bcalories?\b:?\s*` + numPattern + `\s*%\s*daily\s*values?`)
	reUSCaloriesPerServ = regexp.MustCompile(`amount\s+per\s+serving\s+calories?\b:?\s*` + numPattern + `\b`)
	reUSCaloriesSame    = regexp.MustCompile(`\bcalories?\b:?\s*` + numPattern + `\b`)
	reUSCaloriesKW      = regexp.MustCompile(`\bcalories?\b`)
	reUSFatCalories     = regexp.MustCompile(`calories?\s+(?:from\s+)?fat|fat\s+calories?`)
	reUSBareNumberLine  = regexp.MustCompile(`^` + numPattern + `\s*(?:kcal|cal)?$`)

	reUSServingSize = regexp.MustCompile(`serving\s+size`)
	reUSPerServing  = regexp.MustCompile(`\bper\s+(\d+(?:\.\d+)?\s*(?:g|ml|oz|cup|tbsp|tsp|piece|packet|pouch|container|bottle|can)s?)\b`)
)

// gramValue builds the whole text form: keyword, then non digits on the same
// line, then a gram quantity.
func gramValue(kw *regexp.Regexp) *regexp.Regexp {
	return regexp.MustCompile(kw.String() + `[^\d\n]*` + numPattern + `\s*g\b`)
}

func skipSugarLine(ln string) bool { return containsAny(ln, "added", "alcohol") }

func skipNetCarbLine(ln string) bool { return strings.Contains(ln, "net") }

func usNutrientMatchers() map[Field][]Matcher {
	bounded := within(MaxPlausibleValue)
	return map[Field][]Matcher{
		FieldTotalCarbs: {
			regexMatcher("us.totalCarbs.text", gramValue(reUSCarbsKW), 1, bounded),
			lineMatcher("us.totalCarbs.line", reUSCarbsKW, nil),
			lineMatcher("us.totalCarbs.loose-line", reUSCarbsLoose, skipNetCarbLine),
		},
		FieldSugars: {
			scanMatcher("us.sugars.text", gramValue(reUSSugarsKW), 1, skipSugarLine),
			lineMatcher("us.sugars.line", reUSSugarsKW, skipSugarLine),
		},
		FieldFiber: {
			regexMatcher("us.fiber.text", gramValue(reUSFiberKW), 1, bounded),
			lineMatcher("us.fiber.line", reUSFiberKW, nil),
		},
		FieldProtein: {
			regexMatcher("us.protein.text", gramValue(reUSProteinKW), 1, bounded),
			lineMatcher("us.protein.line", reUSProteinKW, nil),
		},
		FieldFat: {
			regexMatcher("us.fat.text", gramValue(reUSFatKW), 1, bounded),
			lineMatcher("us.fat.line", reUSFatKW, nil),
			lineMatcher("us.fat.leading-line", reUSFatLine, nil),
		},
	}
}

var usNutrientFields = []Field{FieldTotalCarbs, FieldSugars, FieldFiber, FieldProtein, FieldFat}

func usCalorieMatchers() []Matcher {
	bounded := within(MaxPlausibleValue)
	return []Matcher{
		regexMatcher("us.calories.daily-value", reUSCaloriesDV, 1, bounded),
		regexMatcher("us.calories.amount-per-serving", reUSCaloriesPerServ, 1, bounded),
		adjacentCalorieMatcher("us.calories.same-line", 0),
		adjacentCalorieMatcher("us.calories.next-line", 1),
		adjacentCalorieMatcher("us.calories.prev-line", -1),
	}
}

// adjacentCalorieMatcher reads the calorie figure from a "calories" line
// (offset 0) or from a bare number line next to it. Calories-from-fat lines
// are never used.
func adjacentCalorieMatcher(name string, offset int) Matcher {
	return Matcher{Name: name, Match: func(text string) (MatchResult, bool) {
		lines := splitLines(text)
		for i, ln := range lines {
			if !reUSCaloriesKW.MatchString(ln) || reUSFatCalories.MatchString(ln) {
				continue
			}
			if offset == 0 {
				if m := reUSCaloriesSame.FindStringSubmatch(ln); m != nil {
					if v, ok := parseBounded(m[1], MaxPlausibleValue); ok {
						return MatchResult{Value: v, Source: ln}, true
					}
				}
				continue
			}
			j := i + offset
			if j < 0 || j >= len(lines) {
				continue
			}
			if m := reUSBareNumberLine.FindStringSubmatch(lines[j]); m != nil {
				if v, ok := parseBounded(m[1], MaxPlausibleValue); ok {
					return MatchResult{Value: v, Source: lines[j]}, true
				}
			}
		}
		return MatchResult{}, false
	}}
}

func usServingMatchers() []Matcher {
	return []Matcher{
		{Name: "us.serving.serving-size-line", Match: func(text string) (MatchResult, bool) {
			lines := splitLines(text)
			for i, ln := range lines {
				loc := reUSServingSize.FindStringIndex(ln)
				if loc == nil {
					continue
				}
				rest := cleanServing(ln[loc[1]:])
				if rest == "" && i+1 < len(lines) {
					rest = cleanServing(lines[i+1])
				}
				if rest == "" {
					continue
				}
				return MatchResult{Text: rest, Source: ln}, true
			}
			return MatchResult{}, false
		}},
		{Name: "us.serving.per-quantity", Match: func(text string) (MatchResult, bool) {
			m := reUSPerServing.FindStringSubmatch(text)
			if m == nil {
				return MatchResult{}, false
			}
			return MatchResult{Text: strings.TrimSpace(m[1]), Source: m[0]}, true
		}},
	}
}

func cleanServing(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, ":= ")
	s = strings.TrimRight(s, ".,;: ")
	return s
}

type usParser struct {
	serving   []Matcher
	calories  []Matcher
	nutrients map[Field][]Matcher
}

func newUSParser() usParser {
	return usParser{
		serving:   usServingMatchers(),
		calories:  usCalorieMatchers(),
		nutrients: usNutrientMatchers(),
	}
}

func (p usParser) extract(normalized string, region constants.Region) (Record, DebugInfo) {
	rec := NewRecord(region)
	dbg := newDebugInfo(region, USFields)

	if r, ok := FirstMatch(normalized, p.serving); ok {
		rec.ServingSize = r.Text
		dbg.record(FieldServingSize, r)
	}
	if r, ok := FirstMatch(normalized, p.calories); ok {
		rec.Calories = r.Value
		dbg.record(FieldCalories, r)
	}
	for _, f := range usNutrientFields {
		if r, ok := FirstMatch(normalized, p.nutrients[f]); ok {
			rec.set(f, r.Value)
			dbg.record(f, r)
		}
	}
	return rec, dbg
}
