package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"strconv"
	"strings"
)

var (
	// strips units the model sometimes leaves on numbers: "12 g", "250kcal"
	reNumericPrefix = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)`)
	// extracts a JSON object from chatty output
	reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)
)

var fieldSynonyms = map[string]string{
	"carbs":         "totalCarbs",
	"carbohydrate":  "totalCarbs",
	"carbohydrates": "totalCarbs",
	"total_carbs":   "totalCarbs",
	"fibre":         "fiber",
	"kcal":          "calories",
	"energy":        "calories",
	"sugar":         "sugars",
	"serving_size":  "servingSize",
	"serving":       "servingSize",
}

// NormalizeAndSanitizeJSON
// - Pulls the first {...} object out of surrounding prose
// - Renames known synonyms (fibre -> fiber, carbohydrates -> totalCarbs)
// - Coerces numeric strings ("12 g") to numbers and clamps negatives to 0
// - Fills missing required numbers with 0
// - Removes unknown keys (strict additionalProperties = false friendliness)
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if obj := reJSONObject.Find(raw); obj != nil {
		raw = obj
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	changes := make([]string, 0, 8)
	for from, to := range fieldSynonyms {
		if v, ok := m[from]; ok {
			// don't overwrite an existing canonical value
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			changes = append(changes, from+"->"+to)
		}
	}

	coerce := func(k string, required bool) {
		v, ok := m[k]
		if !ok || v == nil {
			if required {
				m[k] = 0.0
				changes = append(changes, k+"(missing)")
			} else {
				delete(m, k)
			}
			return
		}
		switch t := v.(type) {
		case float64:
			if t < 0 {
				m[k] = 0.0
				changes = append(changes, k+"(negative)")
			}
		case string:
			mm := reNumericPrefix.FindStringSubmatch(t)
			if mm == nil {
				m[k] = 0.0
				changes = append(changes, k+"(unparseable)")
				return
			}
			f, err := strconv.ParseFloat(strings.ReplaceAll(mm[1], ",", "."), 64)
			if err != nil {
				f = 0
			}
			m[k] = f
			changes = append(changes, k+"(string)")
		default:
			m[k] = 0.0
			changes = append(changes, k+"(type)")
		}
	}
	for _, k := range NumericFields {
		coerce(k, true)
	}
	coerce("salt", false)

	if v, ok := m["confidence"]; ok {
		f, isNum := v.(float64)
		switch {
		case !isNum:
			delete(m, "confidence")
			changes = append(changes, "confidence(type)")
		case f < 0:
			m["confidence"] = 0.0
		case f > 1:
			m["confidence"] = 1.0
		}
	}

	switch v := m["servingSize"].(type) {
	case string:
		m["servingSize"] = strings.TrimSpace(v)
	case float64:
		m["servingSize"] = strconv.FormatFloat(v, 'f', -1, 64) + "g"
		changes = append(changes, "servingSize(number)")
	default:
		m["servingSize"] = ""
	}

	allowed := BuildNutritionJSONSchema()["properties"].(map[string]any)
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			changes = append(changes, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changes, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changes) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "changes", changes)
	}
	return out, changes, nil
}
