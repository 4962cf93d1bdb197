package llm

// NumericFields are the per-serving quantities the model must return.
var NumericFields = []string{"calories", "totalCarbs", "sugars", "fiber", "protein", "fat"}

// BuildNutritionJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// We pass this to the model as a structured output constraint and also use it locally to validate.
func BuildNutritionJSONSchema() map[string]any {
	props := map[string]any{
		"servingSize": map[string]any{"type": "string"},
		"salt":        quantityProp(),
		"confidence":  map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"reasoning":   map[string]any{"type": "string"},
	}
	for _, k := range NumericFields {
		props[k] = quantityProp()
	}
	required := append([]string{"servingSize"}, NumericFields...)

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
}

func quantityProp() map[string]any {
	return map[string]any{
		"type":    "number",
		"minimum": 0,
	}
}
