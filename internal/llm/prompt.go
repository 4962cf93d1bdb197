package llm

import (
	"strings"

	"github.com/joseph-ayodele/nutrilabel/constants"
)

// MaxPromptText caps how much OCR text is sent to the model.
const MaxPromptText = 3000

// BuildSystemPrompt composes the system message with the region-specific
// column rules and strict-but-practical formatting rules.
func BuildSystemPrompt(req ExtractRequest) string {
	region := req.Region
	if region == "" {
		region = constants.DefaultRegion
	}

	parts := []string{
		"You are a nutrition label expert. Return ONLY JSON that matches the provided JSON Schema.",
		"Label region: " + string(region) + ".",
		"All numbers are per serving. Return bare numbers without units such as g or kcal.",
		"If a value is not present, use 0. Never output null.",
		"Be very careful to distinguish per-serving values from per-100g values.",
	}
	if region.UsesColumnLayout() {
		parts = append(parts,
			"UK labels print a per-100g column and a per-serving column (\"Each slice contains\", \"Per serving\"). Use the per-serving column, which is usually the middle one, never the 100g column.",
			"For 'servingSize' write the serving weight followed by the unit in parentheses, e.g. \"44g (slice)\".",
			"Report 'calories' in kcal, not kJ. Include 'salt' in grams when present.",
		)
	} else {
		parts = append(parts,
			"For 'servingSize' copy the label's serving size, e.g. \"1 cup (240ml)\".",
			"'totalCarbs' is Total Carbohydrate; 'sugars' is Total Sugars, not Added Sugars.",
			"Ignore percent daily values.",
		)
	}
	parts = append(parts,
		"Set 'confidence' between 0 and 1 and give a one-sentence 'reasoning'.",
	)
	return strings.Join(parts, " ")
}

// BuildUserPrompt wraps the OCR text.
func BuildUserPrompt(ocrText string) string {
	var b strings.Builder
	b.WriteString("OCR text (first ~3k chars):\n")
	if len(ocrText) > MaxPromptText {
		b.WriteString(ocrText[:MaxPromptText])
	} else {
		b.WriteString(ocrText)
	}
	b.WriteString("\n\nReturn ONLY JSON that matches the provided schema.")
	return b.String()
}
