package constants

// ImpactLevel is the categorical blood sugar impact of a food.
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "Low"
	ImpactModerate ImpactLevel = "Moderate"
	ImpactHigh     ImpactLevel = "High"
)

// ExtractionMethod records which extractor produced a nutrition record.
type ExtractionMethod string

// Stable values (stored in the scans table).
const (
	MethodRules         ExtractionMethod = "rules"          // regex label parsers
	MethodLLM           ExtractionMethod = "llm"            // LLM extractor
	MethodRulesFallback ExtractionMethod = "rules-fallback" // LLM failed, rules used
	MethodManual        ExtractionMethod = "manual"         // user supplied values
)

// BaselineStatus classifies a fasting blood glucose reading.
type BaselineStatus string

const (
	BaselineNormal      BaselineStatus = "Normal"
	BaselinePrediabetes BaselineStatus = "Prediabetes"
	BaselineDiabetes    BaselineStatus = "Diabetes"
)
