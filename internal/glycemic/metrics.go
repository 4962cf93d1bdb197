// Package glycemic estimates the blood glucose response to a serving of
// food from its nutrition record. The model is a heuristic, not a clinical
// glycemic index predictor.
package glycemic

import (
	"math"

	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
)

// Metrics are the derived quantities the response curve is built from.
type Metrics struct {
	NetCarbs        float64 `json:"netCarbs"`
	EstimatedGI     float64 `json:"estimatedGI"`
	GlycemicLoad    float64 `json:"glycemicLoad"`
	ProteinFatRatio float64 `json:"proteinFatRatio"`
}

// ComputeMetrics derives net carbs, estimated GI, glycemic load and the
// protein+fat to net carb ratio. Negative or non finite inputs count as 0.
func ComputeMetrics(rec nutrition.Record) Metrics {
	carbs := sanitize(rec.TotalCarbs)
	fiber := sanitize(rec.Fiber)
	sugars := sanitize(rec.Sugars)
	protein := sanitize(rec.Protein)
	fat := sanitize(rec.Fat)

	netCarbs := math.Max(0, carbs-fiber)
	sugarRatio := sugars / math.Max(carbs, 1)
	fiberImpact := 1 - math.Min(0.3, fiber/10)
	gi := 40 + sugarRatio*30 + fiberImpact*30

	return Metrics{
		NetCarbs:        netCarbs,
		EstimatedGI:     gi,
		GlycemicLoad:    gi * netCarbs / 100,
		ProteinFatRatio: (protein + fat) / math.Max(netCarbs, 1),
	}
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
