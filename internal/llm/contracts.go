package llm

import (
	"context"
	"strings"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
)

// Fields is the normalized shape we want from the LLM. Numbers are per serving.
type Fields struct {
	ServingSize string   `json:"servingSize"`
	Calories    float64  `json:"calories"`
	TotalCarbs  float64  `json:"totalCarbs"`
	Sugars      float64  `json:"sugars"`
	Fiber       float64  `json:"fiber"`
	Protein     float64  `json:"protein"`
	Fat         float64  `json:"fat"`
	Salt        *float64 `json:"salt,omitempty"`

	ModelConfidence float32 `json:"confidence,omitempty"` // optional (0..1)
	Reasoning       string  `json:"reasoning,omitempty"`
}

type ExtractRequest struct {
	OCRText string
	Region  constants.Region

	PrepConfidence float32
	FilePath       string
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractNutrition(ctx context.Context, req ExtractRequest) (Fields, []byte /*rawJSON*/, error)
}

// ToRecord converts model output into a nutrition.Record, clamping negatives.
func (f Fields) ToRecord(region constants.Region) nutrition.Record {
	rec := nutrition.NewRecord(region)
	if s := strings.TrimSpace(f.ServingSize); s != "" {
		rec.ServingSize = s
	}
	rec.Calories = nonNegative(f.Calories)
	rec.TotalCarbs = nonNegative(f.TotalCarbs)
	rec.Sugars = nonNegative(f.Sugars)
	rec.Fiber = nonNegative(f.Fiber)
	rec.Protein = nonNegative(f.Protein)
	rec.Fat = nonNegative(f.Fat)
	if f.Salt != nil {
		rec.Salt = nonNegative(*f.Salt)
	}
	return rec
}

func nonNegative(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	return v
}
