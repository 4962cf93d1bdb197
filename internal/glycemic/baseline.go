package glycemic

import (
	"errors"
	"fmt"

	"github.com/joseph-ayodele/nutrilabel/constants"
)

// Accepted fasting baseline range, mg/dL.
const (
	MinBaseline = 50
	MaxBaseline = 400
)

var ErrBaselineOutOfRange = errors.New("baseline out of range")

// Projection is an impact curve shifted onto a user's baseline.
type Projection struct {
	Baseline    float64                  `json:"baseline"`
	Status      constants.BaselineStatus `json:"status"`
	PeakGlucose float64                  `json:"peakGlucose"`
	Curve       []Point                  `json:"curve"`
}

// ValidateBaseline checks MinBaseline <= baseline <= MaxBaseline.
func ValidateBaseline(baseline float64) error {
	if !(baseline >= MinBaseline && baseline <= MaxBaseline) {
		return fmt.Errorf("%w: %v not in [%d, %d] mg/dL", ErrBaselineOutOfRange, baseline, MinBaseline, MaxBaseline)
	}
	return nil
}

// ClassifyBaseline applies the fasting glucose reference ranges.
func ClassifyBaseline(baseline float64) constants.BaselineStatus {
	switch {
	case baseline < 100:
		return constants.BaselineNormal
	case baseline < 126:
		return constants.BaselinePrediabetes
	default:
		return constants.BaselineDiabetes
	}
}

// ProjectFromBaseline returns absolute glucose readings for impact.
func ProjectFromBaseline(impact Impact, baseline float64) (Projection, error) {
	if err := ValidateBaseline(baseline); err != nil {
		return Projection{}, err
	}
	curve := make([]Point, len(impact.Curve))
	for i, p := range impact.Curve {
		curve[i] = Point{Time: p.Time, Value: baseline + p.Value}
	}
	return Projection{
		Baseline:    baseline,
		Status:      ClassifyBaseline(baseline),
		PeakGlucose: baseline + impact.PeakValue,
		Curve:       curve,
	}, nil
}
