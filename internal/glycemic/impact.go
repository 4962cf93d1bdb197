package glycemic

import (
	"math"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
)

// CurveStep is the sampling interval of the response curve, in minutes.
const CurveStep = 5

// Impact tiers by glycemic load.
const (
	ModerateLoad = 10
	HighLoad     = 20
)

// Point is one curve sample: minutes after eating and mg/dL above baseline.
type Point struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// Impact is the estimated blood glucose response to one serving.
type Impact struct {
	PeakValue     float64               `json:"peakValue"`
	TimeToReturn  float64               `json:"timeToReturn"`
	PeakTime      float64               `json:"peakTime"`
	OverallImpact constants.ImpactLevel `json:"overallImpact"`
	Curve         []Point               `json:"curve"`
}

// ComputeImpact is EstimateImpact(ComputeMetrics(rec)). It is pure: equal
// records give equal impacts, and every call returns a fresh curve.
func ComputeImpact(rec nutrition.Record) Impact {
	return EstimateImpact(ComputeMetrics(rec))
}

// EstimateImpact turns metrics into a peak, a return time and a sampled
// curve that rises to the peak at 30% of the return time, then decays
// exponentially.
func EstimateImpact(m Metrics) Impact {
	peak := m.GlycemicLoad * 5
	if m.ProteinFatRatio > 0.5 {
		peak *= 1 - math.Min(0.4, (m.ProteinFatRatio-0.5)*0.2)
	}

	ttr := 45 + m.GlycemicLoad*5
	if m.ProteinFatRatio > 1 {
		ttr *= 1 + math.Min(0.5, (m.ProteinFatRatio-1)*0.1)
	}
	peakTime := ttr * 0.3

	return Impact{
		PeakValue:     peak,
		TimeToReturn:  ttr,
		PeakTime:      peakTime,
		OverallImpact: Classify(m.GlycemicLoad),
		Curve:         sampleCurve(peak, peakTime, ttr),
	}
}

func sampleCurve(peak, peakTime, ttr float64) []Point {
	curve := make([]Point, 0, int(ttr/CurveStep)+1)
	for t := 0.0; t <= ttr; t += CurveStep {
		curve = append(curve, Point{Time: t, Value: curveValue(peak, peakTime, ttr, t)})
	}
	return curve
}

func curveValue(peak, peakTime, ttr, t float64) float64 {
	if t <= peakTime {
		if t == 0 || peakTime == 0 {
			return 0
		}
		r := t / peakTime
		return peak * r / (0.2 + 0.8*r)
	}
	r := (t - peakTime) / (ttr - peakTime)
	return peak * math.Exp(-2*r)
}

// Classify maps a glycemic load onto an impact tier. Bounds are exclusive:
// a load of exactly 10 is Moderate and exactly 20 is High.
func Classify(load float64) constants.ImpactLevel {
	switch {
	case load < ModerateLoad:
		return constants.ImpactLow
	case load < HighLoad:
		return constants.ImpactModerate
	default:
		return constants.ImpactHigh
	}
}
