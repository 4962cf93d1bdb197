package glycemic

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
)

func TestComputeImpactZeroRecord(t *testing.T) {
	im := ComputeImpact(nutrition.NewRecord(constants.RegionUS))
	m := ComputeMetrics(nutrition.Record{})
	if m.GlycemicLoad != 0 {
		t.Fatalf("GlycemicLoad = %v; want 0", m.GlycemicLoad)
	}
	if im.OverallImpact != constants.ImpactLow || im.PeakValue != 0 {
		t.Fatalf("impact = %s peak %v; want Low, 0", im.OverallImpact, im.PeakValue)
	}
	if im.TimeToReturn != 45 {
		t.Fatalf("TimeToReturn = %v; want 45", im.TimeToReturn)
	}
	for _, p := range im.Curve {
		if p.Value != 0 {
			t.Fatalf("curve point %+v should be 0", p)
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		carbs float64
		load  float64
		want  constants.ImpactLevel
	}{
		{9.99, 9.99, constants.ImpactLow},
		{10, 10, constants.ImpactModerate},
		{19.99, 19.99, constants.ImpactModerate},
		{20, 20, constants.ImpactHigh},
	}
	for _, tt := range tests {
		// sugars == carbs and no fiber gives GI 100, so load == net carbs.
		rec := nutrition.Record{TotalCarbs: tt.carbs, Sugars: tt.carbs}
		m := ComputeMetrics(rec)
		if math.Abs(m.GlycemicLoad-tt.load) > 1e-9 {
			t.Fatalf("load = %v; want %v", m.GlycemicLoad, tt.load)
		}
		if got := ComputeImpact(rec).OverallImpact; got != tt.want {
			t.Errorf("load %v: impact %s; want %s", tt.load, got, tt.want)
		}
	}
	if Classify(10) != constants.ImpactModerate || Classify(20) != constants.ImpactHigh {
		t.Fatal("tier bounds must be exclusive")
	}
}

func TestComputeMetrics(t *testing.T) {
	m := ComputeMetrics(nutrition.Record{TotalCarbs: 22, Fiber: 2, Sugars: 19, Protein: 1, Fat: 0})
	if m.NetCarbs != 20 {
		t.Fatalf("NetCarbs = %v", m.NetCarbs)
	}
	wantGI := 40 + (19.0/22.0)*30 + (1-0.2)*30
	if math.Abs(m.EstimatedGI-wantGI) > 1e-9 {
		t.Fatalf("EstimatedGI = %v; want %v", m.EstimatedGI, wantGI)
	}
	if math.Abs(m.GlycemicLoad-wantGI*20/100) > 1e-9 {
		t.Fatalf("GlycemicLoad = %v", m.GlycemicLoad)
	}
	if m.ProteinFatRatio != 1.0/20.0 {
		t.Fatalf("ProteinFatRatio = %v", m.ProteinFatRatio)
	}

	// Fiber above total carbs clamps net carbs and caps the fiber effect.
	m = ComputeMetrics(nutrition.Record{TotalCarbs: 2, Fiber: 8})
	if m.NetCarbs != 0 || math.Abs(m.EstimatedGI-61) > 1e-9 {
		t.Fatalf("clamped metrics %+v", m)
	}
}

func TestEstimateImpactDampening(t *testing.T) {
	base := EstimateImpact(Metrics{GlycemicLoad: 10})
	if base.PeakValue != 50 || base.TimeToReturn != 95 || math.Abs(base.PeakTime-28.5) > 1e-9 {
		t.Fatalf("undampened impact %+v", base)
	}

	// ratio 3: peak *= 1 - min(0.4, 0.5) = 0.6, ttr *= 1 + min(0.5, 0.2) = 1.2
	d := EstimateImpact(Metrics{GlycemicLoad: 10, ProteinFatRatio: 3})
	if math.Abs(d.PeakValue-30) > 1e-9 || math.Abs(d.TimeToReturn-114) > 1e-9 {
		t.Fatalf("dampened impact peak %v ttr %v", d.PeakValue, d.TimeToReturn)
	}
}

func TestCurveShape(t *testing.T) {
	im := EstimateImpact(Metrics{GlycemicLoad: 10})
	if len(im.Curve) != 20 {
		t.Fatalf("len(curve) = %d; want 20 samples for 0..95", len(im.Curve))
	}
	if im.Curve[0].Time != 0 || im.Curve[0].Value != 0 {
		t.Fatalf("first point %+v", im.Curve[0])
	}
	last := im.Curve[len(im.Curve)-1]
	if last.Time != 95 || math.Abs(last.Value-50*math.Exp(-2)) > 1e-9 {
		t.Fatalf("last point %+v", last)
	}
	var maxV float64
	for i, p := range im.Curve {
		if i > 0 && p.Time-im.Curve[i-1].Time != CurveStep {
			t.Fatalf("uneven step at %d", i)
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) || p.Value < 0 || p.Value > im.PeakValue {
			t.Fatalf("bad point %+v", p)
		}
		if p.Value > maxV {
			maxV = p.Value
		}
	}
	// The peak sample is at t=25 (peak time 28.5 is between samples).
	if want := 50 * (25 / 28.5) / (0.2 + 0.8*25/28.5); math.Abs(maxV-want) > 1e-9 {
		t.Fatalf("max sample %v; want %v", maxV, want)
	}
}

func TestComputeImpactPure(t *testing.T) {
	rec := nutrition.Record{TotalCarbs: 45, Sugars: 12, Fiber: 3, Protein: 8, Fat: 6}
	a := ComputeImpact(rec)
	b := ComputeImpact(rec)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("ComputeImpact is not deterministic")
	}
	a.Curve[0].Value = 999
	if b.Curve[0].Value == 999 {
		t.Fatal("curves must not be shared between calls")
	}
}

func TestComputeImpactBadInputs(t *testing.T) {
	im := ComputeImpact(nutrition.Record{TotalCarbs: math.NaN(), Sugars: math.Inf(1), Fat: -5})
	if im.PeakValue != 0 || im.OverallImpact != constants.ImpactLow {
		t.Fatalf("non finite input should be treated as 0, got %+v", im)
	}
}

func TestProjectFromBaseline(t *testing.T) {
	im := EstimateImpact(Metrics{GlycemicLoad: 10})
	p, err := ProjectFromBaseline(im, 90)
	if err != nil {
		t.Fatalf("ProjectFromBaseline: %v", err)
	}
	if p.PeakGlucose != 140 || p.Status != constants.BaselineNormal {
		t.Fatalf("projection %+v", p)
	}
	if len(p.Curve) != len(im.Curve) || p.Curve[0].Value != 90 {
		t.Fatalf("projected curve %+v", p.Curve[:1])
	}
	if im.Curve[0].Value != 0 {
		t.Fatal("projection must not modify the impact curve")
	}

	for _, b := range []float64{49.9, 400.1, math.NaN()} {
		if _, err := ProjectFromBaseline(im, b); !errors.Is(err, ErrBaselineOutOfRange) {
			t.Errorf("baseline %v: err = %v", b, err)
		}
	}
	for _, b := range []float64{50, 400} {
		if _, err := ProjectFromBaseline(im, b); err != nil {
			t.Errorf("baseline %v should be accepted: %v", b, err)
		}
	}
}

func TestClassifyBaseline(t *testing.T) {
	tests := []struct {
		in   float64
		want constants.BaselineStatus
	}{
		{85, constants.BaselineNormal},
		{99.9, constants.BaselineNormal},
		{100, constants.BaselinePrediabetes},
		{125, constants.BaselinePrediabetes},
		{126, constants.BaselineDiabetes},
	}
	for _, tt := range tests {
		if got := ClassifyBaseline(tt.in); got != tt.want {
			t.Errorf("ClassifyBaseline(%v) = %s; want %s", tt.in, got, tt.want)
		}
	}
}
