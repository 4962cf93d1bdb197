package nutrition

import (
	"testing"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/ocr"
)

const ukBreadLabel = `Nutrition Typical values 100g Each slice (typically % RI* for an contains 44g) contains RI average adult
Energy 985kJ 435kJ 8400kJ 235kcal 105kcal 5% 2000kcal
Fat 1.5g 0.7g 1% 70g
of which saturates 0.3g 0.1g 1% 20g
Carbohydrate 45.5g 20.0g
of which sugars 3.8g 1.7g 2% 909
Fibre 2.8g 1.2g
Protein 7.7g 3.4g
Salt 1.0g 0.4g 7% 6g
This pack contains 16 servings "Reference intake of an average adult (8400kJ/2000kcal)`

func TestExtractUKBreadLabel(t *testing.T) {
	rec, dbg := Extract(ukBreadLabel, constants.RegionUK)

	want := Record{
		Region:      constants.RegionUK,
		ServingSize: "44g (slice)",
		Calories:    105,
		TotalCarbs:  20,
		Sugars:      1.7,
		Fiber:       1.2,
		Protein:     3.4,
		Fat:         0.7,
		Salt:        0.4,
	}
	rec.ServingDescription = ""
	if rec != want {
		t.Fatalf("Extract UK =\n%+v\nwant\n%+v", rec, want)
	}
	for _, f := range UKFields {
		if !dbg.Matched(f) {
			t.Errorf("field %s not matched: %+v", f, dbg.Fields[f])
		}
	}
}

func TestExtractUKColumnSelection(t *testing.T) {
	rec, _ := ExtractUK(ocr.Normalize("Carbohydrate 45.5g 20.0g of which sugars 3.8g 1.7g"))
	if rec.TotalCarbs != 20.0 {
		t.Errorf("TotalCarbs = %v; want 20.0", rec.TotalCarbs)
	}
	if rec.Sugars != 1.7 {
		t.Errorf("Sugars = %v; want 1.7", rec.Sugars)
	}
}

func TestExtractUKEnergyColumn(t *testing.T) {
	rec, dbg := Extract("Energy 985kJ / 235kcal 435kJ / 105kcal 5% 8400kJ / 2000kcal", constants.RegionUK)
	if rec.Calories != 105 {
		t.Fatalf("Calories = %v; want 105", rec.Calories)
	}
	if got := dbg.Fields[FieldCalories].Matcher; got != "uk.calories.energy-pairs" {
		t.Fatalf("calories matcher = %s", got)
	}
}

func TestExtractUKCaloriesBound(t *testing.T) {
	rec, dbg := Extract("Energy 985kJ / 2350kcal 4350kJ / 1050kcal", constants.RegionUK)
	if rec.Calories != 0 || dbg.Matched(FieldCalories) {
		t.Fatalf("calories above 1000 should be rejected, got %v", rec.Calories)
	}
}

func TestExtractUKCeilingRejectsPer100g(t *testing.T) {
	rec, dbg := Extract("Carbohydrate 45.5g", constants.RegionUK)
	if rec.TotalCarbs != 0 {
		t.Fatalf("TotalCarbs = %v; 45.5 exceeds the serving ceiling", rec.TotalCarbs)
	}
	if dbg.Matched(FieldTotalCarbs) || dbg.Fields[FieldTotalCarbs].Matcher != NoMatch {
		t.Fatalf("expected no match marker, got %+v", dbg.Fields[FieldTotalCarbs])
	}
}

func TestExtractUKCustomCeiling(t *testing.T) {
	p := NewParser(DefaultLimits().WithCeiling(FieldTotalCarbs, 0))
	rec, _ := p.Extract("Carbohydrate 45.5g", constants.RegionUK)
	if rec.TotalCarbs != 45.5 {
		t.Fatalf("TotalCarbs = %v; want 45.5 with ceiling removed", rec.TotalCarbs)
	}
	if DefaultLimits().ServingCeilings[FieldTotalCarbs] != 30 {
		t.Fatal("WithCeiling must not mutate the receiver")
	}
}

func TestExtractUKDefaults(t *testing.T) {
	rec, dbg := ExtractUK("")
	if rec.ServingSize != DefaultServingSize || rec.Calories != 0 || rec.Salt != 0 {
		t.Fatalf("unexpected defaults %+v", rec)
	}
	if dbg.MatchedCount() != 0 || len(dbg.Fields) != len(UKFields) {
		t.Fatalf("unexpected debug info %+v", dbg)
	}
}
