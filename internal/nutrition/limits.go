package nutrition

// Limits holds the plausibility bounds parsers apply to candidate values.
//
// ServingCeilings are the UK per-serving sanity ceilings: a candidate above
// its ceiling most likely came from the per-100g column and is rejected so
// the next pattern can be tried. They are approximations, not nutritional
// limits.
type Limits struct {
	MaxServingCalories float64
	ServingCeilings    map[Field]float64
}

// DefaultLimits returns the bounds used by the package level functions.
func DefaultLimits() Limits {
	return Limits{
		MaxServingCalories: 1000,
		ServingCeilings: map[Field]float64{
			FieldTotalCarbs: 30,
			FieldProtein:    15,
			FieldFat:        10,
			FieldSugars:     20,
			FieldFiber:      5,
		},
	}
}

// ceiling returns the accept func for f; fields without a ceiling only get
// the general bound.
func (l Limits) ceiling(f Field) Accept {
	c, ok := l.ServingCeilings[f]
	if !ok || c <= 0 {
		return within(MaxPlausibleValue)
	}
	return within(c)
}

// WithCeiling returns a copy of l with f's ceiling replaced. A value <= 0
// removes the ceiling.
func (l Limits) WithCeiling(f Field, v float64) Limits {
	out := Limits{MaxServingCalories: l.MaxServingCalories, ServingCeilings: make(map[Field]float64, len(l.ServingCeilings)+1)}
	for k, c := range l.ServingCeilings {
		out.ServingCeilings[k] = c
	}
	if v <= 0 {
		delete(out.ServingCeilings, f)
	} else {
		out.ServingCeilings[f] = v
	}
	return out
}
