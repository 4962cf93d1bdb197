package nutrition

import (
	"github.com/joseph-ayodele/nutrilabel/constants"
)

// DefaultServingSize is used when no serving size could be located.
const DefaultServingSize = "1 serving"

// Record is the structured nutrition content of one label. All numeric
// fields are per serving and never negative; a field that could not be
// located keeps its zero value.
type Record struct {
	Region      constants.Region `json:"country,omitempty"`
	ServingSize string           `json:"servingSize"`
	Calories    float64          `json:"calories"`
	TotalCarbs  float64          `json:"totalCarbs"`
	Sugars      float64          `json:"sugars"`
	Fiber       float64          `json:"fiber"`
	Protein     float64          `json:"protein"`
	Fat         float64          `json:"fat"`

	// UK labels only.
	Salt               float64 `json:"salt,omitempty"`
	ServingDescription string  `json:"servingDescription,omitempty"`
}

// NewRecord returns a record holding the defaults for region.
func NewRecord(region constants.Region) Record {
	return Record{Region: region, ServingSize: DefaultServingSize}
}

// Field names a located value of a Record.
type Field string

const (
	FieldServingSize Field = "servingSize"
	FieldCalories    Field = "calories"
	FieldTotalCarbs  Field = "totalCarbs"
	FieldSugars      Field = "sugars"
	FieldFiber       Field = "fiber"
	FieldProtein     Field = "protein"
	FieldFat         Field = "fat"
	FieldSalt        Field = "salt"
)

// USFields lists the fields every parser reports on, in report order.
var USFields = []Field{
	FieldServingSize, FieldCalories, FieldTotalCarbs, FieldSugars, FieldFiber, FieldProtein, FieldFat,
}

// UKFields adds salt to USFields.
var UKFields = append(append([]Field{}, USFields...), FieldSalt)

// NoMatch marks a field for which every matcher failed or was rejected.
const NoMatch = "no pattern matched"

// Provenance describes where one field's value came from.
type Provenance struct {
	Matched bool   `json:"matched"`
	Matcher string `json:"matcher"`
	Source  string `json:"source,omitempty"`
}

// DebugInfo is the per-field provenance of one extraction.
type DebugInfo struct {
	Region constants.Region     `json:"region"`
	Fields map[Field]Provenance `json:"fields"`
}

func newDebugInfo(region constants.Region, fields []Field) DebugInfo {
	d := DebugInfo{Region: region, Fields: make(map[Field]Provenance, len(fields))}
	for _, f := range fields {
		d.Fields[f] = Provenance{Matcher: NoMatch}
	}
	return d
}

func (d DebugInfo) record(f Field, r MatchResult) {
	d.Fields[f] = Provenance{Matched: true, Matcher: r.Matcher, Source: r.Source}
}

// Matched reports whether f was located.
func (d DebugInfo) Matched(f Field) bool {
	return d.Fields[f].Matched
}

// MatchedCount returns how many fields were located.
func (d DebugInfo) MatchedCount() int {
	n := 0
	for _, p := range d.Fields {
		if p.Matched {
			n++
		}
	}
	return n
}

func (r *Record) set(f Field, v float64) {
	switch f {
	case FieldCalories:
		r.Calories = v
	case FieldTotalCarbs:
		r.TotalCarbs = v
	case FieldSugars:
		r.Sugars = v
	case FieldFiber:
		r.Fiber = v
	case FieldProtein:
		r.Protein = v
	case FieldFat:
		r.Fat = v
	case FieldSalt:
		r.Salt = v
	}
}

// Value returns the numeric value of f, or 0 for non numeric fields.
func (r Record) Value(f Field) float64 {
	switch f {
	case FieldCalories:
		return r.Calories
	case FieldTotalCarbs:
		return r.TotalCarbs
	case FieldSugars:
		return r.Sugars
	case FieldFiber:
		return r.Fiber
	case FieldProtein:
		return r.Protein
	case FieldFat:
		return r.Fat
	case FieldSalt:
		return r.Salt
	}
	return 0
}
