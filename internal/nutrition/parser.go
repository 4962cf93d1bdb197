package nutrition

import (
	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/ocr"
)

// Parser routes label text to the layout parser for a region. A Parser is
// immutable after construction and safe for concurrent use.
type Parser struct {
	limits Limits
	us     usParser
	uk     ukParser
}

func NewParser(limits Limits) *Parser {
	if limits.MaxServingCalories <= 0 {
		limits.MaxServingCalories = DefaultLimits().MaxServingCalories
	}
	if limits.ServingCeilings == nil {
		limits.ServingCeilings = DefaultLimits().ServingCeilings
	}
	return &Parser{limits: limits, us: newUSParser(), uk: newUKParser(limits)}
}

var defaultParser = NewParser(DefaultLimits())

// Limits returns the bounds p was built with.
func (p *Parser) Limits() Limits { return p.limits }

// Extract normalizes raw OCR text and parses it with the layout of region.
// UK uses the three column parser; US, EU, CA and unknown regions use the
// single column parser. It never fails: unmatched fields keep defaults.
func (p *Parser) Extract(raw string, region constants.Region) (Record, DebugInfo) {
	text := ocr.Normalize(raw)
	if region.UsesColumnLayout() {
		return p.ExtractUK(text)
	}
	if region == "" {
		region = constants.DefaultRegion
	}
	return p.us.extract(text, region)
}

// ExtractUS parses already normalized text as a single column label.
func (p *Parser) ExtractUS(normalized string) (Record, DebugInfo) {
	return p.us.extract(normalized, constants.RegionUS)
}

// ExtractUK parses already normalized text as a three column label.
func (p *Parser) ExtractUK(normalized string) (Record, DebugInfo) {
	return p.uk.extract(normalized)
}

// Extract uses the default limits.
func Extract(raw string, region constants.Region) (Record, DebugInfo) {
	return defaultParser.Extract(raw, region)
}

func ExtractUS(normalized string) (Record, DebugInfo) { return defaultParser.ExtractUS(normalized) }

func ExtractUK(normalized string) (Record, DebugInfo) { return defaultParser.ExtractUK(normalized) }
