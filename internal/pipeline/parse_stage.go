package processor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/llm"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
)

// Config holds confidence weights for the parse stage.
type Config struct {
	LLMConfidence float64 // default 0.90
	OCRWeight     float64 // share of OCR confidence in the rules score; default 0.40
}

// ParseInput is the text handed to stage 2.
type ParseInput struct {
	Text          string
	Region        constants.Region
	OCRConfidence float32
	FilePath      string
	PreferLLM     bool
}

// Parsed is the stage 2 outcome.
type Parsed struct {
	Nutrition  nutrition.Record
	Debug      *nutrition.DebugInfo
	Method     constants.ExtractionMethod
	Confidence float64
	Reasoning  string
	RawJSON    []byte
}

type ParseStage struct {
	Logger    *slog.Logger
	Cfg       Config
	Parser    *nutrition.Parser
	Extractor llm.FieldExtractor
}

// NewParseStage builds the parse stage. fe may be nil, in which case only
// the rule parsers run.
func NewParseStage(logger *slog.Logger, cfg Config, parser *nutrition.Parser, fe llm.FieldExtractor) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.LLMConfidence <= 0 {
		cfg.LLMConfidence = 0.90
	}
	if cfg.OCRWeight <= 0 || cfg.OCRWeight >= 1 {
		cfg.OCRWeight = 0.40
	}
	if parser == nil {
		parser = nutrition.NewParser(nutrition.DefaultLimits())
	}
	return &ParseStage{Logger: logger, Cfg: cfg, Parser: parser, Extractor: fe}
}

// Run extracts a nutrition record from in.Text. When the LLM path is
// requested and fails, the rule parsers run instead and the result is
// marked rules-fallback.
func (p *ParseStage) Run(ctx context.Context, in ParseInput) Parsed {
	if in.PreferLLM && p.Extractor != nil {
		fields, raw, err := p.Extractor.ExtractNutrition(ctx, llm.ExtractRequest{
			OCRText:        in.Text,
			Region:         in.Region,
			PrepConfidence: in.OCRConfidence,
			FilePath:       in.FilePath,
		})
		if err == nil {
			reasoning := strings.TrimSpace(fields.Reasoning)
			if reasoning == "" {
				reasoning = "extracted by language model"
			}
			p.Logger.Info("processor.parse.llm_ok", "region", in.Region, "calories", fields.Calories)
			return Parsed{
				Nutrition:  fields.ToRecord(in.Region),
				Method:     constants.MethodLLM,
				Confidence: p.Cfg.LLMConfidence,
				Reasoning:  reasoning,
				RawJSON:    raw,
			}
		}
		p.Logger.Warn("processor.parse.llm_failed", "region", in.Region, "fallback", constants.MethodRules, "error", err)
		out := p.rules(in)
		out.Method = constants.MethodRulesFallback
		out.Reasoning = "language model extraction failed (" + err.Error() + "); used label parser"
		return out
	}
	return p.rules(in)
}

func (p *ParseStage) rules(in ParseInput) Parsed {
	rec, debug := p.Parser.Extract(in.Text, in.Region)
	conf := p.rulesConfidence(debug, in.OCRConfidence)
	p.Logger.Info("processor.parse.rules_ok",
		"region", rec.Region,
		"matched", debug.MatchedCount(),
		"confidence", conf,
	)
	return Parsed{
		Nutrition:  rec,
		Debug:      &debug,
		Method:     constants.MethodRules,
		Confidence: conf,
		Reasoning:  "parsed with " + string(rec.Region) + " label patterns",
	}
}

// rulesConfidence is the matched share of the reported fields, blended
// with OCR confidence when there is one.
func (p *ParseStage) rulesConfidence(debug nutrition.DebugInfo, ocrConf float32) float64 {
	matched := 0
	for _, f := range nutrition.USFields {
		if debug.Matched(f) {
			matched++
		}
	}
	share := float64(matched) / float64(len(nutrition.USFields))
	if ocrConf <= 0 {
		return share
	}
	return (1-p.Cfg.OCRWeight)*share + p.Cfg.OCRWeight*float64(ocrConf)
}
