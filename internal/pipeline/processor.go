package processor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/glycemic"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

// AnalyzeRequest carries either label text or an image path.
type AnalyzeRequest struct {
	Text      string
	ImagePath string
	Region    constants.Region
	PreferLLM bool
	Baseline  float64 // fasting mg/dL; 0 skips projection
}

// Result is the analysis envelope returned to callers.
type Result struct {
	ScanID           uuid.UUID                  `json:"scanId,omitempty"`
	Text             string                     `json:"text"`
	Nutrition        nutrition.Record           `json:"nutrition"`
	Debug            *nutrition.DebugInfo       `json:"debug,omitempty"`
	Impact           glycemic.Impact            `json:"impact"`
	Metrics          glycemic.Metrics           `json:"metrics"`
	Projection       *glycemic.Projection       `json:"projected,omitempty"`
	ExtractionMethod constants.ExtractionMethod `json:"extractionMethod"`
	Confidence       float64                    `json:"confidence"`
	Reasoning        string                     `json:"reasoning,omitempty"`
}

// Processor coordinates OCR (text extract), field parsing and the glycemic
// model, and records each scan when a repository is configured.
type Processor struct {
	Logger        *slog.Logger
	OCR           *OCRStage
	Parse         *ParseStage
	Scans         repository.ScanRepository
	DefaultRegion constants.Region
}

func NewProcessor(logger *slog.Logger, ocr *OCRStage, parse *ParseStage, scans repository.ScanRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if parse == nil {
		parse = NewParseStage(logger, Config{}, nil, nil)
	}
	return &Processor{Logger: logger, OCR: ocr, Parse: parse, Scans: scans, DefaultRegion: constants.DefaultRegion}
}

// Analyze runs the whole label pipeline for one request.
func (p *Processor) Analyze(ctx context.Context, req AnalyzeRequest) (Result, error) {
	hasText := strings.TrimSpace(req.Text) != ""
	hasImage := req.ImagePath != ""
	if hasText == hasImage {
		return Result{}, common.NewAppError("INVALID_REQUEST", "exactly one of text or image is required", common.ErrInvalidInput)
	}
	if err := validateBaseline(req.Baseline); err != nil {
		return Result{}, err
	}
	region := req.Region
	if region == "" {
		region = p.DefaultRegion
	}

	in := ParseInput{Text: req.Text, Region: region, PreferLLM: req.PreferLLM}
	if hasImage {
		if p.OCR == nil {
			return Result{}, common.NewAppError("OCR_UNAVAILABLE", "image analysis is not configured", common.ErrExtraction)
		}
		res, err := p.OCR.Run(ctx, req.ImagePath)
		if err != nil {
			return Result{}, err
		}
		p.Logger.Info("processor.ocr.ok",
			"path", req.ImagePath,
			"method", res.Method,
			"confidence", res.Confidence,
			"elapsed_ms", res.Duration.Milliseconds(),
		)
		in.Text = res.RawText
		if in.Text == "" {
			in.Text = res.Text
		}
		in.OCRConfidence = res.Confidence
		in.FilePath = req.ImagePath
	}

	parsed := p.Parse.Run(ctx, in)
	out := Result{
		Text:             in.Text,
		Nutrition:        parsed.Nutrition,
		Debug:            parsed.Debug,
		ExtractionMethod: parsed.Method,
		Confidence:       parsed.Confidence,
		Reasoning:        parsed.Reasoning,
	}
	if err := p.finish(ctx, &out, req.Baseline); err != nil {
		return Result{}, err
	}
	return out, nil
}

// ComputeManual recomputes the impact of a user edited record.
func (p *Processor) ComputeManual(ctx context.Context, rec nutrition.Record, baseline float64) (Result, error) {
	if err := ValidateRecord(rec); err != nil {
		return Result{}, err
	}
	if err := validateBaseline(baseline); err != nil {
		return Result{}, err
	}
	if rec.Region == "" {
		rec.Region = p.DefaultRegion
	}
	if strings.TrimSpace(rec.ServingSize) == "" {
		rec.ServingSize = nutrition.DefaultServingSize
	}
	out := Result{
		Nutrition:        rec,
		ExtractionMethod: constants.MethodManual,
		Confidence:       1,
		Reasoning:        "values entered manually",
	}
	if err := p.finish(ctx, &out, baseline); err != nil {
		return Result{}, err
	}
	return out, nil
}

// ValidateRecord rejects negative or non-finite nutrient values.
func ValidateRecord(rec nutrition.Record) error {
	v := common.NewValidator()
	for _, f := range nutrition.UKFields {
		if f == nutrition.FieldServingSize {
			continue
		}
		v.Field(string(f), rec.Value(f), common.NonNegative)
	}
	if v.HasErrors() {
		return common.NewAppError("INVALID_NUTRITION", v.ErrorMessage(), common.ErrValidation)
	}
	return nil
}

func validateBaseline(baseline float64) error {
	if baseline == 0 {
		return nil
	}
	if err := glycemic.ValidateBaseline(baseline); err != nil {
		return common.NewAppError("INVALID_BASELINE", err.Error(), common.ErrInvalidInput)
	}
	return nil
}

// finish attaches the glycemic model output and persists the scan.
func (p *Processor) finish(ctx context.Context, out *Result, baseline float64) error {
	out.Metrics = glycemic.ComputeMetrics(out.Nutrition)
	out.Impact = glycemic.EstimateImpact(out.Metrics)
	if baseline != 0 {
		proj, err := glycemic.ProjectFromBaseline(out.Impact, baseline)
		if err != nil {
			return common.NewAppError("INVALID_BASELINE", err.Error(), common.ErrInvalidInput)
		}
		out.Projection = &proj
	}

	log := common.LoggerFromContext(ctx, p.Logger)
	log.Info("processor.analyze.ok",
		"region", out.Nutrition.Region,
		"method", out.ExtractionMethod,
		"glycemic_load", out.Metrics.GlycemicLoad,
		"impact", out.Impact.OverallImpact,
		"confidence", out.Confidence,
	)

	if p.Scans == nil {
		return nil
	}
	scan := &repository.Scan{
		Region:       out.Nutrition.Region,
		Method:       out.ExtractionMethod,
		Confidence:   out.Confidence,
		Nutrition:    out.Nutrition,
		GlycemicLoad: out.Metrics.GlycemicLoad,
		Impact:       out.Impact.OverallImpact,
		PeakValue:    out.Impact.PeakValue,
		TimeToReturn: out.Impact.TimeToReturn,
		RawText:      out.Text,
	}
	// history is best effort
	if err := p.Scans.Save(ctx, scan); err != nil {
		log.Error("processor.save.failed", "error", err)
		return nil
	}
	out.ScanID = scan.ID
	return nil
}
