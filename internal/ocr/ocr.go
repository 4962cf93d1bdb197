package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/nutrilabel/constants"
)

type Config struct {
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng"
	TessdataDir   string

	EnableTSVConfidence bool

	PSM int // 6 suits the uniform block of a nutrition panel
	OEM int // 1 = LSTM; leave 0 to use default
}

type ExtractionResult struct {
	Text       string // normalized
	RawText    string
	SourceType string // "IMAGE" | "TXT"
	Method     string // "image-ocr" | "text"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner, mainly for tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		e.logger.Error("unsupported ocr extension", "extension", ext, "path", path)
		return ExtractionResult{}, fmt.Errorf("unsupported extension: %q", ext)
	}
	e.logger.Debug("starting ocr extraction", "path", path, "ext", ext)

	var (
		res ExtractionResult
		err error
	)
	if constants.FileTypeForExt(ext) == "TXT" {
		res, err = e.extractText(path)
	} else {
		res, err = e.extractImage(ctx, path)
	}
	res.Duration = time.Since(start)
	return res, err
}

// extractText accepts text that was already OCR'd elsewhere.
func (e *Extractor) extractText(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{SourceType: "TXT"}, fmt.Errorf("read text: %w", err)
	}
	txt := Normalize(string(b))
	return ExtractionResult{
		Text:       txt,
		RawText:    string(b),
		SourceType: "TXT",
		Method:     "text",
		Confidence: heuristicConfidence(txt),
	}, nil
}
