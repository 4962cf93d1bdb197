package processor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/ocr"
)

// TextExtractor is stage 1: file -> text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (ocr.ExtractionResult, error)
}

type OCRStage struct {
	TextExtractor TextExtractor
	Logger        *slog.Logger
}

func NewOCRStage(tx TextExtractor, logger *slog.Logger) *OCRStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStage{TextExtractor: tx, Logger: logger}
}

// Run extracts text from the file at path. Low confidence image OCR is
// logged but not rejected; the parse stage folds confidence into its score.
func (s *OCRStage) Run(ctx context.Context, path string) (ocr.ExtractionResult, error) {
	if s.TextExtractor == nil {
		return ocr.ExtractionResult{}, common.NewAppError("OCR_UNAVAILABLE", "no text extractor configured", common.ErrExtraction)
	}
	res, err := s.TextExtractor.Extract(ctx, path)
	if err != nil {
		s.Logger.Error("processor.ocr.failed", "path", path, "error", err)
		return res, fmt.Errorf("ocr %s: %w: %v", path, common.ErrExtraction, err)
	}
	if res.SourceType == "IMAGE" && res.Confidence > 0 && res.Confidence < ocr.ImageConfidenceThreshold {
		s.Logger.Warn("processor.ocr.low_confidence", "path", path, "conf", res.Confidence)
	}
	return res, nil
}
