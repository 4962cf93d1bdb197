// Package app wires configuration into the database, OCR, LLM and processor
// layers shared by the binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/export"
	"github.com/joseph-ayodele/nutrilabel/internal/llm"
	"github.com/joseph-ayodele/nutrilabel/internal/llm/openai"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
	"github.com/joseph-ayodele/nutrilabel/internal/ocr"
	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

// InMemoryDSN is a private sqlite database that lives as long as the process.
const InMemoryDSN = ":memory:"

// App holds the wired components. Close releases the database.
type App struct {
	DB        *repository.DB
	Scans     repository.ScanRepository
	Processor *processor.Processor
	Export    *export.Service
	LLM       llm.FieldExtractor
}

// Build opens (and migrates) the database and assembles the processor. When
// inmem is set the configured database is replaced by an in-memory sqlite.
func Build(ctx context.Context, cfg *common.Config, inmem bool, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dbCfg := cfg.Database
	if inmem {
		dbCfg.Driver = repository.DriverSQLite
		dbCfg.DSN = InMemoryDSN
	}

	db, err := repository.Open(ctx, dbCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	scans := repository.NewScanRepository(db, logger)

	extractor := ocr.NewExtractor(ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.Language,
		TessdataDir:   cfg.OCR.TessdataDir,
		PSM:           6,
	}, logger)

	// a nil interface keeps the parse stage on rules only
	var fe llm.FieldExtractor
	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		Lenient:     true,
		Vision:      cfg.LLM.Vision,
	}, logger)
	if client.Configured() {
		fe = client
		logger.Info("llm extractor enabled", "model", cfg.LLM.Model, "vision", cfg.LLM.Vision)
	} else {
		logger.Warn("OPENAI_API_KEY not set; llm extraction disabled")
	}

	parse := processor.NewParseStage(logger, processor.Config{}, nutrition.NewParser(cfg.Parse.Limits()), fe)
	proc := processor.NewProcessor(logger, processor.NewOCRStage(extractor, logger), parse, scans)
	if cfg.Parse.DefaultRegion != "" {
		proc.DefaultRegion = cfg.Parse.DefaultRegion
	}

	return &App{
		DB:        db,
		Scans:     scans,
		Processor: proc,
		Export:    export.NewService(scans, logger),
		LLM:       fe,
	}, nil
}

func (a *App) Close() {
	if a != nil && a.DB != nil {
		a.DB.Close()
	}
}
