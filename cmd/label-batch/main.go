package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/app"
	"github.com/joseph-ayodele/nutrilabel/internal/async"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/ingest"
	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		inmem   = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir     = flag.String("dir", "", "directory of label images or text files (required)")
		out     = flag.String("out", "", "output XLSX file path (optional, defaults to parent directory)")
		country = flag.String("country", "", "label region for every file (default from DEFAULT_REGION)")
		useLLM  = flag.Bool("llm", false, "prefer the LLM extractor when configured")
		workers = flag.Int("workers", 4, "concurrent OCR workers")
		timeout = flag.Duration("timeout", 2*time.Minute, "per-file processing timeout")
		hidden  = flag.Bool("hidden", false, "include hidden files and directories")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "labels.xlsx")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := common.LoadDotEnv(); err != nil {
		printError("Error: loading .env: %v\n", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()

	region := cfg.Parse.DefaultRegion
	if *country != "" {
		r, ok := constants.ParseRegion(*country)
		if !ok {
			printError("Error: unknown --country %q (want one of %v)\n", *country, constants.RegionsAsStringSlice())
			os.Exit(1)
		}
		region = r
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, *inmem, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	cands, stats, err := ingest.ScanDirectory(*dir, !*hidden, logger)
	if err != nil {
		logger.Error("failed to scan directory", "dir", *dir, "error", err)
		os.Exit(1)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"duplicates", stats.Duplicates,
		"failed", stats.Failed)

	var processed, failures atomic.Int64
	started := time.Now()
	queue := async.NewProcessorQueue(a.Processor, logger,
		async.WithWorkers(*workers),
		async.WithQueueSize(len(cands)+1),
		async.WithProcessTimeout(*timeout),
		async.WithResultHandler(func(job async.Job, _ processor.Result, err error) {
			if err != nil {
				failures.Add(1)
				return
			}
			processed.Add(1)
		}),
	)

	submitted, err := ingest.Submit(ctx, queue, cands, region, *useLLM)
	if err != nil {
		logger.Error("failed to submit files", "error", err)
	}
	queue.Shutdown(ctx)

	logger.Info("exporting to XLSX", "output", *out)
	xlsxBytes, err := a.Export.ExportScansXLSX(ctx, repository.ListFilter{Since: started, Limit: repository.MaxListLimit})
	if err != nil {
		logger.Error("failed to export scans", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsxBytes, 0644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("batch processing complete",
		"submitted", submitted,
		"processed", processed.Load(),
		"failures", failures.Load(),
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files found: %d\n", len(cands))
	fmt.Printf("- Files processed: %d\n", processed.Load())
	fmt.Printf("- Failures: %d\n", failures.Load())
	fmt.Printf("- Output: %s\n", *out)
}
