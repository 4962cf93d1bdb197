package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/app"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
)

func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		textFile = flag.String("text", "", "file holding OCR'd label text (\"-\" for stdin)")
		image    = flag.String("image", "", "label image to OCR")
		country  = flag.String("country", "", "label region: US, UK, EU or CA (default from DEFAULT_REGION)")
		baseline = flag.Float64("baseline", 0, "fasting glucose in mg/dL for a projected curve (50-400)")
		useLLM   = flag.Bool("llm", false, "prefer the LLM extractor when configured")
		persist  = flag.Bool("save", false, "record the scan in the configured database instead of memory")
		debug    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if (*textFile == "") == (*image == "") {
		printError("Error: exactly one of --text or --image is required\n")
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := common.LoadDotEnv(); err != nil {
		printError("Error: loading .env: %v\n", err)
		os.Exit(1)
	}
	cfg := common.LoadConfig()

	var region constants.Region
	if *country != "" {
		r, ok := constants.ParseRegion(*country)
		if !ok {
			printError("Error: unknown --country %q (want one of %v)\n", *country, constants.RegionsAsStringSlice())
			os.Exit(1)
		}
		region = r
	}

	req := processor.AnalyzeRequest{ImagePath: *image, Region: region, PreferLLM: *useLLM, Baseline: *baseline}
	if *textFile != "" {
		text, err := readText(*textFile)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		req.Text = text
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, !*persist, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	res, err := a.Processor.Analyze(ctx, req)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		printError("Error: encoding result: %v\n", err)
		os.Exit(1)
	}
}

func readText(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(b), nil
}
