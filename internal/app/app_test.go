package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

func TestBuildInMemory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("DEFAULT_REGION", "UK")
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	a, err := Build(ctx, common.LoadConfig(), true, logger)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer a.Close()

	if a.LLM != nil {
		t.Fatal("llm extractor should be disabled without an API key")
	}
	if a.Processor.DefaultRegion != constants.RegionUK {
		t.Fatalf("DefaultRegion = %s", a.Processor.DefaultRegion)
	}

	res, err := a.Processor.Analyze(ctx, processor.AnalyzeRequest{
		Text:   "Nutrition Facts\nServing Size 1 cup (240ml)\nCalories 90\nTotal Carbohydrate 22g\nSugars 19g",
		Region: constants.RegionUS,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	scans, err := a.Scans.List(ctx, repository.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != 1 || scans[0].ID != res.ScanID {
		t.Fatalf("scans = %+v, want the analyzed scan", scans)
	}
}
