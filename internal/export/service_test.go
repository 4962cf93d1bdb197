package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/glycemic"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

type stubScans struct {
	scans []*repository.Scan
}

func (s *stubScans) Save(context.Context, *repository.Scan) error { return nil }

func (s *stubScans) Get(_ context.Context, id uuid.UUID) (*repository.Scan, error) {
	for _, sc := range s.scans {
		if sc.ID == id {
			return sc, nil
		}
	}
	return nil, common.ErrNotFound
}

func (s *stubScans) List(_ context.Context, f repository.ListFilter) ([]*repository.Scan, error) {
	var out []*repository.Scan
	for _, sc := range s.scans {
		if f.Region == "" || sc.Region == f.Region {
			out = append(out, sc)
		}
	}
	return out, nil
}

func fixtureScans() []*repository.Scan {
	rec := nutrition.NewRecord(constants.RegionUS)
	rec.ServingSize = "1 cup (240ml)"
	rec.Calories, rec.TotalCarbs, rec.Sugars, rec.Fiber, rec.Protein = 90, 22, 19, 2, 1
	impact := glycemic.ComputeImpact(rec)
	return []*repository.Scan{
		{
			ID:           uuid.New(),
			Region:       constants.RegionUS,
			Method:       constants.MethodRules,
			Confidence:   1,
			Nutrition:    rec,
			GlycemicLoad: glycemic.ComputeMetrics(rec).GlycemicLoad,
			Impact:       impact.OverallImpact,
			PeakValue:    impact.PeakValue,
			TimeToReturn: impact.TimeToReturn,
			CreatedAt:    time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC),
		},
		{
			ID:        uuid.New(),
			Region:    constants.RegionUK,
			Method:    constants.MethodLLM,
			Nutrition: nutrition.NewRecord(constants.RegionUK),
			CreatedAt: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
		},
	}
}

func newTestService(scans []*repository.Scan) *Service {
	return NewService(&stubScans{scans: scans}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func readRows(t *testing.T, b []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 1 || got[0] != sheet {
		t.Fatalf("sheets = %v, want [%s]", got, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	return rows
}

func TestExportScansXLSX(t *testing.T) {
	svc := newTestService(fixtureScans())
	b, err := svc.ExportScansXLSX(context.Background(), repository.ListFilter{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	rows := readRows(t, b, ScansSheet)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Scanned At" || len(rows[0]) != len(scanHeaders) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "US" || rows[1][4] != "1 cup (240ml)" || rows[1][5] != "90" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][2] != "llm" {
		t.Errorf("second row method = %v", rows[2][2])
	}
}

func TestExportScansXLSXFiltersRegion(t *testing.T) {
	svc := newTestService(fixtureScans())
	b, err := svc.ExportScansXLSX(context.Background(), repository.ListFilter{Region: constants.RegionUK})
	if err != nil {
		t.Fatal(err)
	}
	if rows := readRows(t, b, ScansSheet); len(rows) != 2 {
		t.Fatalf("rows = %d, want header + 1", len(rows))
	}
}

func TestExportCurveXLSX(t *testing.T) {
	scans := fixtureScans()
	svc := newTestService(scans)

	b, err := svc.ExportCurveXLSX(context.Background(), scans[0].ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	rows := readRows(t, b, CurveSheet)
	want := len(glycemic.ComputeImpact(scans[0].Nutrition).Curve)
	if len(rows) != want+1 || len(rows[0]) != 2 {
		t.Fatalf("rows = %d (header %v), want %d", len(rows), rows[0], want+1)
	}
	if rows[1][0] != "0" || rows[1][1] != "0" {
		t.Errorf("curve should start at zero rise: %v", rows[1])
	}

	b, err = svc.ExportCurveXLSX(context.Background(), scans[0].ID, 95)
	if err != nil {
		t.Fatal(err)
	}
	rows = readRows(t, b, CurveSheet)
	if len(rows[0]) != 3 || rows[1][2] != "95" {
		t.Errorf("projected curve = %v / %v", rows[0], rows[1])
	}
}

func TestExportCurveXLSXErrors(t *testing.T) {
	scans := fixtureScans()
	svc := newTestService(scans)
	if _, err := svc.ExportCurveXLSX(context.Background(), uuid.New(), 0); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.ExportCurveXLSX(context.Background(), scans[0].ID, 10); !errors.Is(err, glycemic.ErrBaselineOutOfRange) {
		t.Errorf("err = %v, want ErrBaselineOutOfRange", err)
	}
}
