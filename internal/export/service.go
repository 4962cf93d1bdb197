package export

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/nutrilabel/internal/glycemic"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

const (
	ScansSheet = "Scans"
	CurveSheet = "Curve"
)

var scanHeaders = []string{
	"Scanned At",
	"Country",
	"Method",
	"Confidence",
	"Serving Size",
	"Calories",
	"Total Carbs (g)",
	"Sugars (g)",
	"Fiber (g)",
	"Protein (g)",
	"Fat (g)",
	"Salt (g)",
	"Glycemic Load",
	"Impact",
	"Peak Rise (mg/dL)",
	"Time To Return (min)",
}

// Service is a small façade over the scan repository that produces XLSX bytes.
type Service struct {
	scans  repository.ScanRepository
	logger *slog.Logger
}

func NewService(scans repository.ScanRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{scans: scans, logger: logger}
}

// ExportScansXLSX returns a workbook with one row per scan matching f, newest first.
func (s *Service) ExportScansXLSX(ctx context.Context, f repository.ListFilter) ([]byte, error) {
	start := time.Now()

	scans, err := s.scans.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("query scans: %w", err)
	}

	wb, err := newWorkbook(ScansSheet)
	if err != nil {
		return nil, err
	}
	writeRow(wb, ScansSheet, 1, toAny(scanHeaders)...)

	for i, sc := range scans {
		n := sc.Nutrition
		writeRow(wb, ScansSheet, i+2,
			sc.CreatedAt.Format(time.RFC3339),
			string(sc.Region),
			string(sc.Method),
			round(sc.Confidence, 2),
			truncate(n.ServingSize, 60),
			n.Calories, n.TotalCarbs, n.Sugars, n.Fiber, n.Protein, n.Fat, n.Salt,
			round(sc.GlycemicLoad, 1),
			string(sc.Impact),
			round(sc.PeakValue, 1),
			round(sc.TimeToReturn, 0),
		)
	}

	_ = wb.SetColWidth(ScansSheet, "A", "A", 22) // timestamp
	_ = wb.SetColWidth(ScansSheet, "B", "D", 12)
	_ = wb.SetColWidth(ScansSheet, "E", "E", 24) // serving
	_ = wb.SetColWidth(ScansSheet, "F", "P", 14)
	_ = wb.SetPanes(ScansSheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.scans.ok",
		"region", f.Region,
		"rows", len(scans),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportCurveXLSX recomputes the response curve of one scan and writes it
// as time/rise rows, with absolute readings when baseline is non-zero.
func (s *Service) ExportCurveXLSX(ctx context.Context, id uuid.UUID, baseline float64) ([]byte, error) {
	sc, err := s.scans.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	impact := glycemic.ComputeImpact(sc.Nutrition)

	var proj *glycemic.Projection
	if baseline != 0 {
		p, err := glycemic.ProjectFromBaseline(impact, baseline)
		if err != nil {
			return nil, err
		}
		proj = &p
	}

	wb, err := newWorkbook(CurveSheet)
	if err != nil {
		return nil, err
	}
	headers := []any{"Minutes", "Rise (mg/dL)"}
	if proj != nil {
		headers = append(headers, "Glucose (mg/dL)")
	}
	writeRow(wb, CurveSheet, 1, headers...)
	for i, pt := range impact.Curve {
		vals := []any{pt.Time, round(pt.Value, 2)}
		if proj != nil {
			vals = append(vals, round(proj.Curve[i].Value, 2))
		}
		writeRow(wb, CurveSheet, i+2, vals...)
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.curve.ok", "scan_id", id.String(), "points", len(impact.Curve), "baseline", baseline)
	return buf.Bytes(), nil
}

// newWorkbook returns a file whose only sheet is named sheet.
func newWorkbook(sheet string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, vals ...any) {
	for i, v := range vals {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
