package server

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/export"
	"github.com/joseph-ayodele/nutrilabel/internal/glycemic"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
	processor "github.com/joseph-ayodele/nutrilabel/internal/pipeline"
	"github.com/joseph-ayodele/nutrilabel/internal/repository"
)

const (
	// MaxImageBytes bounds decoded AnalyzeImage payloads.
	MaxImageBytes = 10 << 20
	// MaxTextLength bounds ExtractNutrition text, in runes.
	MaxTextLength = 64 << 10
)

// LabelServer implements LabelServiceServer on top of the processor.
type LabelServer struct {
	proc   *processor.Processor
	scans  repository.ScanRepository
	export *export.Service
	logger *slog.Logger
	tmpDir string
}

var _ LabelServiceServer = (*LabelServer)(nil)

// NewLabelServer wires the service. scans and exp may be nil, which
// disables ListScans and ExportScans.
func NewLabelServer(proc *processor.Processor, scans repository.ScanRepository, exp *export.Service, logger *slog.Logger) *LabelServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelServer{proc: proc, scans: scans, export: exp, logger: logger, tmpDir: os.TempDir()}
}

func (s *LabelServer) region(ctx context.Context, in *structpb.Struct) constants.Region {
	raw := stringField(in, "country")
	if raw == "" {
		raw = stringField(in, "region")
	}
	if raw == "" {
		return s.proc.DefaultRegion
	}
	r, ok := constants.ParseRegion(raw)
	if !ok {
		common.LoggerFromContext(ctx, s.logger).Warn("unknown region; using default", "region", raw, "default", s.proc.DefaultRegion)
		return s.proc.DefaultRegion
	}
	return r
}

func (s *LabelServer) ExtractNutrition(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	text := stringField(in, "text")
	if err := common.ValidateAndReturnError(common.NewValidator().
		Field("text", text, common.Required, common.MaxLength(MaxTextLength))); err != nil {
		return nil, err
	}
	baseline, err := numberField(in, "baseline")
	if err != nil {
		return nil, err
	}
	res, err := s.proc.Analyze(ctx, processor.AnalyzeRequest{
		Text:      text,
		Region:    s.region(ctx, in),
		PreferLLM: boolField(in, "preferLlm"),
		Baseline:  baseline,
	})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(res)
}

func (s *LabelServer) AnalyzeImage(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	data, err := decodeImage(stringField(in, "imageData"))
	if err != nil {
		return nil, err
	}
	baseline, err := numberField(in, "baseline")
	if err != nil {
		return nil, err
	}

	f, err := os.CreateTemp(s.tmpDir, "label-*"+imageExt(data))
	if err != nil {
		return nil, common.InternalErrorf("stage image: %v", err)
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return nil, common.InternalErrorf("stage image: %v", err)
	}
	if err := f.Close(); err != nil {
		return nil, common.InternalErrorf("stage image: %v", err)
	}

	res, err := s.proc.Analyze(ctx, processor.AnalyzeRequest{
		ImagePath: path,
		Region:    s.region(ctx, in),
		PreferLLM: boolField(in, "preferLlm"),
		Baseline:  baseline,
	})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(res)
}

func (s *LabelServer) ComputeImpact(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var rec nutrition.Record
	if err := fromStruct(in, "nutrition", &rec); err != nil {
		return nil, err
	}
	if rec.Region == "" {
		rec.Region = s.region(ctx, in)
	}
	baseline, err := numberField(in, "baseline")
	if err != nil {
		return nil, err
	}
	res, err := s.proc.ComputeManual(ctx, rec, baseline)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{
		"scanId":    res.ScanID,
		"nutrition": res.Nutrition,
		"impact":    res.Impact,
		"metrics":   res.Metrics,
		"projected": res.Projection,
	})
}

func (s *LabelServer) listFilter(ctx context.Context, in *structpb.Struct) (repository.ListFilter, error) {
	limit, err := numberField(in, "limit")
	if err != nil {
		return repository.ListFilter{}, err
	}
	if err := common.ValidateAndReturnError(common.NewValidator().
		Field("limit", limit, common.Range(0, repository.MaxListLimit))); err != nil {
		return repository.ListFilter{}, err
	}
	f := repository.ListFilter{Limit: int(limit)}
	if stringField(in, "region") != "" || stringField(in, "country") != "" {
		f.Region = s.region(ctx, in)
	}
	return f, nil
}

func (s *LabelServer) ListScans(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.scans == nil {
		return nil, common.UnavailableError("scan history is not configured")
	}
	f, err := s.listFilter(ctx, in)
	if err != nil {
		return nil, err
	}
	scans, err := s.scans.List(ctx, f)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("list scans failed", "error", err)
		return nil, common.ToStatus(err)
	}
	if scans == nil {
		scans = []*repository.Scan{}
	}
	return toStruct(map[string]any{"scans": scans})
}

// ExportScans returns scan history as XLSX, or the response curve of one
// scan when scanId is set.
func (s *LabelServer) ExportScans(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if s.export == nil {
		return nil, common.UnavailableError("export is not configured")
	}
	if id := stringField(in, "scanId"); id != "" {
		return s.exportCurve(ctx, in, id)
	}
	f, err := s.listFilter(ctx, in)
	if err != nil {
		return nil, err
	}
	xlsx, err := s.export.ExportScansXLSX(ctx, f)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("export.xlsx.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{
		"filename": "scans.xlsx",
		"xlsx":     base64.StdEncoding.EncodeToString(xlsx),
	})
}

func (s *LabelServer) exportCurve(ctx context.Context, in *structpb.Struct, rawID string) (*structpb.Struct, error) {
	baseline, err := numberField(in, "baseline")
	if err != nil {
		return nil, err
	}
	v := common.NewValidator().Field("scanId", rawID, common.UUID)
	if baseline != 0 {
		v.Field("baseline", baseline, common.Range(glycemic.MinBaseline, glycemic.MaxBaseline))
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	id := uuid.MustParse(rawID)
	ctx = common.WithScanID(ctx, id.String())

	xlsx, err := s.export.ExportCurveXLSX(ctx, id, baseline)
	if err != nil {
		common.LoggerFromContext(ctx, s.logger).Error("export.curve.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	return toStruct(map[string]any{
		"filename": "curve-" + id.String() + ".xlsx",
		"xlsx":     base64.StdEncoding.EncodeToString(xlsx),
	})
}

// decodeImage accepts raw base64 or a data URL.
func decodeImage(s string) ([]byte, error) {
	if s == "" {
		return nil, common.InvalidArgumentError("imageData is required")
	}
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 {
			return nil, common.InvalidArgumentError("imageData: malformed data URL")
		}
		s = s[i+1:]
	}
	if base64.StdEncoding.DecodedLen(len(s)) > MaxImageBytes+3 {
		return nil, common.InvalidArgumentError("imageData too large")
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("imageData: %v", err)
	}
	if len(b) == 0 {
		return nil, common.InvalidArgumentError("imageData is empty")
	}
	return b, nil
}

func imageExt(b []byte) string {
	switch http.DetectContentType(b) {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	default:
		return ".png"
	}
}
