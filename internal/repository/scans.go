package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/nutrilabel/constants"
	"github.com/joseph-ayodele/nutrilabel/internal/common"
	"github.com/joseph-ayodele/nutrilabel/internal/nutrition"
)

const (
	scansTable       = "scans"
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// Scan is one persisted label analysis.
type Scan struct {
	ID           uuid.UUID                  `json:"id"`
	Region       constants.Region           `json:"country"`
	Method       constants.ExtractionMethod `json:"method"`
	Confidence   float64                    `json:"confidence"`
	Nutrition    nutrition.Record           `json:"nutrition"`
	GlycemicLoad float64                    `json:"glycemicLoad"`
	Impact       constants.ImpactLevel      `json:"impact"`
	PeakValue    float64                    `json:"peakValue"`
	TimeToReturn float64                    `json:"timeToReturn"`
	RawText      string                     `json:"rawText,omitempty"`
	CreatedAt    time.Time                  `json:"createdAt"`
}

// ListFilter narrows List. Zero values mean no constraint.
type ListFilter struct {
	Region constants.Region
	Since  time.Time
	Limit  int
}

type ScanRepository interface {
	Save(ctx context.Context, s *Scan) error
	Get(ctx context.Context, id uuid.UUID) (*Scan, error)
	List(ctx context.Context, f ListFilter) ([]*Scan, error)
}

type scanRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewScanRepository(db *DB, logger *slog.Logger) ScanRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &scanRepo{db: db, logger: logger}
}

var scanColumns = []string{
	"id", "region", "method", "confidence",
	"serving_size", "serving_description",
	"calories", "total_carbs", "sugars", "fiber", "protein", "fat", "salt",
	"glycemic_load", "impact", "peak_value", "time_to_return",
	"raw_text", "created_at",
}

// Save inserts s, assigning an ID and creation time when unset.
func (r *scanRepo) Save(ctx context.Context, s *Scan) error {
	if s == nil {
		return common.NewAppError("INVALID_SCAN", "scan is nil", common.ErrInvalidInput)
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Region == "" {
		s.Region = constants.DefaultRegion
	}
	n := s.Nutrition
	q, args := r.db.builder().Insert(scansTable).
		Columns(scanColumns...).
		Values(
			s.ID.String(), string(s.Region), string(s.Method), s.Confidence,
			n.ServingSize, n.ServingDescription,
			n.Calories, n.TotalCarbs, n.Sugars, n.Fiber, n.Protein, n.Fat, n.Salt,
			s.GlycemicLoad, string(s.Impact), s.PeakValue, s.TimeToReturn,
			s.RawText, s.CreatedAt.UnixNano(),
		).Query()

	if err := r.db.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("failed to save scan", "scan_id", s.ID, "error", err)
		return common.WrapError(common.ErrDatabase, "save scan: "+err.Error())
	}
	r.logger.Debug("scan saved", "scan_id", s.ID, "region", s.Region, "method", s.Method)
	return nil
}

func (r *scanRepo) Get(ctx context.Context, id uuid.UUID) (*Scan, error) {
	q, args := r.db.builder().Select(scanColumns...).
		From(entsql.Table(scansTable)).
		Where(entsql.EQ("id", id.String())).
		Query()

	scans, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get scan", "scan_id", id, "error", err)
		return nil, err
	}
	if len(scans) == 0 {
		return nil, fmt.Errorf("scan %s: %w", id, common.ErrNotFound)
	}
	return scans[0], nil
}

// List returns scans newest first.
func (r *scanRepo) List(ctx context.Context, f ListFilter) ([]*Scan, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	sel := r.db.builder().Select(scanColumns...).From(entsql.Table(scansTable))
	if f.Region != "" {
		sel.Where(entsql.EQ("region", string(f.Region)))
	}
	if !f.Since.IsZero() {
		sel.Where(entsql.GTE("created_at", f.Since.UnixNano()))
	}
	q, args := sel.OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).Limit(limit).Query()

	scans, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list scans", "region", f.Region, "error", err)
		return nil, err
	}
	return scans, nil
}

func (r *scanRepo) query(ctx context.Context, q string, args []any) ([]*Scan, error) {
	var rows entsql.Rows
	if err := r.db.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.Warn("failed to close rows", "error", err)
		}
	}()

	var out []*Scan
	for rows.Next() {
		var (
			s                  Scan
			id, region, method string
			impact             string
			createdAt          int64
		)
		n := &s.Nutrition
		if err := rows.Scan(
			&id, &region, &method, &s.Confidence,
			&n.ServingSize, &n.ServingDescription,
			&n.Calories, &n.TotalCarbs, &n.Sugars, &n.Fiber, &n.Protein, &n.Fat, &n.Salt,
			&s.GlycemicLoad, &impact, &s.PeakValue, &s.TimeToReturn,
			&s.RawText, &createdAt,
		); err != nil {
			return nil, common.WrapError(common.ErrDatabase, "scan row: "+err.Error())
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, common.WrapError(common.ErrDatabase, "bad scan id: "+err.Error())
		}
		s.ID = parsed
		s.Region = constants.Region(region)
		s.Nutrition.Region = s.Region
		s.Method = constants.ExtractionMethod(method)
		s.Impact = constants.ImpactLevel(impact)
		s.CreatedAt = time.Unix(0, createdAt).UTC()
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapError(common.ErrDatabase, err.Error())
	}
	return out, nil
}
