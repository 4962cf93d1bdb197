package repository

import (
	"context"

	"github.com/joseph-ayodele/nutrilabel/internal/common"
)

// DOUBLE PRECISION and BIGINT are understood by both sqlite and postgres.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS scans (
		id                  TEXT PRIMARY KEY,
		region              TEXT NOT NULL,
		method              TEXT NOT NULL,
		confidence          DOUBLE PRECISION NOT NULL DEFAULT 0,
		serving_size        TEXT NOT NULL DEFAULT '',
		serving_description TEXT NOT NULL DEFAULT '',
		calories            DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_carbs         DOUBLE PRECISION NOT NULL DEFAULT 0,
		sugars              DOUBLE PRECISION NOT NULL DEFAULT 0,
		fiber               DOUBLE PRECISION NOT NULL DEFAULT 0,
		protein             DOUBLE PRECISION NOT NULL DEFAULT 0,
		fat                 DOUBLE PRECISION NOT NULL DEFAULT 0,
		salt                DOUBLE PRECISION NOT NULL DEFAULT 0,
		glycemic_load       DOUBLE PRECISION NOT NULL DEFAULT 0,
		impact              TEXT NOT NULL DEFAULT '',
		peak_value          DOUBLE PRECISION NOT NULL DEFAULT 0,
		time_to_return      DOUBLE PRECISION NOT NULL DEFAULT 0,
		raw_text            TEXT NOT NULL DEFAULT '',
		created_at          BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_created_at ON scans (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_scans_region ON scans (region)`,
}

// Migrate creates the schema if it does not exist. It is safe to run repeatedly.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schemaDDL {
		if err := d.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			d.logger.Error("failed to migrate schema", "error", err)
			return common.WrapError(common.ErrDatabase, "migrate: "+err.Error())
		}
	}
	d.logger.Info("schema migrated", "dialect", d.dialect)
	return nil
}
