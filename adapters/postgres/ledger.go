// Package postgres persists batch run results in a relational ledger so
// repeated sweeps stay queryable after the process exits.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	domain "evosweep/domain/stats"
)

// Connect opens and pings a postgres connection
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// ResultLedger stores run manifests and the three flat record tables
type ResultLedger struct {
	db *sqlx.DB
}

// NewResultLedger creates a ledger backed by db
func NewResultLedger(db *sqlx.DB) *ResultLedger {
	return &ResultLedger{db: db}
}

// Migrate creates the ledger tables if they do not exist
func (l *ResultLedger) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS run_manifests (
		run_id        TEXT PRIMARY KEY,
		config_hash   TEXT NOT NULL,
		alpha         DOUBLE PRECISION NOT NULL,
		units_total   INTEGER NOT NULL,
		units_ok      INTEGER NOT NULL,
		units_failed  INTEGER NOT NULL,
		failure_codes JSONB NOT NULL DEFAULT '{}',
		runtime_ms    BIGINT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS normality_results (
		id             BIGSERIAL PRIMARY KEY,
		run_id         TEXT NOT NULL REFERENCES run_manifests(run_id),
		analysis_id    TEXT NOT NULL,
		metric_name    TEXT NOT NULL,
		group_name     TEXT NOT NULL,
		method         TEXT NOT NULL,
		n              INTEGER NOT NULL,
		mean           DOUBLE PRECISION,
		std            DOUBLE PRECISION,
		statistic      DOUBLE PRECISION,
		p_value        DOUBLE PRECISION,
		critical_value DOUBLE PRECISION,
		alpha          DOUBLE PRECISION NOT NULL,
		is_normal      BOOLEAN NOT NULL,
		note           TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_normality_run ON normality_results(run_id);

	CREATE TABLE IF NOT EXISTS omnibus_results (
		id          BIGSERIAL PRIMARY KEY,
		run_id      TEXT NOT NULL REFERENCES run_manifests(run_id),
		analysis_id TEXT NOT NULL,
		factor      TEXT NOT NULL,
		method      TEXT NOT NULL,
		groups      INTEGER NOT NULL,
		statistic   DOUBLE PRECISION,
		p_value     DOUBLE PRECISION,
		alpha       DOUBLE PRECISION NOT NULL,
		significant BOOLEAN NOT NULL,
		note        TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_omnibus_run ON omnibus_results(run_id);

	CREATE TABLE IF NOT EXISTS posthoc_results (
		id                BIGSERIAL PRIMARY KEY,
		run_id            TEXT NOT NULL REFERENCES run_manifests(run_id),
		analysis_id       TEXT NOT NULL,
		factor            TEXT NOT NULL,
		group_a           TEXT NOT NULL,
		group_b           TEXT NOT NULL,
		method            TEXT NOT NULL,
		statistic         DOUBLE PRECISION,
		raw_p_value       DOUBLE PRECISION,
		corrected_p_value DOUBLE PRECISION,
		significant       BOOLEAN NOT NULL,
		correction_method TEXT NOT NULL,
		note              TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_posthoc_run ON posthoc_results(run_id);`

	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to migrate ledger schema: %w", err)
	}
	return nil
}

// StoreManifest inserts one run manifest row
func (l *ResultLedger) StoreManifest(ctx context.Context, manifest domain.RunManifest) error {
	codes, err := json.Marshal(manifest.FailureCodes)
	if err != nil {
		return fmt.Errorf("failed to marshal failure codes: %w", err)
	}

	query := `
		INSERT INTO run_manifests (
			run_id, config_hash, alpha, units_total, units_ok, units_failed,
			failure_codes, runtime_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err = l.db.ExecContext(ctx, query,
		manifest.RunID.String(),
		manifest.ConfigHash.String(),
		manifest.Alpha,
		manifest.UnitsTotal,
		manifest.UnitsOK,
		manifest.UnitsFailed,
		codes,
		manifest.RuntimeMs,
		manifest.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run manifest: %w", err)
	}
	return nil
}

// StoreNormality inserts the normality record rows of one run
func (l *ResultLedger) StoreNormality(ctx context.Context, runID string, records []domain.NormalityRecord) error {
	query := `
		INSERT INTO normality_results (
			run_id, analysis_id, metric_name, group_name, method, n, mean, std,
			statistic, p_value, critical_value, alpha, is_normal, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	return l.insertAll(ctx, query, len(records), func(i int) []interface{} {
		r := records[i]
		return []interface{}{
			runID, r.AnalysisID.String(), r.MetricName, r.GroupName.String(), string(r.Method),
			r.N, nullify(r.Mean), nullify(r.Std),
			nullify(r.Statistic), nullify(r.PValue), nullify(r.CriticalValue),
			r.Alpha, r.IsNormal, r.Note,
		}
	})
}

// StoreOmnibus inserts the omnibus record rows of one run
func (l *ResultLedger) StoreOmnibus(ctx context.Context, runID string, records []domain.OmnibusRecord) error {
	query := `
		INSERT INTO omnibus_results (
			run_id, analysis_id, factor, method, groups, statistic, p_value,
			alpha, significant, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	return l.insertAll(ctx, query, len(records), func(i int) []interface{} {
		r := records[i]
		return []interface{}{
			runID, r.AnalysisID.String(), r.Factor, string(r.Method), r.Groups,
			nullify(r.Statistic), nullify(r.PValue), r.Alpha, r.Significant, r.Note,
		}
	})
}

// StorePostHoc inserts the pairwise record rows of one run
func (l *ResultLedger) StorePostHoc(ctx context.Context, runID string, records []domain.PostHocRecord) error {
	query := `
		INSERT INTO posthoc_results (
			run_id, analysis_id, factor, group_a, group_b, method, statistic,
			raw_p_value, corrected_p_value, significant, correction_method, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	return l.insertAll(ctx, query, len(records), func(i int) []interface{} {
		r := records[i]
		return []interface{}{
			runID, r.AnalysisID.String(), r.Factor, r.GroupA.String(), r.GroupB.String(),
			string(r.Method), nullify(r.Statistic), nullify(r.RawPValue),
			nullify(r.CorrectedPValue), r.Significant, string(r.Correction), r.Note,
		}
	})
}

// insertAll runs the inserts of one record table inside a transaction so a
// run's rows land atomically.
func (l *ResultLedger) insertAll(ctx context.Context, query string, n int, args func(i int) []interface{}) error {
	if n == 0 {
		return nil
	}
	tx, err := l.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := 0; i < n; i++ {
		if _, err := tx.ExecContext(ctx, query, args(i)...); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// nullify maps NaN statistics to SQL NULL so aggregates over the ledger
// ignore failed computations.
func nullify(v float64) interface{} {
	if v != v {
		return nil
	}
	return v
}
