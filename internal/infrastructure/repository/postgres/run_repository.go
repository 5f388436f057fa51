// Package postgres persists finished run reports for later auditing.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/vtavares/claimfetch/internal/core/domain"
)

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL when several operators start batches at once.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026090101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	category TEXT NOT NULL,
	started_at TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS claim_outcomes (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	claim_id TEXT NOT NULL,
	documents_downloaded INT NOT NULL DEFAULT 0,
	problem BOOLEAN NOT NULL DEFAULT FALSE,
	reason TEXT,
	PRIMARY KEY (run_id, claim_id)
);

CREATE INDEX IF NOT EXISTS idx_claim_outcomes_problem ON claim_outcomes(problem) WHERE problem;
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// SaveRun writes the report and all of its outcomes in one transaction.
func (r *RunRepository) SaveRun(ctx context.Context, report domain.RunReport) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO runs (id, category, started_at, finished_at) VALUES ($1,$2,$3,$4)
`, report.RunID, string(report.Category), report.StartedAt, report.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, outcome := range report.Outcomes {
		_, err = tx.ExecContext(ctx, `
INSERT INTO claim_outcomes (run_id, claim_id, documents_downloaded, problem, reason) VALUES ($1,$2,$3,$4,$5)
`, report.RunID, outcome.ClaimID, outcome.DocumentsDownloaded, outcome.Problem, outcome.Reason)
		if err != nil {
			return fmt.Errorf("insert outcome for claim %s: %w", outcome.ClaimID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run tx: %w", err)
	}
	return nil
}
