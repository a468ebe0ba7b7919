package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/shopgen/internal/repository/postgres"
)

const runsSchema = `
	CREATE TABLE IF NOT EXISTS generation_runs (
		id              BIGSERIAL PRIMARY KEY,
		run_id          UUID NOT NULL UNIQUE,
		locale          TEXT NOT NULL,
		folder          TEXT NOT NULL,
		seed            BIGINT NOT NULL,
		start_date      DATE NOT NULL,
		days            INTEGER NOT NULL,
		products        INTEGER NOT NULL,
		status          TEXT NOT NULL,
		sales_rows      INTEGER NOT NULL DEFAULT 0,
		movement_rows   INTEGER NOT NULL DEFAULT 0,
		stock_outs      INTEGER NOT NULL DEFAULT 0,
		replenishments  INTEGER NOT NULL DEFAULT 0,
		started_at      TIMESTAMPTZ NOT NULL,
		completed_at    TIMESTAMPTZ,
		error_message   TEXT NOT NULL DEFAULT ''
	)
`

const runsIndex = `
	CREATE INDEX IF NOT EXISTS generation_runs_started_at_idx
		ON generation_runs (started_at DESC)
`

const runColumns = `
	id, run_id, locale, folder, seed, start_date, days, products, status,
	sales_rows, movement_rows, stock_outs, replenishments,
	started_at, completed_at, error_message
`

// Repository handles database operations for run tracking
type Repository struct {
	db *postgres.DB
}

var _ RunStore = (*Repository)(nil)

// NewRepository creates a new run repository
func NewRepository(db *postgres.DB) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the generation_runs table and its index when missing
func (r *Repository) EnsureSchema(ctx context.Context) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, stmt := range []string{runsSchema, runsIndex} {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create generation_runs: %w", err)
			}
		}
		return nil
	})
}

// CreateRun creates a new run record
func (r *Repository) CreateRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO generation_runs (
			run_id, locale, folder, seed, start_date, days, products,
			status, started_at
		) VALUES (
			:run_id, :locale, :folder, :seed, :start_date, :days, :products,
			:status, :started_at
		)
		RETURNING id
	`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	return stmt.QueryRowxContext(ctx, run).Scan(&run.ID)
}

// UpdateRun updates an existing run
func (r *Repository) UpdateRun(ctx context.Context, run *Run) error {
	query := `
		UPDATE generation_runs
		SET status = :status, sales_rows = :sales_rows, movement_rows = :movement_rows,
		    stock_outs = :stock_outs, replenishments = :replenishments,
		    completed_at = :completed_at, error_message = :error_message
		WHERE id = :id
	`

	_, err := r.db.NamedExecContext(ctx, query, run)
	return err
}

// GetRun retrieves a run by its public run id. It returns nil when no run matches.
func (r *Repository) GetRun(ctx context.Context, runID string) (*Run, error) {
	run := &Run{}
	err := r.db.GetContext(ctx, run, `SELECT `+runColumns+` FROM generation_runs WHERE run_id = $1`, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	var runs []*Run
	query := `SELECT ` + runColumns + ` FROM generation_runs ORDER BY started_at DESC, id DESC LIMIT $1`
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, err
	}
	return runs, nil
}
