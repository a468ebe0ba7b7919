package pipeline

import (
	"context"
	"time"

	"github.com/andresuchdata/shopgen/internal/export"
	"github.com/andresuchdata/shopgen/internal/simulation"
)

// RunConfig holds the settings shared by every locale of a generation run
type RunConfig struct {
	Products int       // Catalog size per locale
	Start    time.Time // First simulated day
	Days     int       // Length of the simulation window
	Seed     uint64    // Root seed; each locale derives its own stream from it
	Workers  int       // Locales generated concurrently
	Verify   bool      // Replay the ledger before exporting
	Params   simulation.Params
}

// DefaultRunConfig returns the settings of the stock two-year dataset
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Products: 200,
		Start:    time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC),
		Days:     365 * 2,
		Workers:  1,
		Verify:   true,
		Params:   simulation.DefaultParams(),
	}
}

// RunStatus represents the current state of a locale run
type RunStatus string

const (
	StatusPending    RunStatus = "pending"
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Run tracks the generation of one locale dataset
type Run struct {
	ID             int64      `db:"id" json:"id"`
	RunID          string     `db:"run_id" json:"run_id"`
	Locale         string     `db:"locale" json:"locale"`
	Folder         string     `db:"folder" json:"folder"`
	Seed           uint64     `db:"seed" json:"seed"`
	StartDate      time.Time  `db:"start_date" json:"start_date"`
	Days           int        `db:"days" json:"days"`
	Products       int        `db:"products" json:"products"`
	Status         RunStatus  `db:"status" json:"status"`
	SalesRows      int        `db:"sales_rows" json:"sales_rows"`
	MovementRows   int        `db:"movement_rows" json:"movement_rows"`
	StockOuts      int        `db:"stock_outs" json:"stock_outs"`
	Replenishments int        `db:"replenishments" json:"replenishments"`
	StartedAt      time.Time  `db:"started_at" json:"started_at"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	ErrorMessage   string     `db:"error_message" json:"error_message,omitempty"`
}

// RunStore persists run bookkeeping
type RunStore interface {
	CreateRun(ctx context.Context, run *Run) error
	UpdateRun(ctx context.Context, run *Run) error
}

// Sink receives a locale dataset once it is completely on disk.
// dir is the locale output directory the manifest describes.
type Sink interface {
	Name() string
	Consume(ctx context.Context, dir string, m *export.Manifest) error
}

// SinkFunc adapts a function to the Sink interface
type SinkFunc struct {
	Label string
	Fn    func(ctx context.Context, dir string, m *export.Manifest) error
}

func (s SinkFunc) Name() string { return s.Label }

func (s SinkFunc) Consume(ctx context.Context, dir string, m *export.Manifest) error {
	return s.Fn(ctx, dir, m)
}

// Summary aggregates the outcome of an orchestrated run
type Summary struct {
	Manifests []*export.Manifest
	Sales     int
	Movements int
	Duration  time.Duration
}
