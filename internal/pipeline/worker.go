package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/shopgen/internal/calendar"
	"github.com/andresuchdata/shopgen/internal/catalog"
	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/export"
	"github.com/andresuchdata/shopgen/internal/locale"
	"github.com/andresuchdata/shopgen/internal/random"
	"github.com/andresuchdata/shopgen/internal/simulation"
)

// Worker generates, exports and distributes the dataset of one locale at a time.
// A Worker holds no per-locale state and may process several locales concurrently.
type Worker struct {
	config   RunConfig
	exporter *export.Exporter
	store    RunStore
	sinks    []Sink
	log      zerolog.Logger
}

type WorkerOption func(*Worker)

// WithRunStore records every locale run in store
func WithRunStore(store RunStore) WorkerOption {
	return func(w *Worker) { w.store = store }
}

// WithSinks hands every exported dataset to sinks, in order
func WithSinks(sinks ...Sink) WorkerOption {
	return func(w *Worker) { w.sinks = append(w.sinks, sinks...) }
}

func WithLogger(l zerolog.Logger) WorkerOption {
	return func(w *Worker) { w.log = l }
}

// NewWorker creates a new locale worker
func NewWorker(config RunConfig, exporter *export.Exporter, opts ...WorkerOption) *Worker {
	w := &Worker{
		config:   config,
		exporter: exporter,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Generate builds the full dataset of loc in memory. The only error it returns is a
// failed ledger verification.
func (w *Worker) Generate(loc *locale.Locale) (*domain.Dataset, simulation.Stats, error) {
	src := random.ForLocale(w.config.Seed, loc.Code)

	ds := &domain.Dataset{
		Products: catalog.GenerateProducts(src, loc, w.config.Products),
		Channels: catalog.GenerateChannels(loc),
		Days:     calendar.Generate(loc, w.config.Start, w.config.Days),
	}

	engine := simulation.NewEngine(src, w.config.Params,
		simulation.WithLogger(w.log.With().Str("locale", loc.Code).Logger()))
	res := engine.Simulate(simulation.Input{
		Products: ds.Products,
		Channels: ds.Channels,
		Days:     ds.Days,
		Start:    calendar.Midnight(w.config.Start),
	})
	ds.Sales, ds.Movements, ds.Closing = res.Sales, res.Movements, res.Closing

	if w.config.Verify {
		if err := simulation.Verify(ds, w.config.Params); err != nil {
			return nil, res.Stats, fmt.Errorf("dataset for %s failed verification: %w", loc.Code, err)
		}
	}

	return ds, res.Stats, nil
}

// Process runs the full pipeline for one locale: generate, export, then every sink
func (w *Worker) Process(ctx context.Context, loc *locale.Locale) (*export.Manifest, error) {
	log := w.log.With().Str("locale", loc.Code).Logger()
	startTime := time.Now()

	run := &Run{
		RunID:     uuid.NewString(),
		Locale:    loc.Code,
		Folder:    loc.Folder,
		Seed:      w.config.Seed,
		StartDate: calendar.Midnight(w.config.Start),
		Days:      w.config.Days,
		Products:  w.config.Products,
		Status:    StatusPending,
		StartedAt: startTime.UTC(),
	}
	if w.store != nil {
		if err := w.store.CreateRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to create run for %s: %w", loc.Code, err)
		}
	}

	run.Status = StatusProcessing
	w.updateRun(ctx, run)

	log.Info().
		Str("run_id", run.RunID).
		Int("products", w.config.Products).
		Int("days", w.config.Days).
		Msg("generating dataset")

	ds, stats, err := w.Generate(loc)
	if err != nil {
		return nil, w.markRunFailed(ctx, run, err)
	}
	run.SalesRows = len(ds.Sales)
	run.MovementRows = len(ds.Movements)
	run.StockOuts = stats.StockOuts
	run.Replenishments = stats.Replenishments

	manifest, err := w.exporter.Export(ctx, ds, loc, export.Manifest{
		RunID:     run.RunID,
		Seed:      w.config.Seed,
		StartDate: run.StartDate.Format(domain.DateLayout),
		Days:      w.config.Days,
		Products:  w.config.Products,
	})
	if err != nil {
		return nil, w.markRunFailed(ctx, run, fmt.Errorf("export failed: %w", err))
	}

	dir := w.exporter.Dir(loc)
	for _, sink := range w.sinks {
		if err := sink.Consume(ctx, dir, manifest); err != nil {
			return nil, w.markRunFailed(ctx, run, fmt.Errorf("%s failed: %w", sink.Name(), err))
		}
		log.Debug().Str("sink", sink.Name()).Msg("sink completed")
	}

	run.Status = StatusCompleted
	now := time.Now().UTC()
	run.CompletedAt = &now
	w.updateRun(ctx, run)

	log.Info().
		Int("sales", run.SalesRows).
		Int("movements", run.MovementRows).
		Int("stock_outs", run.StockOuts).
		Dur("duration", time.Since(startTime)).
		Msg("locale completed")

	return manifest, nil
}

// markRunFailed records err on the run and returns it
func (w *Worker) markRunFailed(ctx context.Context, run *Run, err error) error {
	run.Status = StatusFailed
	run.ErrorMessage = err.Error()
	now := time.Now().UTC()
	run.CompletedAt = &now
	w.updateRun(ctx, run)
	return err
}

func (w *Worker) updateRun(ctx context.Context, run *Run) {
	if w.store == nil {
		return
	}
	// Bookkeeping must not fail a dataset that was produced
	if err := w.store.UpdateRun(context.WithoutCancel(ctx), run); err != nil {
		w.log.Warn().Err(err).Str("run_id", run.RunID).Msg("failed to update run")
	}
}
