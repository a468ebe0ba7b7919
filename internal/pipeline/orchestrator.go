package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/shopgen/internal/export"
	"github.com/andresuchdata/shopgen/internal/locale"
)

// Orchestrator runs a Worker once per locale configuration.
type Orchestrator struct {
	worker  *Worker
	workers int
	log     zerolog.Logger
}

// NewOrchestrator creates a new Orchestrator. workers below 1 runs locales one after
// another.
func NewOrchestrator(worker *Worker, workers int, log zerolog.Logger) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		worker:  worker,
		workers: workers,
		log:     log,
	}
}

// Run processes every locale and returns their manifests in input order. The first
// failing locale cancels the ones not yet started.
func (o *Orchestrator) Run(ctx context.Context, locales []*locale.Locale) (*Summary, error) {
	start := time.Now()
	manifests := make([]*export.Manifest, len(locales))

	if o.workers == 1 {
		for i, loc := range locales {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			m, err := o.worker.Process(ctx, loc)
			if err != nil {
				return nil, fmt.Errorf("locale %s: %w", loc.Code, err)
			}
			manifests[i] = m
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(o.workers)
		for i, loc := range locales {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				m, err := o.worker.Process(gctx, loc)
				if err != nil {
					return fmt.Errorf("locale %s: %w", loc.Code, err)
				}
				manifests[i] = m
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	summary := &Summary{Manifests: manifests, Duration: time.Since(start)}
	for _, m := range manifests {
		summary.Sales += m.Rows(export.TableSales)
		summary.Movements += m.Rows(export.TableMovements)
	}

	o.log.Info().
		Int("locales", len(locales)).
		Int("workers", o.workers).
		Int("sales", summary.Sales).
		Int("movements", summary.Movements).
		Dur("duration", summary.Duration).
		Msg("generation run completed")

	return summary, nil
}
