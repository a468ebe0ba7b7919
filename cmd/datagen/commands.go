package main

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/shopgen/internal/cache"
	"github.com/andresuchdata/shopgen/internal/config"
	"github.com/andresuchdata/shopgen/internal/export"
	"github.com/andresuchdata/shopgen/internal/locale"
	"github.com/andresuchdata/shopgen/internal/pipeline"
	"github.com/andresuchdata/shopgen/internal/repository/postgres"
	"github.com/andresuchdata/shopgen/internal/storage"
	"github.com/andresuchdata/shopgen/pkg/logger"
)

// sinkSet selects the sinks that run after each locale export
type sinkSet struct {
	load    bool
	publish bool
}

// buildRegistry returns the built-in locales plus every bundle listed in files
func buildRegistry(files []string) (*locale.Registry, error) {
	registry := locale.NewRegistry()
	for _, path := range files {
		loc, err := locale.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(loc); err != nil {
			return nil, err
		}
		logger.Log.Info().Str("locale", loc.Code).Str("file", path).Msg("registered locale file")
	}
	return registry, nil
}

// runConfigFromFlags validates the generation flags
func runConfigFromFlags(c *cli.Context) (pipeline.RunConfig, error) {
	rc := pipeline.DefaultRunConfig()

	start, err := time.Parse(config.DateLayout, c.String("start"))
	if err != nil {
		return rc, fmt.Errorf("invalid --start %q: %w", c.String("start"), err)
	}
	if c.Int("products") < 1 {
		return rc, fmt.Errorf("--products must be at least 1, got %d", c.Int("products"))
	}
	if c.Int("days") < 1 {
		return rc, fmt.Errorf("--days must be at least 1, got %d", c.Int("days"))
	}
	// generation_runs.seed is a BIGINT
	if c.Uint64("seed") > math.MaxInt64 {
		return rc, fmt.Errorf("--seed must be at most %d, got %d", uint64(math.MaxInt64), c.Uint64("seed"))
	}

	rc.Products = c.Int("products")
	rc.Start = start
	rc.Days = c.Int("days")
	rc.Seed = c.Uint64("seed")
	rc.Workers = c.Int("workers")
	rc.Verify = c.Bool("verify")

	if rc.Seed == 0 {
		// 63 bits so the seed fits the BIGINT column of generation_runs
		rc.Seed = rand.Uint64() >> 1
		logger.Log.Info().Uint64("seed", rc.Seed).Msg("no seed given, picked one")
	}
	return rc, nil
}

func databaseConfig(c *cli.Context, cfg *config.Config) *config.DatabaseConfig {
	db := cfg.Database
	db.URL = c.String("db-url")
	return &db
}

// openRunStore connects the run repository when a database URL is configured.
func openRunStore(ctx context.Context, dbCfg *config.DatabaseConfig) (*pipeline.Repository, error) {
	if dbCfg.URL == "" {
		return nil, nil
	}
	db, err := postgres.NewDB(dbCfg)
	if err != nil {
		return nil, err
	}
	repo := pipeline.NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare generation_runs: %w", err)
	}
	return repo, nil
}

func runGenerate(c *cli.Context, cfg *config.Config, sinks sinkSet) error {
	ctx := c.Context
	log := logger.Component("datagen")

	registry, err := buildRegistry(c.StringSlice("locale-file"))
	if err != nil {
		return err
	}
	codes := c.StringSlice("locale")
	if len(codes) == 0 {
		codes = registry.Codes()
	}
	locales, err := registry.Resolve(codes)
	if err != nil {
		return err
	}

	rc, err := runConfigFromFlags(c)
	if err != nil {
		return err
	}

	dbCfg := databaseConfig(c, cfg)
	opts := []pipeline.WorkerOption{pipeline.WithLogger(logger.Component("worker"))}

	store, err := openRunStore(ctx, dbCfg)
	if err != nil {
		return err
	}
	if store != nil {
		opts = append(opts, pipeline.WithRunStore(store))
	}

	if sinks.load {
		wh, err := postgres.NewWarehouse(ctx, dbCfg, logger.Component("warehouse"))
		if err != nil {
			return err
		}
		defer wh.Close()
		opts = append(opts, pipeline.WithSinks(wh))
	}
	if sinks.publish {
		pub, err := newPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		opts = append(opts, pipeline.WithSinks(pub))
	}

	manifests, err := cache.NewManifestCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("manifest cache unavailable, continuing without it")
		manifests = cache.NewNoopManifestCache()
	}
	// stale manifests from a previous run must not outlive the files they describe
	if err := manifests.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate manifest cache")
	}
	opts = append(opts, pipeline.WithSinks(cache.NewSink(manifests, logger.Component("cache"))))

	exporter := export.NewExporter(c.String("output-dir"), export.Options{Workbook: c.Bool("xlsx")}, logger.Component("export"))
	worker := pipeline.NewWorker(rc, exporter, opts...)

	log.Info().
		Strs("locales", codes).
		Uint64("seed", rc.Seed).
		Int("products", rc.Products).
		Int("days", rc.Days).
		Str("output_dir", c.String("output-dir")).
		Msg("starting generation")

	summary, err := pipeline.NewOrchestrator(worker, rc.Workers, log).Run(ctx, locales)
	if err != nil {
		return err
	}

	for _, m := range summary.Manifests {
		fmt.Fprintf(c.App.Writer, "%s\t%s\tsales=%d\tmovements=%d\n",
			m.Folder, m.RunID, m.Rows(export.TableSales), m.Rows(export.TableMovements))
	}
	return nil
}

func newPublisher(ctx context.Context, cfg *config.Config) (*storage.Publisher, error) {
	store, err := storage.New(ctx, cfg.Storage, cfg.Drive)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	return storage.NewPublisher(store, cfg.Storage.Prefix, logger.Component("publish")), nil
}

// selectDatasets returns the exported locale folders whose manifest locale is in codes.
// An empty codes selects every folder.
func selectDatasets(root string, codes []string) ([]*export.Manifest, error) {
	all, err := export.ListManifests(root)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return all, nil
	}

	selected := make([]*export.Manifest, 0, len(all))
	for _, m := range all {
		if slices.Contains(codes, m.Locale) {
			selected = append(selected, m)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no exported dataset under %s matches %v", root, codes)
	}
	return selected, nil
}

func runLoad(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	root := c.String("output-dir")

	datasets, err := selectDatasets(root, c.StringSlice("locale"))
	if err != nil {
		return err
	}

	wh, err := postgres.NewWarehouse(ctx, databaseConfig(c, cfg), logger.Component("warehouse"))
	if err != nil {
		return err
	}
	defer wh.Close()

	for _, m := range datasets {
		res, err := wh.Load(ctx, filepath.Join(root, m.Folder))
		if err != nil {
			return fmt.Errorf("locale %s: %w", m.Locale, err)
		}
		fmt.Fprintf(c.App.Writer, "%s\tschema=%s\tsales=%d\tmovements=%d\n",
			m.Folder, res.Schema, res.Rows[export.TableSales], res.Rows[export.TableMovements])
	}
	return nil
}

func runPublish(c *cli.Context, cfg *config.Config) error {
	ctx := c.Context
	root := c.String("output-dir")

	datasets, err := selectDatasets(root, c.StringSlice("locale"))
	if err != nil {
		return err
	}

	pub, err := newPublisher(ctx, cfg)
	if err != nil {
		return err
	}

	for _, m := range datasets {
		keys, err := pub.Publish(ctx, filepath.Join(root, m.Folder))
		if err != nil {
			return fmt.Errorf("locale %s: %w", m.Locale, err)
		}
		fmt.Fprintf(c.App.Writer, "%s\tobjects=%d\n", m.Folder, len(keys))
	}
	return nil
}

func runListLocales(c *cli.Context) error {
	registry, err := buildRegistry(c.StringSlice("locale-file"))
	if err != nil {
		return err
	}
	for _, code := range registry.Codes() {
		loc, _ := registry.Lookup(code)
		fmt.Fprintf(c.App.Writer, "%s\t%s\n", code, loc.Folder)
	}
	return nil
}
