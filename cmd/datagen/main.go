package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/shopgen/internal/config"
	"github.com/andresuchdata/shopgen/pkg/logger"
)

func newOutputDirFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output-dir",
		Usage:   "Directory that holds one folder per locale",
		Value:   cfg.App.OutputDir,
		EnvVars: []string{"APP_OUTPUT_DIR"},
	}
}

func newLocaleFlag(cfg *config.Config) *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:    "locale",
		Aliases: []string{"l"},
		Usage:   "Locale code to process, repeatable",
		Value:   cli.NewStringSlice(cfg.Generator.Locales...),
		EnvVars: []string{"GENERATOR_LOCALES"},
	}
}

func newDBURLFlag(cfg *config.Config) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string; generation runs are recorded when set",
		Value:   cfg.Database.URL,
		EnvVars: []string{"DATABASE_URL"},
	}
}

func generateFlags(cfg *config.Config) []cli.Flag {
	return []cli.Flag{
		newLocaleFlag(cfg),
		newOutputDirFlag(cfg),
		newDBURLFlag(cfg),
		&cli.IntFlag{
			Name:    "products",
			Usage:   "Catalog size per locale",
			Value:   cfg.Generator.Products,
			EnvVars: []string{"GENERATOR_PRODUCTS"},
		},
		&cli.StringFlag{
			Name:    "start",
			Usage:   "First simulated day (YYYY-MM-DD)",
			Value:   cfg.Generator.StartDate.Format(config.DateLayout),
			EnvVars: []string{"GENERATOR_START_DATE"},
		},
		&cli.IntFlag{
			Name:    "days",
			Usage:   "Number of simulated days",
			Value:   cfg.Generator.Days,
			EnvVars: []string{"GENERATOR_DAYS"},
		},
		&cli.Uint64Flag{
			Name:    "seed",
			Usage:   "Root seed; 0 picks a random one",
			Value:   cfg.Generator.Seed,
			EnvVars: []string{"GENERATOR_SEED"},
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "Locales generated concurrently",
			Value:   cfg.Generator.Workers,
			EnvVars: []string{"GENERATOR_WORKERS"},
		},
		&cli.BoolFlag{
			Name:    "xlsx",
			Usage:   "Also write dataset.xlsx with one sheet per table",
			Value:   cfg.Generator.ExportXLSX,
			EnvVars: []string{"EXPORT_XLSX"},
		},
		&cli.BoolFlag{
			Name:    "verify",
			Usage:   "Replay the inventory ledger before exporting",
			Value:   cfg.Generator.Verify,
			EnvVars: []string{"GENERATOR_VERIFY"},
		},
		&cli.StringSliceFlag{
			Name:    "locale-file",
			Usage:   "YAML, JSON or TOML locale bundle to register, repeatable",
			Value:   cli.NewStringSlice(cfg.Generator.LocaleFiles...),
			EnvVars: []string{"GENERATOR_LOCALE_FILES"},
		},
	}
}

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.App.LogLevel)
	logger.SetFormat(cfg.App.LogFormat)

	app := &cli.App{
		Name:  "datagen",
		Usage: "Generate localized e-commerce datasets",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Simulate and export the selected locales",
				Flags: generateFlags(cfg),
				Action: func(c *cli.Context) error {
					return runGenerate(c, cfg, sinkSet{})
				},
			},
			{
				Name:  "load",
				Usage: "Load exported locale folders into the Postgres warehouse",
				Flags: []cli.Flag{newLocaleFlag(cfg), newOutputDirFlag(cfg), newDBURLFlag(cfg)},
				Action: func(c *cli.Context) error {
					return runLoad(c, cfg)
				},
			},
			{
				Name:  "publish",
				Usage: "Upload exported locale folders to object storage",
				Flags: []cli.Flag{newLocaleFlag(cfg), newOutputDirFlag(cfg)},
				Action: func(c *cli.Context) error {
					return runPublish(c, cfg)
				},
			},
			{
				Name:  "all",
				Usage: "Generate, then load and publish every locale",
				Flags: generateFlags(cfg),
				Action: func(c *cli.Context) error {
					return runGenerate(c, cfg, sinkSet{load: true, publish: true})
				},
			},
			{
				Name:  "locales",
				Usage: "List the registered locale codes",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "locale-file",
						Usage: "YAML, JSON or TOML locale bundle to register, repeatable",
						Value: cli.NewStringSlice(cfg.Generator.LocaleFiles...),
					},
				},
				Action: runListLocales,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		logger.Log.Fatal().Err(err).Msg("datagen failed")
	}
}
