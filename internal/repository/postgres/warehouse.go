package postgres

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/andresuchdata/shopgen/internal/config"
	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/export"
)

var ErrManifestMismatch = errors.New("table does not match manifest")

type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindMoney
	kindDate
)

func (k columnKind) sqlType() string {
	switch k {
	case kindInt:
		return "BIGINT"
	case kindMoney:
		return "NUMERIC(12,2)"
	case kindDate:
		return "DATE"
	default:
		return "TEXT"
	}
}

// columnKinds is aligned with export.Headers.
var columnKinds = map[string][]columnKind{
	export.TableProducts:  {kindText, kindText, kindText, kindMoney, kindMoney},
	export.TableChannels:  {kindInt, kindText},
	export.TableDates:     {kindDate, kindInt, kindInt, kindInt, kindText, kindInt},
	export.TableSales:     {kindInt, kindDate, kindText, kindInt, kindInt, kindMoney, kindMoney, kindMoney},
	export.TableMovements: {kindInt, kindDate, kindText, kindText, kindInt},
}

// LoadResult reports what a warehouse load wrote
type LoadResult struct {
	Schema string
	Rows   map[string]int
}

// Warehouse bulk-loads exported locale datasets into Postgres, one schema per locale
// folder.
type Warehouse struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewWarehouse opens a pgx pool for bulk loads
func NewWarehouse(ctx context.Context, cfg *config.DatabaseConfig, log zerolog.Logger) (*Warehouse, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	poolCfg.MaxConns = 4
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.ConnConfig.ConnectTimeout = 5 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Warehouse{pool: pool, log: log}, nil
}

func (w *Warehouse) Close() {
	w.pool.Close()
}

// Name identifies the warehouse as a pipeline sink
func (w *Warehouse) Name() string { return "warehouse" }

// Consume loads the locale directory a pipeline run just exported
func (w *Warehouse) Consume(ctx context.Context, dir string, _ *export.Manifest) error {
	_, err := w.Load(ctx, dir)
	return err
}

// SchemaName returns the schema a locale folder loads into
func SchemaName(folder string) string {
	return strings.ToLower(folder)
}

// Load replaces the warehouse copy of the dataset in dir. All five tables are
// truncated and copied inside one transaction.
func (w *Warehouse) Load(ctx context.Context, dir string) (*LoadResult, error) {
	manifest, err := export.ReadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	tables := make([]export.Table, 0, len(export.TableNames))
	for _, name := range export.TableNames {
		t, err := export.ReadCSV(filepath.Join(dir, export.FileName(name)), name)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(t.Header, export.Headers[name]) {
			return nil, fmt.Errorf("%w: %s header %v", ErrManifestMismatch, name, t.Header)
		}
		if want := manifest.Rows(name); want != len(t.Rows) {
			return nil, fmt.Errorf("%w: %s has %d rows, manifest lists %d", ErrManifestMismatch, name, len(t.Rows), want)
		}
		tables = append(tables, t)
	}

	schema := SchemaName(manifest.Folder)
	result := &LoadResult{Schema: schema, Rows: make(map[string]int, len(tables))}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			w.log.Error().Err(err).Msg("could not rollback transaction")
		}
	}()

	if _, err := tx.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
		return nil, fmt.Errorf("failed to create schema %s: %w", schema, err)
	}

	for _, t := range tables {
		n, err := copyTable(ctx, tx, schema, t)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s.%s: %w", schema, t.Name, err)
		}
		result.Rows[t.Name] = int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("could not commit transaction: %w", err)
	}

	w.log.Info().
		Str("schema", schema).
		Str("run_id", manifest.RunID).
		Int("sales", result.Rows[export.TableSales]).
		Int("movements", result.Rows[export.TableMovements]).
		Msg("dataset loaded")

	return result, nil
}

func copyTable(ctx context.Context, tx pgx.Tx, schema string, t export.Table) (int64, error) {
	ident := pgx.Identifier{schema, t.Name}
	columns := columnNames(t.Name)

	if _, err := tx.Exec(ctx, createTableSQL(ident, t.Name)); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, "TRUNCATE "+ident.Sanitize()); err != nil {
		return 0, err
	}

	rows := make([][]any, len(t.Rows))
	for i, record := range t.Rows {
		row, err := convertRow(t.Name, record)
		if err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows[i] = row
	}

	return tx.CopyFrom(ctx, ident, columns, pgx.CopyFromRows(rows))
}

// columnNames lowercases the export headers of table
func columnNames(table string) []string {
	header := export.Headers[table]
	names := make([]string, len(header))
	for i, h := range header {
		names[i] = strings.ToLower(h)
	}
	return names
}

func createTableSQL(ident pgx.Identifier, table string) string {
	names := columnNames(table)
	kinds := columnKinds[table]

	defs := make([]string, len(names))
	for i, name := range names {
		defs[i] = pgx.Identifier{name}.Sanitize() + " " + kinds[i].sqlType() + " NOT NULL"
		if i == 0 {
			defs[i] += " PRIMARY KEY"
		}
	}
	return "CREATE TABLE IF NOT EXISTS " + ident.Sanitize() + " (" + strings.Join(defs, ", ") + ")"
}

// convertRow parses one CSV record into the Go values COPY expects for table
func convertRow(table string, record []string) ([]any, error) {
	kinds := columnKinds[table]
	if len(record) != len(kinds) {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrManifestMismatch, len(kinds), len(record))
	}

	row := make([]any, len(record))
	for i, raw := range record {
		switch kinds[i] {
		case kindInt:
			v, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid integer %q: %w", raw, err)
			}
			row[i] = v
		case kindMoney:
			var n pgtype.Numeric
			if err := n.Scan(raw); err != nil {
				return nil, fmt.Errorf("invalid amount %q: %w", raw, err)
			}
			row[i] = n
		case kindDate:
			d, err := time.Parse(domain.DateLayout, raw)
			if err != nil {
				return nil, fmt.Errorf("invalid date %q: %w", raw, err)
			}
			row[i] = d
		default:
			row[i] = raw
		}
	}
	return row, nil
}
