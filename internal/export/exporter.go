package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/locale"
)

// Options controls what the exporter writes besides the CSV tables.
type Options struct {
	Workbook bool
}

// Exporter writes a locale dataset into <root>/<locale folder>/.
type Exporter struct {
	root string
	opts Options
	log  zerolog.Logger
}

func NewExporter(root string, opts Options, log zerolog.Logger) *Exporter {
	return &Exporter{root: root, opts: opts, log: log}
}

// Dir returns the output directory of a locale.
func (e *Exporter) Dir(loc *locale.Locale) string {
	return filepath.Join(e.root, loc.Folder)
}

// Export writes every table of ds and then the manifest, which is only written once all
// tables succeeded. meta supplies the run fields of the manifest; the table list is
// filled in here.
func (e *Exporter) Export(ctx context.Context, ds *domain.Dataset, loc *locale.Locale, meta Manifest) (*Manifest, error) {
	dir := e.Dir(loc)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	tables := Render(ds, loc)
	manifest := meta
	manifest.Locale = loc.Code
	manifest.Folder = loc.Folder
	manifest.Tables = make([]TableInfo, 0, len(tables))

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, t.FileName())
		if err := WriteCSV(path, t); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", t.Name, err)
		}
		e.log.Debug().Str("table", t.Name).Int("rows", len(t.Rows)).Str("path", path).Msg("table written")

		manifest.Tables = append(manifest.Tables, TableInfo{Name: t.Name, File: t.FileName(), Rows: len(t.Rows)})
	}

	if e.opts.Workbook {
		if err := WriteWorkbook(filepath.Join(dir, WorkbookFile), tables); err != nil {
			return nil, err
		}
		manifest.Workbook = WorkbookFile
	}

	if manifest.GeneratedAt.IsZero() {
		manifest.GeneratedAt = time.Now().UTC()
	}
	if err := WriteManifest(dir, &manifest); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}

	e.log.Info().
		Str("dir", dir).
		Int("sales", manifest.Rows(TableSales)).
		Int("movements", manifest.Rows(TableMovements)).
		Msg("dataset exported")

	return &manifest, nil
}
