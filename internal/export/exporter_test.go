package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/shopgen/internal/calendar"
	"github.com/andresuchdata/shopgen/internal/catalog"
	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/export"
	"github.com/andresuchdata/shopgen/internal/locale"
)

var day1 = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

func smallDataset(loc *locale.Locale) *domain.Dataset {
	price := decimal.RequireFromString("19.99")
	cost := decimal.RequireFromString("10.5")
	return &domain.Dataset{
		Products: []domain.Product{{ID: "SKU-0001", Name: loc.Categories[0].Products[0], Category: loc.Categories[0].Name, Cost: cost, Price: price}},
		Channels: catalog.GenerateChannels(loc),
		Days:     calendar.Generate(loc, day1, 2),
		Sales: []domain.Sale{{
			ID: 1, Date: day1, ProductID: "SKU-0001", ChannelID: 2, Quantity: 2,
			UnitPrice: price, UnitCost: cost, Total: decimal.RequireFromString("39.98"),
		}},
		Movements: []domain.Movement{
			{ID: 1, Date: day1.AddDate(0, 0, -1), ProductID: "SKU-0001", Kind: domain.MovementInitial, Quantity: 16},
			{ID: 2, Date: day1, ProductID: "SKU-0001", Kind: domain.MovementSale, Quantity: 2},
			{ID: 3, Date: day1, ProductID: "SKU-0001", Kind: domain.MovementPurchase, Quantity: 50},
		},
	}
}

func Test_Export_WritesFixedSchemaTables(t *testing.T) {
	registry := locale.NewRegistry()
	en, err := registry.Lookup("en_US")
	require.NoError(t, err)

	root := filepath.Join(t.TempDir(), "does", "not", "exist")
	exporter := export.NewExporter(root, export.Options{}, zerolog.Nop())

	manifest, err := exporter.Export(context.Background(), smallDataset(en), en, export.Manifest{RunID: "run-1", Seed: 9})
	require.NoError(t, err)

	dir := filepath.Join(root, "en_EN")
	for _, name := range export.TableNames {
		table, err := export.ReadCSV(filepath.Join(dir, export.FileName(name)), name)
		require.NoError(t, err, name)
		assert.Equal(t, export.Headers[name], table.Header, name)
		assert.Equal(t, manifest.Rows(name), len(table.Rows), name)
	}

	sales, err := export.ReadCSV(filepath.Join(dir, "fact_sales.csv"), export.TableSales)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2022-01-01", "SKU-0001", "2", "2", "19.99", "10.50", "39.98"}, sales.Rows[0])

	movements, err := export.ReadCSV(filepath.Join(dir, "fact_inventory_movements.csv"), export.TableMovements)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"1", "2021-12-31", "SKU-0001", "Initial_Purchase", "16"},
		{"2", "2022-01-01", "SKU-0001", "Sale", "2"},
		{"3", "2022-01-01", "SKU-0001", "Purchase", "50"},
	}, movements.Rows)

	dates, err := export.ReadCSV(filepath.Join(dir, "dim_dates.csv"), export.TableDates)
	require.NoError(t, err)
	assert.Equal(t, []string{"2022-01-02", "2022", "1", "2", "January", "1"}, dates.Rows[1])

	onDisk, err := export.ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, "run-1", onDisk.RunID)
	assert.Equal(t, "en_US", onDisk.Locale)
	assert.Equal(t, "en_EN", onDisk.Folder)
	assert.Equal(t, uint64(9), onDisk.Seed)
	assert.False(t, onDisk.GeneratedAt.IsZero())
	assert.Equal(t, manifest.Files(), onDisk.Files())
}

func Test_Export_HeadersIdenticalAcrossLocales(t *testing.T) {
	registry := locale.NewRegistry()
	root := t.TempDir()
	exporter := export.NewExporter(root, export.Options{}, zerolog.Nop())

	for _, code := range []string{"en_US", "es_ES"} {
		loc, err := registry.Lookup(code)
		require.NoError(t, err)
		_, err = exporter.Export(context.Background(), smallDataset(loc), loc, export.Manifest{})
		require.NoError(t, err)
	}

	for _, name := range export.TableNames {
		en, err := os.ReadFile(filepath.Join(root, "en_EN", export.FileName(name)))
		require.NoError(t, err)
		es, err := os.ReadFile(filepath.Join(root, "es_ES", export.FileName(name)))
		require.NoError(t, err)

		enHeader := en[:indexNewline(en)]
		esHeader := es[:indexNewline(es)]
		assert.Equal(t, string(enHeader), string(esHeader), name)
	}

	es, err := export.ReadCSV(filepath.Join(root, "es_ES", "fact_inventory_movements.csv"), export.TableMovements)
	require.NoError(t, err)
	assert.Equal(t, "Compra_Inicial", es.Rows[0][3])
	assert.Equal(t, "Venta", es.Rows[1][3])
	assert.Equal(t, "Compra", es.Rows[2][3])
}

func indexNewline(b []byte) int {
	for i, c := range b {
		if c == '\n' {
			return i
		}
	}
	return len(b)
}

func Test_Export_WritesWorkbookWhenEnabled(t *testing.T) {
	loc, err := locale.NewRegistry().Lookup("es_ES")
	require.NoError(t, err)
	root := t.TempDir()

	manifest, err := export.NewExporter(root, export.Options{Workbook: true}, zerolog.Nop()).
		Export(context.Background(), smallDataset(loc), loc, export.Manifest{})
	require.NoError(t, err)
	assert.Equal(t, export.WorkbookFile, manifest.Workbook)

	f, err := excelize.OpenFile(filepath.Join(root, "es_ES", export.WorkbookFile))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, export.TableNames, f.GetSheetList())
	rows, err := f.GetRows(export.TableChannels)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, export.Headers[export.TableChannels], rows[0])
	assert.Equal(t, []string{"3", "Tienda Física"}, rows[3])
}

func Test_Export_FailsWhenDestinationUnwritable(t *testing.T) {
	loc, err := locale.NewRegistry().Lookup("en_US")
	require.NoError(t, err)

	root := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(root, []byte("not a directory"), 0o644))

	_, err = export.NewExporter(root, export.Options{}, zerolog.Nop()).
		Export(context.Background(), smallDataset(loc), loc, export.Manifest{})
	assert.Error(t, err)
}

func Test_Export_StopsOnCancelledContext(t *testing.T) {
	loc, err := locale.NewRegistry().Lookup("en_US")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := t.TempDir()
	_, err = export.NewExporter(root, export.Options{}, zerolog.Nop()).Export(ctx, smallDataset(loc), loc, export.Manifest{})

	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(filepath.Join(root, "en_EN", export.ManifestFile))
	assert.True(t, os.IsNotExist(statErr))
}

func Test_ListManifests_SkipsDirectoriesWithoutManifest(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "partial"), 0o755))
	require.NoError(t, export.WriteManifest(mkdir(t, root, "es_ES"), &export.Manifest{Folder: "es_ES"}))
	require.NoError(t, export.WriteManifest(mkdir(t, root, "en_EN"), &export.Manifest{Folder: "en_EN"}))

	manifests, err := export.ListManifests(root)
	require.NoError(t, err)
	require.Len(t, manifests, 2)
	assert.Equal(t, "en_EN", manifests[0].Folder)
	assert.Equal(t, "es_ES", manifests[1].Folder)
}

func mkdir(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return dir
}
