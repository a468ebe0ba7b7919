package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/shopgen/internal/domain"
	"github.com/andresuchdata/shopgen/internal/export"
	"github.com/andresuchdata/shopgen/internal/locale"
	"github.com/andresuchdata/shopgen/internal/pipeline"
	"github.com/andresuchdata/shopgen/internal/simulation"
)

type memoryStore struct {
	mu      sync.Mutex
	nextID  int64
	runs    map[int64]pipeline.Run
	updates []pipeline.RunStatus
}

func newMemoryStore() *memoryStore {
	return &memoryStore{runs: map[int64]pipeline.Run{}}
}

func (s *memoryStore) CreateRun(_ context.Context, run *pipeline.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	run.ID = s.nextID
	s.runs[run.ID] = *run
	return nil
}

func (s *memoryStore) UpdateRun(_ context.Context, run *pipeline.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	s.updates = append(s.updates, run.Status)
	return nil
}

func smallConfig(seed uint64) pipeline.RunConfig {
	cfg := pipeline.DefaultRunConfig()
	cfg.Products = 12
	cfg.Days = 45
	cfg.Seed = seed
	return cfg
}

func builtinLocales(t *testing.T) []*locale.Locale {
	t.Helper()
	locales, err := locale.NewRegistry().Resolve([]string{"en_US", "es_ES"})
	require.NoError(t, err)
	return locales
}

func Test_Worker_Process_ExportsAndRecordsRun(t *testing.T) {
	root := t.TempDir()
	store := newMemoryStore()

	var consumed []string
	sink := pipeline.SinkFunc{Label: "recorder", Fn: func(_ context.Context, dir string, m *export.Manifest) error {
		_, err := os.Stat(filepath.Join(dir, export.ManifestFile))
		require.NoError(t, err)
		consumed = append(consumed, m.Folder)
		return nil
	}}

	worker := pipeline.NewWorker(smallConfig(3), export.NewExporter(root, export.Options{}, zerolog.Nop()),
		pipeline.WithRunStore(store), pipeline.WithSinks(sink))

	loc := builtinLocales(t)[1]
	manifest, err := worker.Process(context.Background(), loc)
	require.NoError(t, err)

	assert.Equal(t, "es_ES", manifest.Folder)
	assert.Equal(t, uint64(3), manifest.Seed)
	assert.Equal(t, "2022-01-01", manifest.StartDate)
	assert.Equal(t, 12, manifest.Rows(export.TableProducts))
	assert.Equal(t, 45, manifest.Rows(export.TableDates))
	assert.Equal(t, 3, manifest.Rows(export.TableChannels))
	assert.Equal(t, []string{"es_ES"}, consumed)

	require.Len(t, store.runs, 1)
	run := store.runs[1]
	assert.Equal(t, manifest.RunID, run.RunID)
	assert.Equal(t, pipeline.StatusCompleted, run.Status)
	assert.Equal(t, manifest.Rows(export.TableSales), run.SalesRows)
	assert.Equal(t, manifest.Rows(export.TableMovements), run.MovementRows)
	assert.NotNil(t, run.CompletedAt)
	assert.Equal(t, []pipeline.RunStatus{pipeline.StatusProcessing, pipeline.StatusCompleted}, store.updates)
}

func Test_Worker_Generate_VerifiesLedger(t *testing.T) {
	worker := pipeline.NewWorker(smallConfig(8), export.NewExporter(t.TempDir(), export.Options{}, zerolog.Nop()))

	ds, stats, err := worker.Generate(builtinLocales(t)[0])
	require.NoError(t, err)

	assert.Len(t, ds.Products, 12)
	assert.Len(t, ds.Days, 45)
	assert.Equal(t, len(ds.Sales), stats.SaleAttempts-stats.StockOuts)
	assert.NoError(t, simulation.Verify(ds, simulation.DefaultParams()))
}

func Test_Worker_Process_SinkFailureFailsRun(t *testing.T) {
	store := newMemoryStore()
	boom := errors.New("bucket unavailable")
	sink := pipeline.SinkFunc{Label: "publish", Fn: func(context.Context, string, *export.Manifest) error {
		return boom
	}}

	worker := pipeline.NewWorker(smallConfig(1), export.NewExporter(t.TempDir(), export.Options{}, zerolog.Nop()),
		pipeline.WithRunStore(store), pipeline.WithSinks(sink))

	_, err := worker.Process(context.Background(), builtinLocales(t)[0])

	require.ErrorIs(t, err, boom)
	run := store.runs[1]
	assert.Equal(t, pipeline.StatusFailed, run.Status)
	assert.Contains(t, run.ErrorMessage, "publish failed")
}

func Test_Worker_Process_ExportFailureFailsRun(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, nil, 0o644))
	store := newMemoryStore()

	worker := pipeline.NewWorker(smallConfig(1), export.NewExporter(root, export.Options{}, zerolog.Nop()),
		pipeline.WithRunStore(store))

	_, err := worker.Process(context.Background(), builtinLocales(t)[0])

	require.Error(t, err)
	assert.Equal(t, pipeline.StatusFailed, store.runs[1].Status)
	assert.Contains(t, store.runs[1].ErrorMessage, "export failed")
}

func Test_Orchestrator_OutputIndependentOfWorkerCount(t *testing.T) {
	tests := []struct {
		name    string
		workers int
	}{
		{name: "sequential", workers: 1},
		{name: "parallel", workers: 2},
	}

	outputs := make(map[string]map[string][]byte)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			cfg := smallConfig(42)
			worker := pipeline.NewWorker(cfg, export.NewExporter(root, export.Options{}, zerolog.Nop()))

			summary, err := pipeline.NewOrchestrator(worker, tc.workers, zerolog.Nop()).
				Run(context.Background(), builtinLocales(t))
			require.NoError(t, err)
			require.Len(t, summary.Manifests, 2)
			assert.Equal(t, "en_EN", summary.Manifests[0].Folder)
			assert.Equal(t, "es_ES", summary.Manifests[1].Folder)

			files := make(map[string][]byte)
			for _, folder := range []string{"en_EN", "es_ES"} {
				for _, name := range export.TableNames {
					data, err := os.ReadFile(filepath.Join(root, folder, export.FileName(name)))
					require.NoError(t, err)
					files[folder+"/"+name] = data
				}
			}
			outputs[tc.name] = files
		})
	}

	require.Len(t, outputs, 2)
	assert.Equal(t, outputs["sequential"], outputs["parallel"])
}

func Test_Orchestrator_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	worker := pipeline.NewWorker(smallConfig(1), export.NewExporter(t.TempDir(), export.Options{}, zerolog.Nop()))
	_, err := pipeline.NewOrchestrator(worker, 1, zerolog.Nop()).Run(ctx, builtinLocales(t))

	assert.ErrorIs(t, err, context.Canceled)
}

func Test_Worker_LocalesUseIndependentStreams(t *testing.T) {
	worker := pipeline.NewWorker(smallConfig(42), export.NewExporter(t.TempDir(), export.Options{}, zerolog.Nop()))
	locales := builtinLocales(t)

	en, _, err := worker.Generate(locales[0])
	require.NoError(t, err)
	es, _, err := worker.Generate(locales[1])
	require.NoError(t, err)

	// same seed, different locale code: the opening stock must not repeat
	assert.NotEqual(t, openingStock(en), openingStock(es))
}

func openingStock(ds *domain.Dataset) []int {
	var out []int
	for _, m := range ds.Movements {
		if m.Kind == domain.MovementInitial {
			out = append(out, m.Quantity)
		}
	}
	return out
}
