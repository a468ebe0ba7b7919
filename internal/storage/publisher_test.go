package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/shopgen/internal/config"
	"github.com/andresuchdata/shopgen/internal/export"
)

type memoryStorage struct {
	objects map[string][]byte
	order   []string
	failOn  string
}

func (m *memoryStorage) UploadObject(_ context.Context, key string, data []byte) error {
	if key == m.failOn {
		return errors.New("access denied")
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	m.order = append(m.order, key)
	return nil
}

func writeLocaleDir(t *testing.T, workbook bool) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "es_ES")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	m := &export.Manifest{Folder: "es_ES"}
	for _, name := range export.TableNames {
		file := export.FileName(name)
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(name+"\n"), 0o644))
		m.Tables = append(m.Tables, export.TableInfo{Name: name, File: file})
	}
	if workbook {
		require.NoError(t, os.WriteFile(filepath.Join(dir, export.WorkbookFile), []byte("xlsx"), 0o644))
		m.Workbook = export.WorkbookFile
	}
	require.NoError(t, export.WriteManifest(dir, m))
	return dir
}

func Test_Publisher_UploadsManifestLast(t *testing.T) {
	dir := writeLocaleDir(t, true)
	store := &memoryStorage{}

	keys, err := NewPublisher(store, "datasets", zerolog.Nop()).Publish(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"datasets/es_ES/dim_products.csv",
		"datasets/es_ES/dim_channels.csv",
		"datasets/es_ES/dim_dates.csv",
		"datasets/es_ES/fact_sales.csv",
		"datasets/es_ES/fact_inventory_movements.csv",
		"datasets/es_ES/dataset.xlsx",
		"datasets/es_ES/manifest.json",
	}, keys)
	assert.Equal(t, keys, store.order)
	assert.Equal(t, []byte("fact_sales\n"), store.objects["datasets/es_ES/fact_sales.csv"])
}

func Test_Publisher_StopsOnUploadFailure(t *testing.T) {
	dir := writeLocaleDir(t, false)
	store := &memoryStorage{failOn: "es_ES/dim_dates.csv"}

	keys, err := NewPublisher(store, "", zerolog.Nop()).Publish(context.Background(), dir)

	require.Error(t, err)
	assert.Equal(t, []string{"es_ES/dim_products.csv", "es_ES/dim_channels.csv"}, keys)
	assert.NotContains(t, store.objects, "es_ES/manifest.json")
}

func Test_Publisher_RequiresManifest(t *testing.T) {
	_, err := NewPublisher(&memoryStorage{}, "x", zerolog.Nop()).Publish(context.Background(), t.TempDir())
	assert.Error(t, err)
}

func Test_ContentTypeFor(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "a/fact_sales.csv", want: "text/csv"},
		{key: "a/manifest.json", want: "application/json"},
		{key: "a/dataset.xlsx", want: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
		{key: "a/readme", want: "application/octet-stream"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, contentTypeFor(tc.key), tc.key)
	}
}

func Test_EscapeQuery(t *testing.T) {
	assert.Equal(t, `Tienda\'s \\ data`, escapeQuery(`Tienda's \ data`))
}

func Test_New_RejectsIncompleteConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
	}{
		{name: "unknown_driver", cfg: config.StorageConfig{Driver: "ftp"}},
		{name: "minio_without_endpoint", cfg: config.StorageConfig{Driver: "minio", Bucket: "b"}},
		{name: "drive_without_credentials", cfg: config.StorageConfig{Driver: "drive"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(context.Background(), tc.cfg, config.DriveConfig{})
			assert.Error(t, err)
		})
	}
}
