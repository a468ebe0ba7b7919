package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/andresuchdata/shopgen/internal/export"
)

// Publisher uploads exported locale directories to object storage under
// <prefix>/<folder>/<file>.
type Publisher struct {
	store  ObjectStorage
	prefix string
	log    zerolog.Logger
}

func NewPublisher(store ObjectStorage, prefix string, log zerolog.Logger) *Publisher {
	return &Publisher{store: store, prefix: prefix, log: log}
}

// Key returns the object key of file in a locale folder.
func (p *Publisher) Key(folder, file string) string {
	return path.Join(p.prefix, folder, file)
}

// Publish uploads every file the manifest in dir lists. The manifest goes last so a
// reader never sees it before the tables it describes.
func (p *Publisher) Publish(ctx context.Context, dir string) ([]string, error) {
	m, err := export.ReadManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	keys := make([]string, 0, len(m.Files()))
	for _, file := range m.Files() {
		if err := ctx.Err(); err != nil {
			return keys, err
		}

		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return keys, fmt.Errorf("failed to read %s: %w", file, err)
		}

		key := p.Key(m.Folder, file)
		if err := p.store.UploadObject(ctx, key, data); err != nil {
			return keys, err
		}
		keys = append(keys, key)

		p.log.Debug().Str("key", key).Int("bytes", len(data)).Msg("object uploaded")
	}

	p.log.Info().Str("folder", m.Folder).Int("objects", len(keys)).Msg("dataset published")
	return keys, nil
}

func (p *Publisher) Name() string { return "publish" }

// Consume publishes the directory a pipeline run just exported.
func (p *Publisher) Consume(ctx context.Context, dir string, _ *export.Manifest) error {
	_, err := p.Publish(ctx, dir)
	return err
}
