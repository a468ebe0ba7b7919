package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/shopgen/internal/cache"
	"github.com/andresuchdata/shopgen/internal/export"
	"github.com/andresuchdata/shopgen/internal/pipeline"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrUnknownTable    = errors.New("unknown table")
	ErrRunsUnavailable = errors.New("run history is not configured")
	ErrRunNotFound     = errors.New("run not found")
)

// RunReader reads the run history
type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]*pipeline.Run, error)
	GetRun(ctx context.Context, runID string) (*pipeline.Run, error)
}

// DatasetService serves the datasets found under one output directory
type DatasetService struct {
	root  string
	cache cache.ManifestCache
	runs  RunReader
}

// NewDatasetService creates a dataset service. runs may be nil when no database is
// configured.
func NewDatasetService(root string, manifests cache.ManifestCache, runs RunReader) *DatasetService {
	if manifests == nil {
		manifests = cache.NewNoopManifestCache()
	}
	return &DatasetService{root: root, cache: manifests, runs: runs}
}

// ListDatasets returns the manifest of every generated locale, sorted by folder
func (s *DatasetService) ListDatasets(ctx context.Context) ([]*export.Manifest, error) {
	if _, err := os.Stat(s.root); os.IsNotExist(err) {
		return []*export.Manifest{}, nil
	}
	return export.ListManifests(s.root)
}

// GetDataset returns the manifest of one locale folder, from cache when possible
func (s *DatasetService) GetDataset(ctx context.Context, folder string) (*export.Manifest, error) {
	if !validFolder(folder) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, folder)
	}

	if m, ok, err := s.cache.GetManifest(ctx, folder); err != nil {
		log.Warn().Err(err).Str("folder", folder).Msg("manifest cache read failed")
	} else if ok {
		return m, nil
	}

	m, err := export.ReadManifest(filepath.Join(s.root, folder))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, folder)
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetManifest(ctx, m); err != nil {
		log.Warn().Err(err).Str("folder", folder).Msg("manifest cache write failed")
	}
	return m, nil
}

// TablePath resolves the CSV file of table inside a locale folder
func (s *DatasetService) TablePath(ctx context.Context, folder, table string) (string, error) {
	if !export.IsTable(table) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	if _, err := s.GetDataset(ctx, folder); err != nil {
		return "", err
	}

	path := filepath.Join(s.root, folder, export.FileName(table))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s/%s", ErrDatasetNotFound, folder, table)
	}
	return path, nil
}

// ListRuns returns recent generation runs
func (s *DatasetService) ListRuns(ctx context.Context, limit int) ([]*pipeline.Run, error) {
	if s.runs == nil {
		return nil, ErrRunsUnavailable
	}
	return s.runs.ListRuns(ctx, limit)
}

// GetRun returns one generation run by its run id
func (s *DatasetService) GetRun(ctx context.Context, runID string) (*pipeline.Run, error) {
	if s.runs == nil {
		return nil, ErrRunsUnavailable
	}
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	run, err := s.runs.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return run, nil
}

// validFolder accepts a single path segment only
func validFolder(folder string) bool {
	if folder == "" || folder == "." || folder == ".." {
		return false
	}
	return !strings.ContainsAny(folder, `/\`)
}
