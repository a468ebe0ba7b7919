package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// ManifestFile is written last into every locale directory.
const ManifestFile = "manifest.json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TableInfo describes one exported table.
type TableInfo struct {
	Name string `json:"name"`
	File string `json:"file"`
	Rows int    `json:"rows"`
}

// Manifest describes one locale dataset on disk.
type Manifest struct {
	RunID       string      `json:"run_id"`
	Locale      string      `json:"locale"`
	Folder      string      `json:"folder"`
	Seed        uint64      `json:"seed"`
	StartDate   string      `json:"start_date"`
	Days        int         `json:"days"`
	Products    int         `json:"products"`
	Tables      []TableInfo `json:"tables"`
	Workbook    string      `json:"workbook,omitempty"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// Rows returns the row count of a table, or -1 when the table is not listed.
func (m *Manifest) Rows(table string) int {
	for _, t := range m.Tables {
		if t.Name == table {
			return t.Rows
		}
	}
	return -1
}

// Files lists every file the manifest accounts for, the manifest itself last.
func (m *Manifest) Files() []string {
	files := make([]string, 0, len(m.Tables)+2)
	for _, t := range m.Tables {
		files = append(files, t.File)
	}
	if m.Workbook != "" {
		files = append(files, m.Workbook)
	}
	return append(files, ManifestFile)
}

func MarshalManifest(m *Manifest) ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

func UnmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

// WriteManifest stores m as dir/manifest.json.
func WriteManifest(dir string, m *Manifest) error {
	data, err := MarshalManifest(m)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), data, 0o644)
}

// ReadManifest loads dir/manifest.json.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	return UnmarshalManifest(data)
}

// ListManifests reads the manifest of every locale directory under root, sorted by
// folder. Directories without a manifest are skipped.
func ListManifests(root string) ([]*Manifest, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", root, err)
	}

	manifests := make([]*Manifest, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, err := ReadManifest(filepath.Join(root, e.Name()))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read manifest in %s: %w", e.Name(), err)
		}
		manifests = append(manifests, m)
	}
	sort.Slice(manifests, func(i, j int) bool { return manifests[i].Folder < manifests[j].Folder })
	return manifests, nil
}
