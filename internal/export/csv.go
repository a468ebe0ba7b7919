package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

// WriteCSV writes the table with its header to path, replacing any existing file.
func WriteCSV(path string, t Table) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Header); err != nil {
		file.Close()
		return err
	}
	if err := writer.WriteAll(t.Rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}

	return file.Close()
}

// ReadCSV loads a table written by WriteCSV.
func ReadCSV(path, name string) (Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(records) == 0 {
		return Table{}, fmt.Errorf("%s has no header", path)
	}
	return Table{Name: name, Header: records[0], Rows: records[1:]}, nil
}
