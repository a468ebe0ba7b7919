package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// WorkbookFile is the name of the optional single-file export.
const WorkbookFile = "dataset.xlsx"

// WriteWorkbook writes every table as its own sheet of one workbook.
func WriteWorkbook(path string, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), t.Name); err != nil {
				return fmt.Errorf("failed to rename sheet for %s: %w", t.Name, err)
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", t.Name, err)
		}

		sw, err := f.NewStreamWriter(t.Name)
		if err != nil {
			return fmt.Errorf("failed to open sheet %s: %w", t.Name, err)
		}
		if err := sw.SetRow("A1", toCells(t.Header)); err != nil {
			return fmt.Errorf("failed to write %s header: %w", t.Name, err)
		}
		for r, row := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return err
			}
			if err := sw.SetRow(cell, toCells(row)); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", t.Name, r+1, err)
			}
		}
		if err := sw.Flush(); err != nil {
			return fmt.Errorf("failed to flush sheet %s: %w", t.Name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			cells[i] = n
			continue
		}
		cells[i] = v
	}
	return cells
}
