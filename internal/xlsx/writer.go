package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/freight-audit/backend/internal/table"
)

// Sheet pairs a sheet name with its table for multi-sheet output.
type Sheet struct {
	Name  string
	Table *table.Table
}

// Write serializes a table as a single-sheet workbook.
func Write(t *table.Table) ([]byte, error) {
	return WriteWorkbook([]Sheet{{Name: "Sheet1", Table: t}})
}

// WriteWorkbook serializes one sheet per entry, in order. Each sheet
// gets a header row followed by the data rows; cell types are written
// natively so numbers, text and booleans survive a round-trip.
func WriteWorkbook(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.Name); err != nil {
				return nil, fmt.Errorf("naming sheet %q: %w", s.Name, err)
			}
		} else {
			if _, err := f.NewSheet(s.Name); err != nil {
				return nil, fmt.Errorf("adding sheet %q: %w", s.Name, err)
			}
		}
		if err := writeSheet(f, s.Name, s.Table); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, t *table.Table) error {
	header := make([]interface{}, t.NumCols())
	for i, c := range t.Columns() {
		header[i] = c
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("writing header of %q: %w", name, err)
	}

	for r := 0; r < t.NumRows(); r++ {
		cells := make([]interface{}, t.NumCols())
		for i, v := range t.Row(r) {
			cells[i] = v.Native()
		}
		axis, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, axis, &cells); err != nil {
			return fmt.Errorf("writing row %d of %q: %w", r+2, name, err)
		}
	}
	return nil
}
