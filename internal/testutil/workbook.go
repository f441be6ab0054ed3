// Package testutil provides helpers for building xlsx fixtures in tests.
package testutil

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

// SheetData is one sheet of a fixture workbook: the first row is the
// header, the rest are data rows. Cell values may be string, float64,
// int or bool.
type SheetData struct {
	Name string
	Rows [][]interface{}
}

// WorkbookBytes builds an in-memory xlsx workbook from the given sheets.
func WorkbookBytes(t *testing.T, sheets ...SheetData) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				t.Fatalf("add sheet %s: %v", sheet.Name, err)
			}
		}
		for r, row := range sheet.Rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
