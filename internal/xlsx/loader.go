// Package xlsx converts between xlsx workbook byte streams and the
// in-memory table model. It wraps excelize so that nothing above this
// package touches spreadsheet cell addressing.
package xlsx

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/freight-audit/backend/internal/table"
)

// Workbook is an open xlsx file.
type Workbook struct {
	f *excelize.File
}

// OpenWorkbook parses a workbook from raw bytes. A stream that is not
// a valid xlsx file yields MalformedInputError.
func OpenWorkbook(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &MalformedInputError{Cause: err}
	}
	return &Workbook{f: f}, nil
}

// Close releases the underlying file.
func (w *Workbook) Close() error { return w.f.Close() }

// SheetNames returns the sheet names in workbook order.
func (w *Workbook) SheetNames() []string { return w.f.GetSheetList() }

// SheetRows returns all rows of a sheet as typed values. Rows keep
// their original width; trailing cells excelize trims are restored as
// Empty only up to the widest row seen.
func (w *Workbook) SheetRows(sheet string) ([][]table.Value, error) {
	if !w.hasSheet(sheet) {
		return nil, &SheetNotFoundError{Sheet: sheet}
	}
	raw, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, &MalformedInputError{Cause: err}
	}
	width := 0
	for _, r := range raw {
		if len(r) > width {
			width = len(r)
		}
	}
	rows := make([][]table.Value, len(raw))
	for ri, r := range raw {
		row := make([]table.Value, width)
		for ci := range row {
			if ci < len(r) {
				row[ci] = w.cellValue(sheet, ci, ri, r[ci])
			} else {
				row[ci] = table.None()
			}
		}
		rows[ri] = row
	}
	return rows, nil
}

// Table builds a Table from a sheet. An empty sheet name selects the
// first sheet. The first row supplies column names; duplicates get an
// index suffix and blank headers a positional name.
func (w *Workbook) Table(sheet string) (*table.Table, error) {
	if sheet == "" {
		names := w.SheetNames()
		if len(names) == 0 {
			return nil, &MalformedInputError{Cause: fmt.Errorf("workbook has no sheets")}
		}
		sheet = names[0]
	}
	rows, err := w.SheetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return table.MustNew(), nil
	}
	headers := dedupeHeaders(rows[0])
	t := table.MustNew(headers...)
	for _, row := range rows[1:] {
		t.AppendRow(row...)
	}
	return t, nil
}

// Load is the one-shot loader: bytes in, Table out.
func Load(data []byte, sheet string) (*table.Table, error) {
	w, err := OpenWorkbook(data)
	if err != nil {
		return nil, err
	}
	defer w.Close()
	return w.Table(sheet)
}

func (w *Workbook) hasSheet(name string) bool {
	for _, s := range w.f.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// cellValue types a rendered cell using the stored xlsx cell type.
// Plain numeric cells carry no type attribute, hence CellTypeUnset.
func (w *Workbook) cellValue(sheet string, col, row int, s string) table.Value {
	if s == "" {
		return table.None()
	}
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return table.Str(s)
	}
	ct, err := w.f.GetCellType(sheet, axis)
	if err != nil {
		return table.Str(s)
	}
	switch ct {
	case excelize.CellTypeBool:
		return table.Boolean(s == "TRUE" || s == "1")
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return table.Str(s)
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		if f, perr := strconv.ParseFloat(s, 64); perr == nil {
			return table.Num(f)
		}
		return table.Str(s)
	default:
		return table.Str(s)
	}
}

// dedupeHeaders turns a header row into unique column names.
func dedupeHeaders(row []table.Value) []string {
	names := make([]string, 0, len(row))
	seen := make(map[string]int, len(row))
	for i, v := range row {
		name := v.AsString()
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		base := name
		for n := seen[base]; ; n++ {
			if _, dup := seen[name]; !dup {
				seen[base] = n
				break
			}
			name = fmt.Sprintf("%s_%d", base, n+1)
		}
		seen[name] = 1
		names = append(names, name)
	}
	return names
}
