// Package table holds the in-memory tabular representation shared by the
// loader, the transform engine and the writer. A Table is an ordered set of
// named, equal-length columns; transforms never mutate a Table in place.
package table

import "fmt"

// Table is rows × named columns. Column names are unique and column
// order is significant.
type Table struct {
	names   []string
	columns [][]Value
	index   map[string]int
}

// New creates an empty table with the given column names.
// Duplicate names are rejected.
func New(names ...string) (*Table, error) {
	t := &Table{
		names:   make([]string, 0, len(names)),
		columns: make([][]Value, 0, len(names)),
		index:   make(map[string]int, len(names)),
	}
	for _, n := range names {
		if _, dup := t.index[n]; dup {
			return nil, fmt.Errorf("duplicate column name %q", n)
		}
		t.index[n] = len(t.names)
		t.names = append(t.names, n)
		t.columns = append(t.columns, nil)
	}
	return t, nil
}

// MustNew is New for statically known column sets (tests, exporters).
func MustNew(names ...string) *Table {
	t, err := New(names...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the column names in order. The slice is a copy.
func (t *Table) Columns() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0])
}

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.names) }

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	i, ok := t.index[name]
	if !ok {
		return -1
	}
	return i
}

// At returns the cell at (row, column name). Missing columns and
// out-of-range rows return Empty.
func (t *Table) At(row int, name string) Value {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.NumRows() {
		return None()
	}
	return t.columns[i][row]
}

// Row returns a copy of a full row in column order.
func (t *Table) Row(row int) []Value {
	out := make([]Value, len(t.names))
	for i := range t.names {
		if row >= 0 && row < len(t.columns[i]) {
			out[i] = t.columns[i][row]
		}
	}
	return out
}

// AppendRow adds one row. Short rows are padded with Empty; extra
// cells are dropped so the equal-length invariant always holds.
func (t *Table) AppendRow(cells ...Value) {
	for i := range t.columns {
		if i < len(cells) {
			t.columns[i] = append(t.columns[i], cells[i])
		} else {
			t.columns[i] = append(t.columns[i], None())
		}
	}
}

// Equal reports whether two tables have identical column order, names
// and cell values.
func (t *Table) Equal(o *Table) bool {
	if t.NumCols() != o.NumCols() || t.NumRows() != o.NumRows() {
		return false
	}
	for i, n := range t.names {
		if o.names[i] != n {
			return false
		}
	}
	for c := range t.columns {
		for r := range t.columns[c] {
			if !t.columns[c][r].Equal(o.columns[c][r]) {
				return false
			}
		}
	}
	return true
}

// Project returns a new table with the named columns in the given
// order. Every name must exist in the receiver.
func (t *Table) Project(names []string) (*Table, error) {
	out, err := New(names...)
	if err != nil {
		return nil, err
	}
	for i, n := range names {
		src, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("no such column %q", n)
		}
		col := make([]Value, len(t.columns[src]))
		copy(col, t.columns[src])
		out.columns[i] = col
	}
	return out, nil
}

// FilterRows returns a new table containing the rows for which keep
// returns true.
func (t *Table) FilterRows(keep func(row int) bool) *Table {
	out := MustNew(t.names...)
	for r := 0; r < t.NumRows(); r++ {
		if keep(r) {
			out.AppendRow(t.Row(r)...)
		}
	}
	return out
}

// WithColumn returns a new table with an extra column appended. The
// values slice must match the row count.
func (t *Table) WithColumn(name string, values []Value) (*Table, error) {
	if _, dup := t.index[name]; dup {
		return nil, fmt.Errorf("duplicate column name %q", name)
	}
	if len(values) != t.NumRows() {
		return nil, fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), t.NumRows())
	}
	out := MustNew(append(t.Columns(), name)...)
	for i := range t.names {
		col := make([]Value, len(t.columns[i]))
		copy(col, t.columns[i])
		out.columns[i] = col
	}
	out.columns[len(t.names)] = values
	return out, nil
}
