package transform

import (
	"fmt"
	"strings"

	"github.com/freight-audit/backend/internal/table"
)

// Apply runs the spec left to right. The input table is never
// modified; on failure the returned StepError carries the index of the
// step that failed.
func Apply(t *table.Table, spec Spec) (*table.Table, error) {
	cur := t
	for i, op := range spec {
		next, err := op.Apply(cur)
		if err != nil {
			return nil, &StepError{Step: i, Op: op.Kind(), Err: err}
		}
		cur = next
	}
	return cur, nil
}

func (o *FilterOp) Apply(t *table.Table) (*table.Table, error) {
	for _, c := range o.Conditions {
		if !t.HasColumn(c.Column) {
			return nil, &UnknownColumnError{Column: c.Column}
		}
	}
	return t.FilterRows(func(row int) bool {
		for _, c := range o.Conditions {
			if !matches(t.At(row, c.Column), c.Cmp, c.Value.Value) {
				return false
			}
		}
		return true
	}), nil
}

func matches(cell table.Value, cmp string, want table.Value) bool {
	switch cmp {
	case "contains":
		return strings.Contains(cell.AsString(), want.AsString())
	case "eq":
		return cell.Compare(want) == 0
	case "ne":
		return cell.Compare(want) != 0
	case "gt":
		return cell.Compare(want) > 0
	case "ge":
		return cell.Compare(want) >= 0
	case "lt":
		return cell.Compare(want) < 0
	case "le":
		return cell.Compare(want) <= 0
	default:
		return false
	}
}

func (o *SelectOp) Apply(t *table.Table) (*table.Table, error) {
	for _, c := range o.Columns {
		if !t.HasColumn(c) {
			return nil, &UnknownColumnError{Column: c}
		}
	}
	return t.Project(o.Columns)
}

func (o *DeriveOp) Apply(t *table.Table) (*table.Table, error) {
	for _, side := range []Operand{o.Left, o.Right} {
		if side.Column != "" && !t.HasColumn(side.Column) {
			return nil, &UnknownColumnError{Column: side.Column}
		}
	}
	values := make([]table.Value, t.NumRows())
	for r := range values {
		values[r] = evalExpr(t, r, o)
	}
	return t.WithColumn(o.Column, values)
}

func operandValue(t *table.Table, row int, op Operand) table.Value {
	if op.Column != "" {
		return t.At(row, op.Column)
	}
	if op.Value != nil {
		return op.Value.Value
	}
	return table.None()
}

// evalExpr computes one derived cell. Arithmetic over a non-numeric
// operand yields Empty rather than an error, matching how spreadsheet
// data mixes blanks into numeric columns.
func evalExpr(t *table.Table, row int, o *DeriveOp) table.Value {
	left := operandValue(t, row, o.Left)
	right := operandValue(t, row, o.Right)

	if o.Fn == "concat" {
		return table.Str(left.AsString() + right.AsString())
	}

	a, okA := left.AsFloat()
	b, okB := right.AsFloat()
	if !okA || !okB {
		return table.None()
	}
	switch o.Fn {
	case "add":
		return table.Num(a + b)
	case "sub":
		return table.Num(a - b)
	case "mul":
		return table.Num(a * b)
	case "div":
		if b == 0 {
			return table.None()
		}
		return table.Num(a / b)
	default:
		return table.None()
	}
}

func (o *AggregateOp) Apply(t *table.Table) (*table.Table, error) {
	for _, k := range o.By {
		if !t.HasColumn(k) {
			return nil, &UnknownColumnError{Column: k}
		}
	}
	for _, m := range o.Metrics {
		if !t.HasColumn(m.Column) {
			return nil, &UnknownColumnError{Column: m.Column}
		}
	}

	outCols := append([]string{}, o.By...)
	for _, m := range o.Metrics {
		outCols = append(outCols, m.outputName())
	}
	out, err := table.New(outCols...)
	if err != nil {
		return nil, err
	}

	type group struct {
		keys []table.Value
		rows []int
	}
	var order []string
	groups := make(map[string]*group)

	for r := 0; r < t.NumRows(); r++ {
		var sb strings.Builder
		keys := make([]table.Value, len(o.By))
		for i, k := range o.By {
			v := t.At(r, k)
			keys[i] = v
			// kind tag keeps Text "1" and Number 1 in distinct groups
			fmt.Fprintf(&sb, "%d\x1f%s\x1f", v.Kind, v.AsString())
		}
		key := sb.String()
		g, ok := groups[key]
		if !ok {
			g = &group{keys: keys}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, r)
	}

	for _, key := range order {
		g := groups[key]
		cells := append([]table.Value{}, g.keys...)
		for _, m := range o.Metrics {
			cells = append(cells, reduce(t, g.rows, m))
		}
		out.AppendRow(cells...)
	}
	return out, nil
}

func (m Metric) outputName() string {
	if m.As != "" {
		return m.As
	}
	return m.Column
}

func reduce(t *table.Table, rows []int, m Metric) table.Value {
	switch m.Reducer {
	case "count":
		n := 0
		for _, r := range rows {
			if !t.At(r, m.Column).IsEmpty() {
				n++
			}
		}
		return table.Num(float64(n))
	case "sum", "mean":
		sum, n := 0.0, 0
		for _, r := range rows {
			if f, ok := t.At(r, m.Column).AsFloat(); ok {
				sum += f
				n++
			}
		}
		if m.Reducer == "mean" {
			if n == 0 {
				return table.None()
			}
			return table.Num(sum / float64(n))
		}
		return table.Num(sum)
	case "min", "max":
		var best table.Value
		for _, r := range rows {
			v := t.At(r, m.Column)
			if v.IsEmpty() {
				continue
			}
			if best.IsEmpty() {
				best = v
				continue
			}
			c := v.Compare(best)
			if (m.Reducer == "min" && c < 0) || (m.Reducer == "max" && c > 0) {
				best = v
			}
		}
		return best
	default:
		return table.None()
	}
}
