// Package transform applies ordered operation pipelines to tables.
// The operation set is closed (filter, select, derive, aggregate) so a
// spec can be checked exhaustively and each step either produces a new
// table or fails with the step index attached.
package transform

import (
	"encoding/json"
	"fmt"

	"github.com/freight-audit/backend/internal/table"
)

// Op is one pipeline step. Implementations are immutable once parsed
// and never mutate their input table.
type Op interface {
	Kind() string
	Apply(t *table.Table) (*table.Table, error)
}

// Spec is an ordered operation list, applied left to right.
type Spec []Op

// Literal is a JSON scalar lifted into a cell value.
type Literal struct {
	table.Value
}

func (l *Literal) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case nil:
		l.Value = table.None()
	case float64:
		l.Value = table.Num(x)
	case string:
		l.Value = table.Str(x)
	case bool:
		l.Value = table.Boolean(x)
	default:
		return fmt.Errorf("unsupported literal %v", v)
	}
	return nil
}

// Condition is a single column predicate used by filter steps.
type Condition struct {
	Column string  `json:"column"`
	Cmp    string  `json:"cmp"`
	Value  Literal `json:"value"`
}

// FilterOp keeps rows matching all conditions.
type FilterOp struct {
	Conditions []Condition `json:"where"`
}

// SelectOp projects a subset or reordering of columns.
type SelectOp struct {
	Columns []string `json:"columns"`
}

// Operand is either a column reference or a literal.
type Operand struct {
	Column string   `json:"column,omitempty"`
	Value  *Literal `json:"value,omitempty"`
}

// DeriveOp appends a column computed from existing columns.
type DeriveOp struct {
	Column string  `json:"as"`
	Left   Operand `json:"left"`
	Fn     string  `json:"fn"` // add, sub, mul, div, concat
	Right  Operand `json:"right"`
}

// Metric names a reducer over one value column.
type Metric struct {
	Column  string `json:"column"`
	Reducer string `json:"reducer"` // sum, count, mean, min, max
	As      string `json:"as,omitempty"`
}

// AggregateOp groups rows by key columns, one output row per group.
type AggregateOp struct {
	By      []string `json:"by"`
	Metrics []Metric `json:"metrics"`
}

func (o *FilterOp) Kind() string    { return "filter" }
func (o *SelectOp) Kind() string    { return "select" }
func (o *DeriveOp) Kind() string    { return "derive" }
func (o *AggregateOp) Kind() string { return "aggregate" }

// ParseSpec decodes a JSON array of tagged operations, e.g.:
//
//	[{"op":"filter","where":[{"column":"amount","cmp":"gt","value":10}]},
//	 {"op":"aggregate","by":["name"],"metrics":[{"column":"amount","reducer":"sum"}]}]
func ParseSpec(data []byte) (Spec, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("spec must be a JSON array of operations: %w", err)
	}

	spec := make(Spec, 0, len(raws))
	for i, raw := range raws {
		var tag struct {
			Op string `json:"op"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, fmt.Errorf("operation %d: %w", i, err)
		}

		var op Op
		switch tag.Op {
		case "filter":
			op = &FilterOp{}
		case "select":
			op = &SelectOp{}
		case "derive":
			op = &DeriveOp{}
		case "aggregate":
			op = &AggregateOp{}
		default:
			return nil, fmt.Errorf("operation %d: unknown op %q", i, tag.Op)
		}
		if err := json.Unmarshal(raw, op); err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, tag.Op, err)
		}
		if err := validateOp(op); err != nil {
			return nil, fmt.Errorf("operation %d (%s): %w", i, tag.Op, err)
		}
		spec = append(spec, op)
	}
	return spec, nil
}

func validateOp(op Op) error {
	switch o := op.(type) {
	case *FilterOp:
		if len(o.Conditions) == 0 {
			return fmt.Errorf("filter needs at least one condition")
		}
		for _, c := range o.Conditions {
			if c.Column == "" {
				return fmt.Errorf("filter condition without column")
			}
			switch c.Cmp {
			case "eq", "ne", "gt", "ge", "lt", "le", "contains":
			default:
				return fmt.Errorf("unknown comparator %q", c.Cmp)
			}
		}
	case *SelectOp:
		if len(o.Columns) == 0 {
			return fmt.Errorf("select needs at least one column")
		}
	case *DeriveOp:
		if o.Column == "" {
			return fmt.Errorf("derive needs an output column name")
		}
		switch o.Fn {
		case "add", "sub", "mul", "div", "concat":
		default:
			return fmt.Errorf("unknown derive fn %q", o.Fn)
		}
		for _, side := range []Operand{o.Left, o.Right} {
			if side.Column == "" && side.Value == nil {
				return fmt.Errorf("derive operand needs a column or a value")
			}
		}
	case *AggregateOp:
		if len(o.By) == 0 {
			return fmt.Errorf("aggregate needs at least one key column")
		}
		for _, m := range o.Metrics {
			if m.Column == "" {
				return fmt.Errorf("metric without column")
			}
			switch m.Reducer {
			case "sum", "count", "mean", "min", "max":
			default:
				return fmt.Errorf("unknown reducer %q", m.Reducer)
			}
		}
	}
	return nil
}
