package table

import (
	"fmt"
	"strconv"
)

// Kind identifies the scalar type stored in a cell.
type Kind int

const (
	Empty Kind = iota
	Number
	Text
	Bool
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Number:
		return "number"
	case Text:
		return "text"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is a single cell value. Empty is a valid value, not an error.
type Value struct {
	Kind Kind
	Num  float64
	Str  string
	Bool bool
}

func None() Value          { return Value{Kind: Empty} }
func Num(f float64) Value  { return Value{Kind: Number, Num: f} }
func Str(s string) Value   { return Value{Kind: Text, Str: s} }
func Boolean(b bool) Value { return Value{Kind: Bool, Bool: b} }

// IsEmpty reports whether the value holds nothing.
func (v Value) IsEmpty() bool { return v.Kind == Empty }

// Equal compares kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case Number:
		return v.Num == o.Num
	case Text:
		return v.Str == o.Str
	case Bool:
		return v.Bool == o.Bool
	default:
		return true
	}
}

// AsFloat returns the numeric interpretation of the value.
// Text is parsed when it looks numeric; Bool maps to 0/1.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case Number:
		return v.Num, true
	case Bool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case Text:
		f, err := strconv.ParseFloat(v.Str, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// AsString renders the value for display and grouping keys.
func (v Value) AsString() string {
	switch v.Kind {
	case Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case Text:
		return v.Str
	case Bool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return ""
	}
}

// Native returns the value as the interface type excelize expects
// when writing typed cells. Empty maps to nil.
func (v Value) Native() interface{} {
	switch v.Kind {
	case Number:
		return v.Num
	case Text:
		return v.Str
	case Bool:
		return v.Bool
	default:
		return nil
	}
}

// Compare orders two values. Numbers compare numerically, everything
// else falls back to string comparison. Empty sorts first.
func (v Value) Compare(o Value) int {
	if v.Kind == Empty || o.Kind == Empty {
		if v.Kind == o.Kind {
			return 0
		}
		if v.Kind == Empty {
			return -1
		}
		return 1
	}
	if a, ok := v.AsFloat(); ok {
		if b, ok2 := o.AsFloat(); ok2 {
			switch {
			case a < b:
				return -1
			case a > b:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := v.AsString(), o.AsString()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}
