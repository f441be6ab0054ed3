package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsFloat(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want float64
		ok   bool
	}{
		{"number", Num(3.5), 3.5, true},
		{"numeric text", Str("12.25"), 12.25, true},
		{"plain text", Str("hello"), 0, false},
		{"bool true", Boolean(true), 1, true},
		{"bool false", Boolean(false), 0, true},
		{"empty", None(), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.v.AsFloat()
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAsString(t *testing.T) {
	assert.Equal(t, "42", Num(42).AsString())
	assert.Equal(t, "3.25", Num(3.25).AsString())
	assert.Equal(t, "TRUE", Boolean(true).AsString())
	assert.Equal(t, "", None().AsString())
	assert.Equal(t, "x", Str("x").AsString())
}

func TestCompare(t *testing.T) {
	// numeric comparison when both sides parse
	assert.Equal(t, -1, Num(2).Compare(Num(10)))
	assert.Equal(t, 0, Str("5").Compare(Num(5)))

	// string comparison otherwise
	assert.Equal(t, 1, Str("b").Compare(Str("a")))

	// empty sorts first
	assert.Equal(t, -1, None().Compare(Num(-100)))
	assert.Equal(t, 0, None().Compare(None()))
}

func TestNative(t *testing.T) {
	assert.Nil(t, None().Native())
	assert.Equal(t, 4.5, Num(4.5).Native())
	assert.Equal(t, "q", Str("q").Native())
	assert.Equal(t, true, Boolean(true).Native())
}
