package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-audit/backend/internal/table"
)

func salesTable() *table.Table {
	t := table.MustNew("name", "region", "amount")
	t.AppendRow(table.Str("a"), table.Str("north"), table.Num(10))
	t.AppendRow(table.Str("b"), table.Str("south"), table.Num(5))
	t.AppendRow(table.Str("a"), table.Str("north"), table.Num(7))
	t.AppendRow(table.Str("c"), table.Str("south"), table.Num(3))
	return t
}

func TestApply_EmptySpecIsIdentity(t *testing.T) {
	in := salesTable()
	out, err := Apply(in, Spec{})
	require.NoError(t, err)
	assert.True(t, in.Equal(out))
}

func TestApply_StepErrorCarriesIndex(t *testing.T) {
	spec, err := ParseSpec([]byte(`[
		{"op":"select","columns":["name"]},
		{"op":"filter","where":[{"column":"amount","cmp":"gt","value":1}]}
	]`))
	require.NoError(t, err)

	_, err = Apply(salesTable(), spec)
	require.Error(t, err)

	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, 1, stepErr.Step)
	assert.Equal(t, "filter", stepErr.Op)

	var colErr *UnknownColumnError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "amount", colErr.Column)
}

func TestFilter_NeverGrowsRowCount(t *testing.T) {
	in := salesTable()
	specs := []string{
		`[{"op":"filter","where":[{"column":"amount","cmp":"gt","value":4}]}]`,
		`[{"op":"filter","where":[{"column":"region","cmp":"eq","value":"north"}]}]`,
		`[{"op":"filter","where":[{"column":"name","cmp":"contains","value":"z"}]}]`,
	}
	for _, raw := range specs {
		spec, err := ParseSpec([]byte(raw))
		require.NoError(t, err)
		out, err := Apply(in, spec)
		require.NoError(t, err)
		assert.LessOrEqual(t, out.NumRows(), in.NumRows())
		assert.Equal(t, in.Columns(), out.Columns())
	}
}

func TestFilter_Comparators(t *testing.T) {
	in := salesTable()

	tests := []struct {
		name     string
		spec     string
		wantRows int
	}{
		{"gt numeric", `[{"op":"filter","where":[{"column":"amount","cmp":"gt","value":5}]}]`, 2},
		{"le numeric", `[{"op":"filter","where":[{"column":"amount","cmp":"le","value":5}]}]`, 2},
		{"eq text", `[{"op":"filter","where":[{"column":"region","cmp":"eq","value":"south"}]}]`, 2},
		{"ne text", `[{"op":"filter","where":[{"column":"name","cmp":"ne","value":"a"}]}]`, 2},
		{"contains", `[{"op":"filter","where":[{"column":"region","cmp":"contains","value":"out"}]}]`, 2},
		{"two conditions", `[{"op":"filter","where":[
			{"column":"region","cmp":"eq","value":"south"},
			{"column":"amount","cmp":"gt","value":4}]}]`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseSpec([]byte(tt.spec))
			require.NoError(t, err)
			out, err := Apply(in, spec)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRows, out.NumRows())
		})
	}
}

func TestSelect_IsIdempotent(t *testing.T) {
	spec, err := ParseSpec([]byte(`[{"op":"select","columns":["amount","name"]}]`))
	require.NoError(t, err)

	once, err := Apply(salesTable(), spec)
	require.NoError(t, err)
	twice, err := Apply(once, spec)
	require.NoError(t, err)

	assert.True(t, once.Equal(twice))
	assert.Equal(t, []string{"amount", "name"}, once.Columns())
}

func TestDerive(t *testing.T) {
	spec, err := ParseSpec([]byte(`[{"op":"derive","as":"double",
		"left":{"column":"amount"},"fn":"mul","right":{"value":2}}]`))
	require.NoError(t, err)

	out, err := Apply(salesTable(), spec)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "region", "amount", "double"}, out.Columns())
	assert.Equal(t, table.Num(20), out.At(0, "double"))
	assert.Equal(t, table.Num(6), out.At(3, "double"))
}

func TestDerive_Concat(t *testing.T) {
	spec, err := ParseSpec([]byte(`[{"op":"derive","as":"label",
		"left":{"column":"name"},"fn":"concat","right":{"value":"!"}}]`))
	require.NoError(t, err)

	out, err := Apply(salesTable(), spec)
	require.NoError(t, err)
	assert.Equal(t, table.Str("a!"), out.At(0, "label"))
}

func TestDerive_NonNumericYieldsEmpty(t *testing.T) {
	in := table.MustNew("v")
	in.AppendRow(table.Str("oops"))
	in.AppendRow(table.Num(4))

	spec, err := ParseSpec([]byte(`[{"op":"derive","as":"half",
		"left":{"column":"v"},"fn":"div","right":{"value":2}}]`))
	require.NoError(t, err)

	out, err := Apply(in, spec)
	require.NoError(t, err)
	assert.True(t, out.At(0, "half").IsEmpty())
	assert.Equal(t, table.Num(2), out.At(1, "half"))
}

func TestAggregate_SumScenario(t *testing.T) {
	spec, err := ParseSpec([]byte(`[{"op":"aggregate","by":["name"],
		"metrics":[{"column":"amount","reducer":"sum"}]}]`))
	require.NoError(t, err)

	out, err := Apply(salesTable(), spec)
	require.NoError(t, err)

	require.Equal(t, 3, out.NumRows())
	assert.Equal(t, []string{"name", "amount"}, out.Columns())

	byName := map[string]float64{}
	for r := 0; r < out.NumRows(); r++ {
		byName[out.At(r, "name").AsString()] = out.At(r, "amount").Num
	}
	assert.Equal(t, map[string]float64{"a": 17, "b": 5, "c": 3}, byName)
}

func TestAggregate_GroupsPartitionRows(t *testing.T) {
	spec, err := ParseSpec([]byte(`[{"op":"aggregate","by":["region"],
		"metrics":[{"column":"name","reducer":"count","as":"n"}]}]`))
	require.NoError(t, err)

	in := salesTable()
	out, err := Apply(in, spec)
	require.NoError(t, err)

	total := 0.0
	for r := 0; r < out.NumRows(); r++ {
		total += out.At(r, "n").Num
	}
	assert.Equal(t, float64(in.NumRows()), total)
}

func TestAggregate_Reducers(t *testing.T) {
	in := table.MustNew("k", "v")
	in.AppendRow(table.Str("g"), table.Num(4))
	in.AppendRow(table.Str("g"), table.Num(8))
	in.AppendRow(table.Str("g"), table.None())

	spec, err := ParseSpec([]byte(`[{"op":"aggregate","by":["k"],"metrics":[
		{"column":"v","reducer":"mean","as":"mean"},
		{"column":"v","reducer":"min","as":"min"},
		{"column":"v","reducer":"max","as":"max"},
		{"column":"v","reducer":"count","as":"count"}]}]`))
	require.NoError(t, err)

	out, err := Apply(in, spec)
	require.NoError(t, err)
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, table.Num(6), out.At(0, "mean"))
	assert.Equal(t, table.Num(4), out.At(0, "min"))
	assert.Equal(t, table.Num(8), out.At(0, "max"))
	assert.Equal(t, table.Num(2), out.At(0, "count"))
}

func TestAggregate_KindTaggedGroupKeys(t *testing.T) {
	in := table.MustNew("k", "v")
	in.AppendRow(table.Str("1"), table.Num(10))
	in.AppendRow(table.Num(1), table.Num(20))

	spec, err := ParseSpec([]byte(`[{"op":"aggregate","by":["k"],
		"metrics":[{"column":"v","reducer":"sum"}]}]`))
	require.NoError(t, err)

	out, err := Apply(in, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
}

func TestParseSpec_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not an array", `{"op":"filter"}`},
		{"unknown op", `[{"op":"pivot"}]`},
		{"bad comparator", `[{"op":"filter","where":[{"column":"a","cmp":"like","value":1}]}]`},
		{"empty select", `[{"op":"select","columns":[]}]`},
		{"bad reducer", `[{"op":"aggregate","by":["a"],"metrics":[{"column":"b","reducer":"median"}]}]`},
		{"derive without operand", `[{"op":"derive","as":"x","fn":"add","left":{},"right":{"value":1}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}
