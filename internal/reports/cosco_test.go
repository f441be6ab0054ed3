package reports

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-audit/backend/internal/testutil"
	"github.com/freight-audit/backend/internal/xlsx"
)

func openWorkbook(t *testing.T, data []byte) *xlsx.Workbook {
	t.Helper()
	wb, err := xlsx.OpenWorkbook(data)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb
}

func TestCOSCOParser_ParseConsolidatesSheets(t *testing.T) {
	data := testutil.WorkbookBytes(t,
		testutil.SheetData{Name: "Enero", Rows: [][]interface{}{
			{"Documento", "Contenedor", "Total", "Ruta"},
			{"G-100", "CSNU-111111-1", 1500.50, "SJO-LIM"},
			{"G-200", "CSNU-222222-2", 800, "LIM-SJO"},
			{"", "", 99, ""},
		}},
		testutil.SheetData{Name: "Febrero", Rows: [][]interface{}{
			{"No. Documento", "Container", "Importe"},
			{"G-300", "CSNU-333333-3", "1.234,56"},
		}},
		testutil.SheetData{Name: "Notas", Rows: [][]interface{}{
			{"comentarios", "varios"},
			{"sin datos", "aqui"},
		}},
	)

	rows, err := (&COSCOParser{}).Parse(openWorkbook(t, data))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "G100", rows[0].Waybill)
	assert.Equal(t, "CSNU1111111", rows[0].Container)
	assert.True(t, rows[0].Total.Equal(decimal.RequireFromString("1500.5")))
	assert.Equal(t, "SJO-LIM", rows[0].Route)
	assert.Equal(t, "Enero", rows[0].Sheet)

	assert.Equal(t, "G300", rows[2].Waybill)
	assert.True(t, rows[2].Total.Equal(decimal.RequireFromString("1234.56")))
	assert.Equal(t, "Febrero", rows[2].Sheet)
}

func TestCOSCOParser_SkipsTitleRow(t *testing.T) {
	data := testutil.WorkbookBytes(t,
		testutil.SheetData{Name: "Factura", Rows: [][]interface{}{
			{"", "", "", ""},
			{"Documento", "Contenedor", "Total", "Ruta"},
			{"G-500", "CSNU-555555-5", 250, "SJO-MOIN"},
		}},
	)

	rows, err := (&COSCOParser{}).Parse(openWorkbook(t, data))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "G500", rows[0].Waybill)
}

func TestCOSCOParser_Sniff(t *testing.T) {
	data := testutil.WorkbookBytes(t,
		testutil.SheetData{Name: "Enero", Rows: [][]interface{}{
			{"Documento", "Contenedor", "Total"},
			{"G-100", "CSNU-111111-1", 10},
		}},
	)

	meta := (&COSCOParser{}).Sniff(openWorkbook(t, data))
	assert.Empty(t, meta.Errors)
	assert.Equal(t, "Enero", meta.SheetUsed)
	assert.Equal(t, 1, meta.HeaderRow)
	assert.Equal(t, "documento", meta.Mapped["waybill"])
}

func TestCOSCOParser_SniffReportsMissingColumns(t *testing.T) {
	data := testutil.WorkbookBytes(t,
		testutil.SheetData{Name: "Enero", Rows: [][]interface{}{
			{"algo", "otra cosa"},
			{"x", "y"},
		}},
	)

	meta := (&COSCOParser{}).Sniff(openWorkbook(t, data))
	assert.Len(t, meta.Errors, 2)
}
