package audit

import (
	"github.com/freight-audit/backend/internal/table"
	"github.com/freight-audit/backend/internal/xlsx"
)

// Workbook sheet names of the exported audit report.
const (
	SheetSummary    = "Resumen_Guias"
	SheetContainers = "Detalle_Contenedores"
	SheetCharges    = "Detalle_Cargos"
	SheetExceptions = "Excepciones"
	SheetKPIs       = "KPIs"
)

// Export renders the result as a multi sheet xlsx workbook.
func Export(res *Result) ([]byte, error) {
	return xlsx.WriteWorkbook([]xlsx.Sheet{
		{Name: SheetSummary, Table: summaryTable(res)},
		{Name: SheetContainers, Table: containersTable(res)},
		{Name: SheetCharges, Table: chargesTable(res)},
		{Name: SheetExceptions, Table: exceptionsTable(res)},
		{Name: SheetKPIs, Table: kpiTable(res)},
	})
}

func summaryTable(res *Result) *table.Table {
	t := table.MustNew("Guía", "Estado", "Total FILS", "Total Naviera", "Diferencia", "OK", "Naviera", "Fuente Naviera")
	for _, r := range res.Summary {
		t.AppendRow(
			table.Str(r.Waybill),
			table.Str(r.State),
			table.Num(r.TotalFILS.InexactFloat64()),
			table.Num(r.TotalCarrier.InexactFloat64()),
			table.Num(r.Difference.InexactFloat64()),
			table.Boolean(r.OK),
			table.Str(r.Carrier),
			table.Str(r.SourceSheet),
		)
	}
	return t
}

func containersTable(res *Result) *table.Table {
	t := table.MustNew("Guía", "Contenedor", "Ruta", "Flete", "Extras", "Total", "Naviera")
	for _, r := range res.Containers {
		t.AppendRow(
			table.Str(r.Waybill),
			table.Str(r.Container),
			table.Str(r.Route),
			table.Num(r.Freight.InexactFloat64()),
			table.Num(r.Extras.InexactFloat64()),
			table.Num(r.Total.InexactFloat64()),
			table.Str(r.Carrier),
		)
	}
	return t
}

func chargesTable(res *Result) *table.Table {
	t := table.MustNew("Guía", "Contenedor", "Tipo Cargo", "Monto", "Origen", "Naviera")
	for _, r := range res.Charges {
		t.AppendRow(
			table.Str(r.Waybill),
			table.Str(r.Container),
			table.Str(r.ChargeType),
			table.Num(r.Amount.InexactFloat64()),
			table.Str(r.Origin),
			table.Str(r.Carrier),
		)
	}
	return t
}

func exceptionsTable(res *Result) *table.Table {
	t := table.MustNew("Tipo", "Guía", "Contenedor", "Severidad", "Detalle", "Naviera")
	for _, e := range res.Exceptions {
		t.AppendRow(
			table.Str(e.Type),
			table.Str(e.Waybill),
			table.Str(e.Container),
			table.Str(e.Severity),
			table.Str(e.Detail),
			table.Str(e.Carrier),
		)
	}
	return t
}

func kpiTable(res *Result) *table.Table {
	k := res.KPI
	t := table.MustNew("Naviera", "Total Guías", "Guías OK", "Guías con Diferencia", "Guías NO_CERRADA",
		"Solo en FILS", "Solo en Naviera", "Total FILS", "Total Naviera", "Diferencia Global", "% OK")
	t.AppendRow(
		table.Str(k.Carrier),
		table.Num(float64(k.TotalWaybills)),
		table.Num(float64(k.WaybillsOK)),
		table.Num(float64(k.WithDifference)),
		table.Num(float64(k.NotClosed)),
		table.Num(float64(k.OnlyInFILS)),
		table.Num(float64(k.OnlyInCarrier)),
		table.Num(k.TotalFILS.InexactFloat64()),
		table.Num(k.TotalCarrier.InexactFloat64()),
		table.Num(k.GlobalDifference.InexactFloat64()),
		table.Num(k.PctOK),
	)
	return t
}
