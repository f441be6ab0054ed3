package reports

import (
	"fmt"

	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/normalize"
	"github.com/freight-audit/backend/internal/table"
	"github.com/freight-audit/backend/internal/xlsx"
)

// COSCOParser reads COSCO invoice workbooks. COSCO files are
// multi-sheet and the column spelling can differ per sheet, so every
// sheet is mapped independently and all sheets are consolidated.
type COSCOParser struct{}

var coscoSynonyms = Synonyms{
	"waybill":   {"Documento", "Guia", "Guía", "No Guia", "No. Documento", "N° Documento"},
	"container": {"Contenedor", "Container", "CNTR"},
	"total":     {"Total", "Monto", "Importe", "Total Naviera", "Total Facturado"},
	"route":     {"Ruta", "Ruta Tipo", "Tipo", "Servicio", "Servicio Facturado"},
	"date":      {"Fecha", "Fecha Movimiento"},
	"yard":      {"Predio", "Patio", "Terminal"},
}

func (p *COSCOParser) Carrier() models.Carrier { return models.CarrierCOSCO }

func (p *COSCOParser) Sniff(wb *xlsx.Workbook) *models.SniffMeta {
	meta := newSniffMeta()

	sheets := wb.SheetNames()
	meta.Sheets = sheets
	if len(sheets) == 0 {
		meta.Errors = append(meta.Errors, "COSCO: workbook has no sheets")
		return meta
	}

	// Sample the first sheet; mapping can vary per sheet.
	meta.SheetUsed = sheets[0]
	rows, err := wb.SheetRows(sheets[0])
	if err != nil {
		meta.Errors = append(meta.Errors, fmt.Sprintf("COSCO: cannot read sheet %q: %v", sheets[0], err))
		return meta
	}

	headerIdx, headers, warnings := detectSimpleHeader(rows)
	meta.Warnings = append(meta.Warnings, warnings...)
	meta.HeaderRow = headerIdx + 1
	meta.HeadersPreview = previewHeaders(headers)

	idx := mapColumns(headers, coscoSynonyms)
	mappedNames(meta, headers, idx)

	if idx["waybill"] < 0 {
		meta.Errors = append(meta.Errors, "COSCO: no document/waybill column in the sampled sheet (may vary per sheet)")
	}
	if idx["total"] < 0 {
		meta.Errors = append(meta.Errors, "COSCO: no total/amount column in the sampled sheet (may vary per sheet)")
	}
	return meta
}

func (p *COSCOParser) Parse(wb *xlsx.Workbook) ([]models.InvoiceRow, error) {
	var out []models.InvoiceRow

	for _, sheet := range wb.SheetNames() {
		rows, err := wb.SheetRows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			continue
		}

		headerIdx, headers, _ := detectSimpleHeader(rows)
		if mostlyEmpty(headers) {
			continue
		}

		idx := mapColumns(headers, coscoSynonyms)
		// sheets without the minimum columns are ignored
		if idx["waybill"] < 0 || idx["total"] < 0 {
			continue
		}

		for _, row := range rows[headerIdx+1:] {
			waybill := normalize.Waybill(cell(row, idx["waybill"]).AsString())
			if waybill == "" {
				continue
			}
			out = append(out, models.InvoiceRow{
				Waybill:   waybill,
				Container: normalize.Container(cell(row, idx["container"]).AsString()),
				Total:     normalize.MoneyValue(cell(row, idx["total"])),
				Route:     normalize.Text(cell(row, idx["route"]).AsString()),
				Yard:      normalize.Text(cell(row, idx["yard"]).AsString()),
				Sheet:     sheet,
			})
		}
	}
	return out, nil
}

// detectSimpleHeader takes row 1 as the header, falling back to row 2
// when row 1 is mostly empty (some invoice exports start with a blank
// or title row).
func detectSimpleHeader(rows [][]table.Value) (int, []string, []string) {
	var warnings []string
	if len(rows) == 0 {
		return 0, nil, warnings
	}
	headers := normalizedHeaders(rows[0])
	if mostlyEmpty(headers) && len(rows) > 1 {
		second := normalizedHeaders(rows[1])
		if !mostlyEmpty(second) {
			warnings = append(warnings, "headers unclear in row 1; using row 2 as header")
			return 1, second, warnings
		}
	}
	return 0, headers, warnings
}
