package reports

import (
	"fmt"

	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/normalize"
	"github.com/freight-audit/backend/internal/xlsx"
)

// ONEParser reads ONE invoice workbooks: single sheet, synonym-mapped
// columns. Some ONE exports carry no waybill column at all; those
// rows are emitted with an empty waybill and matched downstream by
// container.
type ONEParser struct{}

var oneSynonyms = Synonyms{
	"waybill":   {"Guia", "Guía", "Documento", "No Documento", "Referencia", "Reference"},
	"container": {"Contenedor", "Container", "CNTR"},
	"total":     {"Total", "Monto", "Importe", "Amount", "Total Facturado"},
	"route":     {"Ruta", "Servicio", "Service", "Tipo", "Servicio Facturado"},
}

func (p *ONEParser) Carrier() models.Carrier { return models.CarrierONE }

func (p *ONEParser) Sniff(wb *xlsx.Workbook) *models.SniffMeta {
	meta := newSniffMeta()

	sheets := wb.SheetNames()
	meta.Sheets = sheets
	if len(sheets) == 0 {
		meta.Errors = append(meta.Errors, "ONE: workbook has no sheets")
		return meta
	}
	meta.SheetUsed = sheets[0]

	rows, err := wb.SheetRows(sheets[0])
	if err != nil {
		meta.Errors = append(meta.Errors, fmt.Sprintf("ONE: cannot read sheet %q: %v", sheets[0], err))
		return meta
	}

	headerIdx, headers, warnings := detectSimpleHeader(rows)
	meta.Warnings = append(meta.Warnings, warnings...)
	meta.HeaderRow = headerIdx + 1
	meta.HeadersPreview = previewHeaders(headers)

	idx := mapColumns(headers, oneSynonyms)
	mappedNames(meta, headers, idx)

	if idx["waybill"] < 0 && idx["container"] < 0 {
		meta.Errors = append(meta.Errors, "ONE: neither a waybill/document nor a container column was found")
	} else if idx["waybill"] < 0 {
		meta.Warnings = append(meta.Warnings, "ONE: no waybill column; rows will be matched by container")
	}
	if idx["total"] < 0 {
		meta.Errors = append(meta.Errors, "ONE: no total/amount column found")
	}
	return meta
}

func (p *ONEParser) Parse(wb *xlsx.Workbook) ([]models.InvoiceRow, error) {
	sheets := wb.SheetNames()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("ONE: workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := wb.SheetRows(sheet)
	if err != nil {
		return nil, err
	}
	headerIdx, headers, _ := detectSimpleHeader(rows)

	idx := mapColumns(headers, oneSynonyms)
	if idx["total"] < 0 {
		return nil, fmt.Errorf("ONE: no total/amount column found")
	}
	if idx["waybill"] < 0 && idx["container"] < 0 {
		return nil, fmt.Errorf("ONE: neither a waybill nor a container column was found")
	}

	var out []models.InvoiceRow
	for _, row := range rows[headerIdx+1:] {
		waybill := normalize.Waybill(cell(row, idx["waybill"]).AsString())
		container := normalize.Container(cell(row, idx["container"]).AsString())
		if waybill == "" && container == "" {
			continue
		}
		out = append(out, models.InvoiceRow{
			Waybill:   waybill,
			Container: container,
			Total:     normalize.MoneyValue(cell(row, idx["total"])),
			Route:     normalize.Text(cell(row, idx["route"]).AsString()),
			Sheet:     sheet,
		})
	}
	return out, nil
}
