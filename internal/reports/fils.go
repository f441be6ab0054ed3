package reports

import (
	"fmt"
	"time"

	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/normalize"
	"github.com/freight-audit/backend/internal/xlsx"
)

// FILS report sheet names as exported by the logistics system.
const (
	filsSheetWaybills   = "Guía"
	filsSheetContainers = "Contenedor"
	filsSheetCharges    = "Cargos Adicionales"
)

// FILSParser joins the three sheets of the FILS audit report:
//
//   - waybill sheet: one event row per state change, with route,
//     tariff amount and event date. Rows are NOT collapsed here; the
//     reconciliation picks the relevant event (last closed) itself.
//   - container sheet: waybill to container mapping, latest wins.
//   - additional charges sheet: charge events per waybill, keeping
//     only the last event per charge and dropping charges whose last
//     event is a delete.
type FILSParser struct{}

var (
	filsWaybillSynonyms = Synonyms{
		"waybill": {"número guía", "numero guia", "numero guía", "guia", "nro guia"},
		"state":   {"estado"},
		"date":    {"fecha"},
		"route":   {"ruta"},
		"tariff":  {"monto tarifa", "tarifa", "monto total", "total"},
	}
	filsContainerSynonyms = Synonyms{
		"waybill":   {"número guía", "numero guia", "guia"},
		"container": {"contenedor"},
		"date":      {"fecha"},
		"action":    {"accion", "acción"},
	}
	filsChargeSynonyms = Synonyms{
		"waybill":  {"número guía", "numero guia", "guia"},
		"action":   {"acción", "accion"},
		"date":     {"fecha"},
		"chargeId": {"cargo id", "id cargo", "cargoid"},
		"charge":   {"cargo"},
		"currency": {"moneda naviera", "moneda"},
		"amount":   {"total naviera", "monto naviera"},
	}
)

func (p *FILSParser) Sniff(wb *xlsx.Workbook) *models.SniffMeta {
	meta := newSniffMeta()
	meta.Sheets = wb.SheetNames()

	sniffSheet := func(name string, required []string, syn Synonyms, primary bool) {
		if !containsSheet(meta.Sheets, name) {
			meta.Warnings = append(meta.Warnings, fmt.Sprintf("FILS: sheet %q is missing", name))
			return
		}
		rows, err := wb.SheetRows(name)
		if err != nil {
			meta.Errors = append(meta.Errors, fmt.Sprintf("FILS: cannot read sheet %q: %v", name, err))
			return
		}
		headerIdx, headers, warns := findHeaderRow(rows, required)
		meta.Warnings = append(meta.Warnings, warns...)
		if primary {
			meta.SheetUsed = name
			meta.HeaderRow = headerIdx + 1
			meta.HeadersPreview = previewHeaders(headers)
			idx := mapColumns(headers, syn)
			mappedNames(meta, headers, idx)
			if idx["waybill"] < 0 {
				meta.Errors = append(meta.Errors, "FILS: waybill column not found in waybill sheet")
			}
			if idx["tariff"] < 0 {
				meta.Errors = append(meta.Errors, "FILS: tariff amount column not found in waybill sheet")
			}
		}
	}

	sniffSheet(filsSheetWaybills,
		[]string{"numero guia", "fecha", "estado", "ruta", "monto tarifa"},
		filsWaybillSynonyms, true)
	sniffSheet(filsSheetContainers,
		[]string{"numero guia", "contenedor"}, filsContainerSynonyms, false)
	sniffSheet(filsSheetCharges,
		[]string{"numero guia", "cargo", "accion", "fecha", "total naviera"},
		filsChargeSynonyms, false)

	if !containsSheet(meta.Sheets, filsSheetWaybills) {
		meta.Errors = append(meta.Errors, fmt.Sprintf("FILS: required sheet %q is missing", filsSheetWaybills))
	}
	return meta
}

// Parse returns one record per waybill event row. Containers and
// surviving charges are attached to every event of their waybill so
// whichever event the reconciliation picks carries them.
func (p *FILSParser) Parse(wb *xlsx.Workbook) ([]models.WaybillRecord, error) {
	var records []*models.WaybillRecord
	byWaybill := make(map[string][]*models.WaybillRecord)

	add := func(rec *models.WaybillRecord) {
		records = append(records, rec)
		byWaybill[rec.Waybill] = append(byWaybill[rec.Waybill], rec)
	}

	if err := p.parseWaybillSheet(wb, add); err != nil {
		return nil, err
	}
	if containsSheet(wb.SheetNames(), filsSheetContainers) {
		if err := p.parseContainerSheet(wb, byWaybill, add); err != nil {
			return nil, err
		}
	}
	if containsSheet(wb.SheetNames(), filsSheetCharges) {
		if err := p.parseChargeSheet(wb, byWaybill, add); err != nil {
			return nil, err
		}
	}

	out := make([]models.WaybillRecord, len(records))
	for i, r := range records {
		out[i] = *r
	}
	return out, nil
}

func (p *FILSParser) parseWaybillSheet(wb *xlsx.Workbook, add func(*models.WaybillRecord)) error {
	rows, err := wb.SheetRows(filsSheetWaybills)
	if err != nil {
		return fmt.Errorf("FILS: missing sheet %q: %w", filsSheetWaybills, err)
	}
	headerIdx, headers, _ := findHeaderRow(rows,
		[]string{"numero guia", "fecha", "estado", "ruta", "monto tarifa"})
	idx := mapColumns(headers, filsWaybillSynonyms)
	if idx["waybill"] < 0 {
		return fmt.Errorf("FILS: waybill column not found in sheet %q", filsSheetWaybills)
	}
	if idx["tariff"] < 0 {
		return fmt.Errorf("FILS: tariff amount column not found in sheet %q", filsSheetWaybills)
	}

	for _, row := range rows[headerIdx+1:] {
		waybill := normalize.Waybill(cell(row, idx["waybill"]).AsString())
		if waybill == "" {
			continue
		}
		add(&models.WaybillRecord{
			Waybill: waybill,
			State:   normalize.UpperClean(cell(row, idx["state"]).AsString()),
			Date:    normalize.DateTimeValue(cell(row, idx["date"])),
			Route:   normalize.Text(cell(row, idx["route"]).AsString()),
			Tariff:  normalize.MoneyValue(cell(row, idx["tariff"])),
		})
	}
	return nil
}

func (p *FILSParser) parseContainerSheet(wb *xlsx.Workbook, byWaybill map[string][]*models.WaybillRecord, add func(*models.WaybillRecord)) error {
	rows, err := wb.SheetRows(filsSheetContainers)
	if err != nil {
		return err
	}
	headerIdx, headers, _ := findHeaderRow(rows, []string{"numero guia", "contenedor"})
	idx := mapColumns(headers, filsContainerSynonyms)
	if idx["waybill"] < 0 {
		return fmt.Errorf("FILS: waybill column not found in sheet %q", filsSheetContainers)
	}
	if idx["container"] < 0 {
		return fmt.Errorf("FILS: container column not found in sheet %q", filsSheetContainers)
	}

	type lastContainer struct {
		date      time.Time
		container string
	}
	last := make(map[string]lastContainer)
	var order []string

	for _, row := range rows[headerIdx+1:] {
		waybill := normalize.Waybill(cell(row, idx["waybill"]).AsString())
		if waybill == "" {
			continue
		}
		container := normalize.Container(cell(row, idx["container"]).AsString())
		if container == "" {
			continue
		}
		date := normalize.DateTimeValue(cell(row, idx["date"]))

		prev, seen := last[waybill]
		if !seen {
			last[waybill] = lastContainer{date: date, container: container}
			order = append(order, waybill)
			continue
		}
		if prev.date.IsZero() || (!date.IsZero() && !date.Before(prev.date)) {
			last[waybill] = lastContainer{date: date, container: container}
		}
	}

	for _, waybill := range order {
		lc := last[waybill]
		recs, ok := byWaybill[waybill]
		if !ok {
			// waybill only present in the container sheet: rare but possible
			add(&models.WaybillRecord{Waybill: waybill, Container: lc.container})
			continue
		}
		for _, rec := range recs {
			rec.Container = lc.container
		}
	}
	return nil
}

type chargeEvent struct {
	date   time.Time
	action string
	charge models.Charge
}

func (p *FILSParser) parseChargeSheet(wb *xlsx.Workbook, byWaybill map[string][]*models.WaybillRecord, add func(*models.WaybillRecord)) error {
	rows, err := wb.SheetRows(filsSheetCharges)
	if err != nil {
		return err
	}
	headerIdx, headers, _ := findHeaderRow(rows,
		[]string{"numero guia", "cargo", "accion", "fecha", "total naviera"})
	idx := mapColumns(headers, filsChargeSynonyms)
	if idx["waybill"] < 0 {
		return fmt.Errorf("FILS: waybill column not found in sheet %q", filsSheetCharges)
	}
	if idx["charge"] < 0 && idx["chargeId"] < 0 {
		return fmt.Errorf("FILS: charge/charge id column not found in sheet %q", filsSheetCharges)
	}
	if idx["amount"] < 0 {
		return fmt.Errorf("FILS: carrier amount column not found in sheet %q", filsSheetCharges)
	}

	type eventKey struct {
		waybill string
		charge  string
	}
	lastEvent := make(map[eventKey]chargeEvent)
	var keyOrder []eventKey

	for _, row := range rows[headerIdx+1:] {
		waybill := normalize.Waybill(cell(row, idx["waybill"]).AsString())
		if waybill == "" {
			continue
		}

		charge := models.Charge{
			ChargeID: normalize.Text(cell(row, idx["chargeId"]).AsString()),
			Name:     normalize.Text(cell(row, idx["charge"]).AsString()),
			Currency: normalize.UpperClean(cell(row, idx["currency"]).AsString()),
			Amount:   normalize.MoneyValue(cell(row, idx["amount"])),
		}
		if charge.Key() == "" {
			continue
		}

		ev := chargeEvent{
			date:   normalize.DateTimeValue(cell(row, idx["date"])),
			action: normalize.UpperClean(cell(row, idx["action"]).AsString()),
			charge: charge,
		}

		key := eventKey{waybill: waybill, charge: charge.Key()}
		prev, seen := lastEvent[key]
		if !seen {
			lastEvent[key] = ev
			keyOrder = append(keyOrder, key)
			continue
		}
		// pick the most recent event; when neither has a date the
		// last row seen wins
		switch {
		case prev.date.IsZero() && !ev.date.IsZero():
			lastEvent[key] = ev
		case !prev.date.IsZero() && !ev.date.IsZero() && !ev.date.Before(prev.date):
			lastEvent[key] = ev
		case prev.date.IsZero() && ev.date.IsZero():
			lastEvent[key] = ev
		}
	}

	charges := make(map[string][]models.Charge)
	var waybillOrder []string
	for _, key := range keyOrder {
		ev := lastEvent[key]
		if ev.action == models.ChargeActionDelete {
			continue
		}
		if _, seen := charges[key.waybill]; !seen {
			waybillOrder = append(waybillOrder, key.waybill)
		}
		charges[key.waybill] = append(charges[key.waybill], ev.charge)
	}

	for _, waybill := range waybillOrder {
		recs, ok := byWaybill[waybill]
		if !ok {
			rec := &models.WaybillRecord{Waybill: waybill, Charges: charges[waybill]}
			add(rec)
			continue
		}
		for _, rec := range recs {
			rec.Charges = charges[waybill]
		}
	}
	return nil
}

func containsSheet(sheets []string, name string) bool {
	for _, s := range sheets {
		if s == name {
			return true
		}
	}
	return false
}
