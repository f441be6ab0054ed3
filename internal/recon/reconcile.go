// Package recon compares FILS waybill records against carrier invoice
// rows and produces the audit summary, detail rows and exceptions.
package recon

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/normalize"
)

// Result bundles everything a reconciliation run produces.
type Result struct {
	Summary    []models.SummaryRow   `json:"summary"`
	Containers []models.ContainerRow `json:"containers"`
	Charges    []models.ChargeRow    `json:"charges"`
	Exceptions []models.Exception    `json:"exceptions"`
}

// Reconcile matches FILS records against carrier invoice rows.
//
// FILS may carry several event rows per waybill; the last closed one
// wins, otherwise the most recent with state NO_CERRADA. Invoice rows
// without a waybill are matched by container in a second pass, using
// the FILS container mapping, and their totals accumulate onto the
// summary row of the matched waybill.
func Reconcile(carrier models.Carrier, filsRows []models.WaybillRecord, invoiceRows []models.InvoiceRow, tolerance decimal.Decimal) *Result {
	carrierName := string(carrier)
	res := &Result{}

	filsByWaybill := make(map[string][]*models.WaybillRecord)
	for i := range filsRows {
		r := &filsRows[i]
		if r.Waybill == "" {
			continue
		}
		filsByWaybill[r.Waybill] = append(filsByWaybill[r.Waybill], r)
	}

	filsLast := make(map[string]*models.WaybillRecord)
	filsState := make(map[string]string)
	for waybill, rows := range filsByWaybill {
		state, picked := pickLastClosed(rows)
		filsLast[waybill] = picked
		filsState[waybill] = state
	}

	filsByContainer := make(map[string][]*models.WaybillRecord)
	for _, r := range filsLast {
		cont := normalize.Container(r.Container)
		if cont != "" {
			filsByContainer[cont] = append(filsByContainer[cont], r)
		}
	}

	invByWaybill := make(map[string][]models.InvoiceRow)
	var invNoWaybill []models.InvoiceRow
	for _, r := range invoiceRows {
		if r.Waybill != "" {
			invByWaybill[r.Waybill] = append(invByWaybill[r.Waybill], r)
			continue
		}
		if normalize.Container(r.Container) != "" {
			invNoWaybill = append(invNoWaybill, r)
		}
	}

	allWaybills := make([]string, 0, len(filsLast)+len(invByWaybill))
	seen := make(map[string]bool)
	for w := range filsLast {
		seen[w] = true
		allWaybills = append(allWaybills, w)
	}
	for w := range invByWaybill {
		if !seen[w] {
			allWaybills = append(allWaybills, w)
		}
	}
	sort.Strings(allWaybills)

	summaryByWaybill := make(map[string]*models.SummaryRow)
	addSummary := func(row models.SummaryRow) *models.SummaryRow {
		res.Summary = append(res.Summary, row)
		p := &res.Summary[len(res.Summary)-1]
		summaryByWaybill[row.Waybill] = p
		return p
	}

	for _, waybill := range allWaybills {
		filsRec := filsLast[waybill]
		invRows := invByWaybill[waybill]

		if filsRec == nil {
			totalInv := sumInvoiceTotal(invRows)
			res.Exceptions = append(res.Exceptions, models.Exception{
				Type:     models.ExcOnlyInCarrier,
				Waybill:  waybill,
				Detail:   "Guía existe en facturación naviera pero no en FILS.",
				Severity: models.SeverityError,
				Carrier:  carrierName,
			})
			addSummary(models.SummaryRow{
				Waybill:      waybill,
				State:        models.StateNoFILS,
				TotalFILS:    decimal.Zero,
				TotalCarrier: totalInv,
				Difference:   totalInv,
				OK:           false,
				Carrier:      carrierName,
				SourceSheet:  invRows[0].Sheet,
			})
			continue
		}

		state := filsState[waybill]
		filsCharges := buildFILSCharges(filsRec)
		totalFILS := filsRec.Tariff.Add(sumCharges(filsCharges))

		if len(invRows) == 0 {
			res.Exceptions = append(res.Exceptions, models.Exception{
				Type:     models.ExcOnlyInFILS,
				Waybill:  waybill,
				Detail:   "Guía existe en FILS pero no en facturación naviera.",
				Severity: models.SeverityError,
				Carrier:  carrierName,
			})
			if state == models.StateNotClosed {
				res.Exceptions = append(res.Exceptions, notClosedException(waybill, "", carrierName))
			}
			addSummary(models.SummaryRow{
				Waybill:      waybill,
				State:        state,
				TotalFILS:    totalFILS,
				TotalCarrier: decimal.Zero,
				Difference:   totalFILS,
				OK:           false,
				Carrier:      carrierName,
			})
			res.Containers = append(res.Containers, containerRow(waybill, filsRec, totalFILS, carrierName))
			res.Charges = append(res.Charges, chargeRows(waybill, filsRec.Container, filsCharges, "FILS", carrierName)...)
			continue
		}

		totalInv := sumInvoiceTotal(invRows)
		diff := totalFILS.Sub(totalInv)
		ok := diff.Abs().LessThanOrEqual(tolerance)

		if state == models.StateNotClosed {
			res.Exceptions = append(res.Exceptions, notClosedException(waybill, "", carrierName))
		}
		if !ok {
			res.Exceptions = append(res.Exceptions, models.Exception{
				Type:     models.ExcDifference,
				Waybill:  waybill,
				Detail:   fmt.Sprintf("Diferencia detectada. FILS=%s vs NAVIERA=%s.", totalFILS, totalInv),
				Severity: models.SeverityError,
				Carrier:  carrierName,
			})
		}

		invCharges := buildInvoiceCharges(invRows)
		if len(filsCharges.keys) > 0 {
			res.Exceptions = append(res.Exceptions, compareCharges(waybill, filsRec.Container, filsCharges, invCharges, tolerance, carrierName)...)
		}

		addSummary(models.SummaryRow{
			Waybill:      waybill,
			State:        state,
			TotalFILS:    totalFILS,
			TotalCarrier: totalInv,
			Difference:   diff,
			OK:           ok,
			Carrier:      carrierName,
			SourceSheet:  invRows[0].Sheet,
		})
		res.Containers = append(res.Containers, containerRow(waybill, filsRec, totalFILS, carrierName))
		res.Charges = append(res.Charges, chargeRows(waybill, filsRec.Container, filsCharges, "FILS", carrierName)...)
		res.Charges = append(res.Charges, chargeRows(waybill, filsRec.Container, invCharges, "NAVIERA", carrierName)...)
	}

	reconcileByContainer(res, carrierName, invNoWaybill, filsByContainer, filsState, summaryByWaybill, tolerance)
	return res
}

// reconcileByContainer handles invoice rows that carry no waybill:
// they are matched against the FILS container mapping and their
// totals fold into the summary row of the matched waybill.
func reconcileByContainer(
	res *Result,
	carrierName string,
	invNoWaybill []models.InvoiceRow,
	filsByContainer map[string][]*models.WaybillRecord,
	filsState map[string]string,
	summaryByWaybill map[string]*models.SummaryRow,
	tolerance decimal.Decimal,
) {
	invByContainer := make(map[string][]models.InvoiceRow)
	var contOrder []string
	for _, r := range invNoWaybill {
		cont := normalize.Container(r.Container)
		if _, ok := invByContainer[cont]; !ok {
			contOrder = append(contOrder, cont)
		}
		invByContainer[cont] = append(invByContainer[cont], r)
	}
	sort.Strings(contOrder)

	for _, cont := range contOrder {
		invRows := invByContainer[cont]
		candidates := filsByContainer[cont]

		if len(candidates) == 0 {
			totalInv := sumInvoiceTotal(invRows)
			res.Exceptions = append(res.Exceptions, models.Exception{
				Type:      models.ExcOnlyInCarrier,
				Container: cont,
				Detail:    "La factura no traía guía; se intentó match por contenedor y no existe en FILS.",
				Severity:  models.SeverityError,
				Carrier:   carrierName,
			})
			res.Summary = append(res.Summary, models.SummaryRow{
				Waybill:      "(SIN_GUIA)" + cont,
				State:        models.StateNoFILS,
				TotalFILS:    decimal.Zero,
				TotalCarrier: totalInv,
				Difference:   totalInv,
				OK:           false,
				Carrier:      carrierName,
				SourceSheet:  invRows[0].Sheet,
			})
			continue
		}

		filsRec := pickMostRecent(candidates)
		waybill := filsRec.Waybill
		state := filsState[waybill]
		if state == "" {
			state = models.StateNotClosed
		}

		filsCharges := buildFILSCharges(filsRec)
		totalFILS := filsRec.Tariff.Add(sumCharges(filsCharges))
		totalInv := sumInvoiceTotal(invRows)

		var ok bool
		if existing := summaryByWaybill[waybill]; existing != nil {
			existing.TotalCarrier = existing.TotalCarrier.Add(totalInv)
			existing.Difference = existing.TotalFILS.Sub(existing.TotalCarrier)
			existing.OK = existing.Difference.Abs().LessThanOrEqual(tolerance)
			if existing.SourceSheet == "" {
				existing.SourceSheet = invRows[0].Sheet
			}
			ok = existing.OK
		} else {
			diff := totalFILS.Sub(totalInv)
			ok = diff.Abs().LessThanOrEqual(tolerance)
			res.Summary = append(res.Summary, models.SummaryRow{
				Waybill:      waybill,
				State:        state,
				TotalFILS:    totalFILS,
				TotalCarrier: totalInv,
				Difference:   diff,
				OK:           ok,
				Carrier:      carrierName,
				SourceSheet:  invRows[0].Sheet,
			})
			summaryByWaybill[waybill] = &res.Summary[len(res.Summary)-1]
		}

		if state == models.StateNotClosed {
			res.Exceptions = append(res.Exceptions, models.Exception{
				Type:      models.ExcNotClosed,
				Waybill:   waybill,
				Container: cont,
				Detail:    "Match por contenedor, pero la guía en FILS no está CERRADA.",
				Severity:  models.SeverityWarn,
				Carrier:   carrierName,
			})
		}
		if !ok {
			res.Exceptions = append(res.Exceptions, models.Exception{
				Type:      models.ExcDifference,
				Waybill:   waybill,
				Container: cont,
				Detail:    fmt.Sprintf("(Match por contenedor) Diferencia: FILS=%s vs NAVIERA=%s.", totalFILS, totalInv),
				Severity:  models.SeverityError,
				Carrier:   carrierName,
			})
		}

		res.Containers = append(res.Containers, models.ContainerRow{
			Waybill:   waybill,
			Container: cont,
			Route:     routeOf(filsRec, invRows),
			Freight:   filsRec.Tariff,
			Extras:    sumCharges(filsCharges),
			Total:     totalFILS,
			Carrier:   carrierName,
		})
		res.Charges = append(res.Charges, chargeRows(waybill, cont, buildInvoiceCharges(invRows), "NAVIERA", carrierName)...)
	}
}

// pickLastClosed prefers the most recent closed event; when no event
// is closed the most recent one is returned with state NO_CERRADA.
func pickLastClosed(rows []*models.WaybillRecord) (string, *models.WaybillRecord) {
	var closed []*models.WaybillRecord
	for _, r := range rows {
		if normalize.UpperClean(r.State) == models.StateClosed {
			closed = append(closed, r)
		}
	}
	if len(closed) > 0 {
		return models.StateClosed, pickMostRecent(closed)
	}
	return models.StateNotClosed, pickMostRecent(rows)
}

func pickMostRecent(rows []*models.WaybillRecord) *models.WaybillRecord {
	best := rows[0]
	for _, r := range rows[1:] {
		if r.Date.After(best.Date) {
			best = r
		}
	}
	return best
}

// chargeSet keeps charge amounts keyed by charge key in first-seen
// order so output stays deterministic.
type chargeSet struct {
	keys    []string
	amounts map[string]decimal.Decimal
}

func newChargeSet() *chargeSet {
	return &chargeSet{amounts: make(map[string]decimal.Decimal)}
}

func (s *chargeSet) add(key string, amount decimal.Decimal) {
	if _, ok := s.amounts[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.amounts[key] = s.amounts[key].Add(amount)
}

func (s *chargeSet) get(key string) decimal.Decimal {
	return s.amounts[key]
}

func buildFILSCharges(rec *models.WaybillRecord) *chargeSet {
	set := newChargeSet()
	for _, c := range rec.Charges {
		set.add(c.Key(), c.Amount)
	}
	return set
}

func buildInvoiceCharges(rows []models.InvoiceRow) *chargeSet {
	set := newChargeSet()
	for _, r := range rows {
		set.add(r.ChargeKey(), r.Total)
	}
	return set
}

func sumCharges(set *chargeSet) decimal.Decimal {
	total := decimal.Zero
	for _, k := range set.keys {
		total = total.Add(set.amounts[k])
	}
	return total
}

func sumInvoiceTotal(rows []models.InvoiceRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Total)
	}
	return total
}

// compareCharges walks the union of FILS and carrier charge keys and
// flags per-charge differences and one-sided charges.
func compareCharges(waybill, container string, fils, inv *chargeSet, tolerance decimal.Decimal, carrierName string) []models.Exception {
	union := make(map[string]bool)
	for _, k := range fils.keys {
		union[k] = true
	}
	for _, k := range inv.keys {
		union[k] = true
	}
	keys := make([]string, 0, len(union))
	for k := range union {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cont := normalize.Container(container)
	var out []models.Exception
	for _, key := range keys {
		a := fils.get(key)
		b := inv.get(key)
		if a.Sub(b).Abs().GreaterThan(tolerance) {
			out = append(out, models.Exception{
				Type:      models.ExcChargeDifference,
				Waybill:   waybill,
				Container: cont,
				Detail:    fmt.Sprintf("Cargo %q difiere. FILS=%s vs NAVIERA=%s.", key, a, b),
				Severity:  models.SeverityError,
				Carrier:   carrierName,
			})
		}
		if a.IsZero() && !b.IsZero() {
			out = append(out, models.Exception{
				Type:      models.ExcChargeOnlyCarrier,
				Waybill:   waybill,
				Container: cont,
				Detail:    fmt.Sprintf("Cargo %q existe en NAVIERA pero no en FILS.", key),
				Severity:  models.SeverityWarn,
				Carrier:   carrierName,
			})
		}
		if !a.IsZero() && b.IsZero() {
			out = append(out, models.Exception{
				Type:      models.ExcChargeOnlyFILS,
				Waybill:   waybill,
				Container: cont,
				Detail:    fmt.Sprintf("Cargo %q existe en FILS pero no en NAVIERA.", key),
				Severity:  models.SeverityWarn,
				Carrier:   carrierName,
			})
		}
	}
	return out
}

func notClosedException(waybill, container, carrierName string) models.Exception {
	return models.Exception{
		Type:      models.ExcNotClosed,
		Waybill:   waybill,
		Container: container,
		Detail:    "No se encontró guía CERRADA para esta guía en FILS.",
		Severity:  models.SeverityWarn,
		Carrier:   carrierName,
	}
}

func containerRow(waybill string, rec *models.WaybillRecord, totalFILS decimal.Decimal, carrierName string) models.ContainerRow {
	extras := totalFILS.Sub(rec.Tariff)
	return models.ContainerRow{
		Waybill:   waybill,
		Container: rec.Container,
		Route:     rec.Route,
		Freight:   rec.Tariff,
		Extras:    extras,
		Total:     totalFILS,
		Carrier:   carrierName,
	}
}

func routeOf(rec *models.WaybillRecord, invRows []models.InvoiceRow) string {
	if rec.Route != "" {
		return rec.Route
	}
	if len(invRows) > 0 {
		return invRows[0].Route
	}
	return ""
}

func chargeRows(waybill, container string, set *chargeSet, origin, carrierName string) []models.ChargeRow {
	rows := make([]models.ChargeRow, 0, len(set.keys))
	for _, key := range set.keys {
		rows = append(rows, models.ChargeRow{
			Waybill:    waybill,
			Container:  container,
			ChargeType: key,
			Amount:     set.amounts[key],
			Origin:     origin,
			Carrier:    carrierName,
		})
	}
	return rows
}
