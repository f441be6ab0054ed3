package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-audit/backend/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func summaryByWaybill(res *Result) map[string]models.SummaryRow {
	out := make(map[string]models.SummaryRow, len(res.Summary))
	for _, r := range res.Summary {
		out[r.Waybill] = r
	}
	return out
}

func exceptionTypes(res *Result) map[string]int {
	out := map[string]int{}
	for _, e := range res.Exceptions {
		out[e.Type]++
	}
	return out
}

func TestReconcile_LastClosedAndExceptions(t *testing.T) {
	fils := []models.WaybillRecord{
		{Waybill: "3001", State: "ABIERTA", Tariff: d("900"), Container: "AAA"},
		{Waybill: "3001", State: "CERRADA", Tariff: d("1000"), Container: "AAA",
			Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Waybill: "3002", State: "ABIERTA", Tariff: d("500"), Container: "BBB"},
	}
	inv := []models.InvoiceRow{
		{Waybill: "3001", Total: d("1000"), Sheet: "X"},
		{Waybill: "3999", Total: d("777"), Sheet: "Y"},
	}

	res := Reconcile(models.CarrierCOSCO, fils, inv, d("1.00"))
	rows := summaryByWaybill(res)
	require.Len(t, rows, 3)

	r3001 := rows["3001"]
	assert.Equal(t, models.StateClosed, r3001.State)
	assert.True(t, r3001.OK)
	assert.True(t, r3001.TotalFILS.Equal(d("1000")), "closed event wins over the newer open one")
	assert.Equal(t, "X", r3001.SourceSheet)

	r3002 := rows["3002"]
	assert.True(t, r3002.TotalCarrier.IsZero())
	assert.False(t, r3002.OK)
	assert.Equal(t, models.StateNotClosed, r3002.State)

	r3999 := rows["3999"]
	assert.True(t, r3999.TotalFILS.IsZero())
	assert.False(t, r3999.OK)
	assert.Equal(t, models.StateNoFILS, r3999.State)

	types := exceptionTypes(res)
	assert.Contains(t, types, models.ExcOnlyInFILS)
	assert.Contains(t, types, models.ExcOnlyInCarrier)
	assert.Contains(t, types, models.ExcNotClosed)
}

func TestReconcile_ToleranceBoundary(t *testing.T) {
	fils := []models.WaybillRecord{
		{Waybill: "W1", State: "CERRADA", Tariff: d("100")},
	}

	within := Reconcile(models.CarrierCOSCO,
		fils, []models.InvoiceRow{{Waybill: "W1", Total: d("100.50")}}, d("0.50"))
	assert.True(t, summaryByWaybill(within)["W1"].OK, "difference equal to the tolerance is still OK")

	beyond := Reconcile(models.CarrierCOSCO,
		fils, []models.InvoiceRow{{Waybill: "W1", Total: d("100.51")}}, d("0.50"))
	assert.False(t, summaryByWaybill(beyond)["W1"].OK)
	assert.Contains(t, exceptionTypes(beyond), models.ExcDifference)
}

func TestReconcile_ChargesAddToFILSTotal(t *testing.T) {
	fils := []models.WaybillRecord{
		{Waybill: "W1", State: "CERRADA", Tariff: d("100"), Charges: []models.Charge{
			{Name: "Demora", Amount: d("30")},
			{Name: "Porteo", Amount: d("20")},
		}},
	}
	inv := []models.InvoiceRow{{Waybill: "W1", Total: d("150")}}

	res := Reconcile(models.CarrierCOSCO, fils, inv, d("0.01"))
	row := summaryByWaybill(res)["W1"]
	assert.True(t, row.TotalFILS.Equal(d("150")))
	assert.True(t, row.OK)
}

func TestReconcile_ChargeComparison(t *testing.T) {
	fils := []models.WaybillRecord{
		{Waybill: "W1", State: "CERRADA", Tariff: d("0"), Charges: []models.Charge{
			{Name: "Demora", Amount: d("30")},
			{Name: "Porteo", Amount: d("20")},
		}},
	}
	inv := []models.InvoiceRow{
		{Waybill: "W1", ChargeName: "Demora", Total: d("45")},
		{Waybill: "W1", ChargeName: "Almacenaje", Total: d("5")},
	}

	res := Reconcile(models.CarrierCOSCO, fils, inv, d("0.01"))
	types := exceptionTypes(res)
	assert.Equal(t, 1, types[models.ExcChargeDifference], "Demora differs")
	assert.Equal(t, 1, types[models.ExcChargeOnlyFILS], "Porteo only in FILS")
	assert.Equal(t, 1, types[models.ExcChargeOnlyCarrier], "Almacenaje only in carrier")
}

func TestReconcile_ContainerFallbackMatch(t *testing.T) {
	fils := []models.WaybillRecord{
		{Waybill: "W1", State: "CERRADA", Tariff: d("200"), Container: "CSNU1111111"},
	}
	inv := []models.InvoiceRow{
		{Container: "CSNU-111111-1", Total: d("200"), Sheet: "S"},
	}

	res := Reconcile(models.CarrierONE, fils, inv, d("0.01"))
	require.Len(t, res.Summary, 1)
	row := res.Summary[0]
	assert.Equal(t, "W1", row.Waybill)
	assert.True(t, row.OK)
	assert.True(t, row.TotalCarrier.Equal(d("200")))
	assert.Equal(t, "S", row.SourceSheet)
}

func TestReconcile_ContainerRowsAccumulateOntoDirectMatch(t *testing.T) {
	fils := []models.WaybillRecord{
		{Waybill: "W1", State: "CERRADA", Tariff: d("300"), Container: "AAAA1111111"},
	}
	inv := []models.InvoiceRow{
		{Waybill: "W1", Total: d("200")},
		{Container: "AAAA1111111", Total: d("100")},
	}

	res := Reconcile(models.CarrierONE, fils, inv, d("0.01"))
	require.Len(t, res.Summary, 1)
	row := res.Summary[0]
	assert.True(t, row.TotalCarrier.Equal(d("300")))
	assert.True(t, row.OK)
}

func TestReconcile_UnmatchedContainerIsOnlyInCarrier(t *testing.T) {
	res := Reconcile(models.CarrierONE,
		nil,
		[]models.InvoiceRow{{Container: "ZZZZ9999999", Total: d("50"), Sheet: "S"}},
		d("0.01"))

	require.Len(t, res.Summary, 1)
	assert.Equal(t, "(SIN_GUIA)ZZZZ9999999", res.Summary[0].Waybill)
	assert.Equal(t, models.StateNoFILS, res.Summary[0].State)
	assert.Contains(t, exceptionTypes(res), models.ExcOnlyInCarrier)
}

func TestComputeKPIs(t *testing.T) {
	summary := []models.SummaryRow{
		{Waybill: "A", State: "CERRADA", TotalFILS: d("100"), TotalCarrier: d("100"), OK: true},
		{Waybill: "B", State: "NO_CERRADA", TotalFILS: d("200"), TotalCarrier: d("150"), OK: false},
		{Waybill: "C", State: "CERRADA", TotalFILS: d("50"), TotalCarrier: d("0"), OK: false},
		{Waybill: "D", State: "SIN_FILS", TotalFILS: d("0"), TotalCarrier: d("80"), OK: false},
	}

	kpi := ComputeKPIs(models.CarrierCOSCO, summary)
	assert.Equal(t, 4, kpi.TotalWaybills)
	assert.Equal(t, 1, kpi.WaybillsOK)
	assert.Equal(t, 3, kpi.WaybillsNotOK)
	assert.Equal(t, 1, kpi.WithDifference)
	assert.Equal(t, 1, kpi.NotClosed)
	assert.Equal(t, 1, kpi.OnlyInFILS)
	assert.Equal(t, 1, kpi.OnlyInCarrier)
	assert.True(t, kpi.TotalFILS.Equal(d("350")))
	assert.True(t, kpi.TotalCarrier.Equal(d("330")))
	assert.True(t, kpi.GlobalDifference.Equal(d("20")))
	assert.InDelta(t, 25.0, kpi.PctOK, 0.001)
}
