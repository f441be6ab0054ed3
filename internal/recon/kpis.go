package recon

import (
	"github.com/shopspring/decimal"

	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/normalize"
)

// ComputeKPIs aggregates the summary rows of a run into headline
// figures. Only-in-FILS waybills are inferred from the totals
// (carrier total zero with a positive FILS total) and only-in-carrier
// ones from the SIN_FILS state, matching how the summary is built.
func ComputeKPIs(carrier models.Carrier, summary []models.SummaryRow) models.KPI {
	kpi := models.KPI{
		Carrier:          string(carrier),
		TotalFILS:        decimal.Zero,
		TotalCarrier:     decimal.Zero,
		GlobalDifference: decimal.Zero,
	}

	for _, row := range summary {
		kpi.TotalWaybills++
		kpi.TotalFILS = kpi.TotalFILS.Add(row.TotalFILS)
		kpi.TotalCarrier = kpi.TotalCarrier.Add(row.TotalCarrier)

		if row.OK {
			kpi.WaybillsOK++
		} else {
			kpi.WaybillsNotOK++
		}

		state := normalize.UpperClean(row.State)
		if state == models.StateNotClosed {
			kpi.NotClosed++
		}
		if state == models.StateNoFILS {
			kpi.OnlyInCarrier++
			continue
		}
		if row.TotalCarrier.IsZero() && row.TotalFILS.IsPositive() {
			kpi.OnlyInFILS++
			continue
		}
		if row.TotalFILS.IsPositive() && row.TotalCarrier.IsPositive() && !row.OK {
			kpi.WithDifference++
		}
	}

	kpi.GlobalDifference = kpi.TotalFILS.Sub(kpi.TotalCarrier)
	if kpi.TotalWaybills > 0 {
		kpi.PctOK = float64(kpi.WaybillsOK) / float64(kpi.TotalWaybills) * 100
	}
	return kpi
}
