package audit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/recon"
	"github.com/freight-audit/backend/internal/reports"
	"github.com/freight-audit/backend/internal/xlsx"
)

// Result is the full outcome of one audit run.
type Result struct {
	RunID      string                `json:"runId"`
	Carrier    string                `json:"carrier"`
	Tolerance  decimal.Decimal       `json:"tolerance"`
	Summary    []models.SummaryRow   `json:"summary"`
	Containers []models.ContainerRow `json:"containers"`
	Charges    []models.ChargeRow    `json:"charges"`
	Exceptions []models.Exception    `json:"exceptions"`
	KPI        models.KPI            `json:"kpis"`
	Elapsed    float64               `json:"elapsedSeconds"`
}

// Run parses both workbooks, reconciles them and computes the KPIs.
func Run(carrier models.Carrier, filsData, invoiceData []byte, tolerance decimal.Decimal) (*Result, error) {
	start := time.Now()

	filsWB, err := xlsx.OpenWorkbook(filsData)
	if err != nil {
		return nil, fmt.Errorf("fils workbook: %w", err)
	}
	defer filsWB.Close()

	filsRows, err := (&reports.FILSParser{}).Parse(filsWB)
	if err != nil {
		return nil, fmt.Errorf("fils report: %w", err)
	}

	parser, err := reports.InvoiceParserFor(carrier)
	if err != nil {
		return nil, err
	}

	invWB, err := xlsx.OpenWorkbook(invoiceData)
	if err != nil {
		return nil, fmt.Errorf("invoice workbook: %w", err)
	}
	defer invWB.Close()

	invoiceRows, err := parser.Parse(invWB)
	if err != nil {
		return nil, fmt.Errorf("%s invoice: %w", carrier, err)
	}

	rec := recon.Reconcile(carrier, filsRows, invoiceRows, tolerance)
	kpi := recon.ComputeKPIs(carrier, rec.Summary)

	res := &Result{
		RunID:      uuid.NewString(),
		Carrier:    string(carrier),
		Tolerance:  tolerance,
		Summary:    rec.Summary,
		Containers: rec.Containers,
		Charges:    rec.Charges,
		Exceptions: rec.Exceptions,
		KPI:        kpi,
		Elapsed:    time.Since(start).Seconds(),
	}
	slog.Info("audit run finished",
		"run_id", res.RunID,
		"carrier", carrier,
		"fils_rows", len(filsRows),
		"invoice_rows", len(invoiceRows),
		"summary", len(res.Summary),
		"exceptions", len(res.Exceptions))
	return res, nil
}
