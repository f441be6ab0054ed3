package models

import "github.com/shopspring/decimal"

// Exception types produced by reconciliation, using the codes the
// audit reports have always used.
const (
	ExcOnlyInFILS        = "SOLO_EN_FILS"
	ExcOnlyInCarrier     = "SOLO_EN_NAVIERA"
	ExcDifference        = "DIFERENCIA"
	ExcNotClosed         = "NO_CERRADA"
	ExcChargeDifference  = "CARGO_DIFERENCIA"
	ExcChargeOnlyFILS    = "CARGO_SOLO_FILS"
	ExcChargeOnlyCarrier = "CARGO_SOLO_NAVIERA"
)

// Exception severities.
const (
	SeverityWarn  = "WARN"
	SeverityError = "ERROR"
)

// SummaryRow is the per-waybill reconciliation outcome.
type SummaryRow struct {
	Waybill      string          `json:"waybill"`
	State        string          `json:"state"`
	TotalFILS    decimal.Decimal `json:"totalFils"`
	TotalCarrier decimal.Decimal `json:"totalCarrier"`
	Difference   decimal.Decimal `json:"difference"`
	OK           bool            `json:"ok"`
	Carrier      string          `json:"carrier"`
	SourceSheet  string          `json:"sourceSheet,omitempty"`
}

// ContainerRow is the per-container detail line.
type ContainerRow struct {
	Waybill   string          `json:"waybill"`
	Container string          `json:"container"`
	Route     string          `json:"route,omitempty"`
	Freight   decimal.Decimal `json:"freight"`
	Extras    decimal.Decimal `json:"extras"`
	Total     decimal.Decimal `json:"total"`
	Carrier   string          `json:"carrier"`
}

// ChargeRow is one charge seen on either side of the audit.
type ChargeRow struct {
	Waybill    string          `json:"waybill"`
	Container  string          `json:"container,omitempty"`
	ChargeType string          `json:"chargeType"`
	Amount     decimal.Decimal `json:"amount"`
	Origin     string          `json:"origin"` // FILS / NAVIERA
	Carrier    string          `json:"carrier"`
}

// Exception is an audit finding.
type Exception struct {
	Type      string `json:"type"`
	Waybill   string `json:"waybill,omitempty"`
	Container string `json:"container,omitempty"`
	Detail    string `json:"detail"`
	Severity  string `json:"severity"`
	Carrier   string `json:"carrier"`
}

// KPI aggregates a whole reconciliation run.
type KPI struct {
	Carrier          string          `json:"carrier"`
	TotalWaybills    int             `json:"totalWaybills"`
	WaybillsOK       int             `json:"waybillsOk"`
	WaybillsNotOK    int             `json:"waybillsNotOk"`
	WithDifference   int             `json:"withDifference"`
	NotClosed        int             `json:"notClosed"`
	OnlyInFILS       int             `json:"onlyInFils"`
	OnlyInCarrier    int             `json:"onlyInCarrier"`
	TotalFILS        decimal.Decimal `json:"totalFils"`
	TotalCarrier     decimal.Decimal `json:"totalCarrier"`
	GlobalDifference decimal.Decimal `json:"globalDifference"`
	PctOK            float64         `json:"pctOk"`
}
