// Package models defines the data structures shared between the
// report parsers, the reconciliation engine and the API layer.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Carrier identifies a supported shipping line.
type Carrier string

const (
	CarrierCOSCO Carrier = "COSCO"
	CarrierONE   Carrier = "ONE"
)

// ParseCarrier validates a user-supplied carrier name.
func ParseCarrier(s string) (Carrier, error) {
	switch Carrier(strings.ToUpper(strings.TrimSpace(s))) {
	case CarrierCOSCO:
		return CarrierCOSCO, nil
	case CarrierONE:
		return CarrierONE, nil
	default:
		return "", fmt.Errorf("unsupported carrier: %q", s)
	}
}

// Waybill states as the FILS report spells them.
const (
	StateClosed    = "CERRADA"
	StateNotClosed = "NO_CERRADA"
	StateNoFILS    = "SIN_FILS"
)

// ChargeActionDelete marks a charge event that voids the charge.
const ChargeActionDelete = "ELIMINAR"

// Charge is one additional charge attached to a waybill in FILS.
type Charge struct {
	ChargeID string          `json:"chargeId,omitempty"`
	Name     string          `json:"name"`
	Currency string          `json:"currency,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// Key returns the stable identity used to match charges across
// systems: the charge id when present, else the uppercased name.
func (c Charge) Key() string {
	if id := strings.TrimSpace(c.ChargeID); id != "" {
		return "ID:" + id
	}
	return strings.ToUpper(strings.TrimSpace(c.Name))
}

// WaybillRecord is one FILS waybill after joining the report's base,
// container and charges sheets.
type WaybillRecord struct {
	Waybill   string          `json:"waybill"`
	Container string          `json:"container,omitempty"`
	State     string          `json:"state"`
	Route     string          `json:"route,omitempty"`
	Date      time.Time       `json:"date,omitempty"`
	Tariff    decimal.Decimal `json:"tariff"`
	Charges   []Charge        `json:"charges,omitempty"`
}

// InvoiceRow is one line of a carrier invoice. ONE invoices sometimes
// omit the waybill, leaving only the container for matching.
type InvoiceRow struct {
	Waybill    string          `json:"waybill,omitempty"`
	Container  string          `json:"container,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Route      string          `json:"route,omitempty"`
	Yard       string          `json:"yard,omitempty"`
	Sheet      string          `json:"sheet,omitempty"`
	ChargeID   string          `json:"chargeId,omitempty"`
	ChargeName string          `json:"chargeName,omitempty"`
}

// ChargeKey mirrors Charge.Key for invoice lines that carry a charge
// breakdown; lines without one collapse into a single generic charge.
func (r InvoiceRow) ChargeKey() string {
	if id := strings.TrimSpace(r.ChargeID); id != "" {
		return "ID:" + id
	}
	if n := strings.TrimSpace(r.ChargeName); n != "" {
		return strings.ToUpper(n)
	}
	return "CARGO"
}
