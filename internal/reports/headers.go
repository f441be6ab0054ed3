// Package reports parses the spreadsheet reports the audit compares:
// the FILS waybill report and the carrier invoices (COSCO, ONE). Real
// report files vary in header spelling, header row position and sheet
// layout, so parsing is driven by synonym matching over normalized
// headers rather than fixed positions.
package reports

import (
	"fmt"
	"strings"

	"github.com/freight-audit/backend/internal/normalize"
	"github.com/freight-audit/backend/internal/table"
)

// Synonyms maps a canonical field name to the header spellings that
// have been seen for it.
type Synonyms map[string][]string

// mapColumns resolves each canonical field to a column index, or -1.
// Exact match on normalized headers wins, then substring match (for
// headers like "Documento No.").
func mapColumns(headers []string, syn Synonyms) map[string]int {
	out := make(map[string]int, len(syn))
	for canon, opts := range syn {
		out[canon] = -1
		for _, opt := range opts {
			optNorm := normalize.Header(opt)
			if optNorm == "" {
				continue
			}
			idx := -1
			for i, h := range headers {
				if h == optNorm {
					idx = i
					break
				}
			}
			if idx < 0 {
				for i, h := range headers {
					if strings.Contains(h, optNorm) {
						idx = i
						break
					}
				}
			}
			if idx >= 0 {
				out[canon] = idx
				break
			}
		}
	}
	return out
}

// normalizedHeaders renders a raw row as normalized header strings.
func normalizedHeaders(row []table.Value) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = normalize.Header(v.AsString())
	}
	return out
}

// mostlyEmpty reports whether a candidate header row carries almost no
// content (at most 5% of its cells).
func mostlyEmpty(headers []string) bool {
	if len(headers) == 0 {
		return true
	}
	nonEmpty := 0
	for _, h := range headers {
		if h != "" {
			nonEmpty++
		}
	}
	limit := len(headers) / 20
	if limit < 1 {
		limit = 1
	}
	return nonEmpty <= limit
}

const headerScanRows = 30

// findHeaderRow scans the first rows of a sheet for one that looks
// like a header, judged by how many required tokens it contains.
// Returns the 0-based row index, its normalized headers and warnings.
func findHeaderRow(rows [][]table.Value, required []string) (int, []string, []string) {
	var warnings []string

	tokens := make([]string, 0, len(required))
	for _, t := range required {
		if n := normalize.Header(t); n != "" {
			tokens = append(tokens, n)
		}
	}

	bestIdx := -1
	var bestHeaders []string

	limit := len(rows)
	if limit > headerScanRows {
		limit = headerScanRows
	}
	for i := 0; i < limit; i++ {
		headers := normalizedHeaders(rows[i])
		joined := strings.Join(headers, " | ")
		hits := 0
		for _, t := range tokens {
			if strings.Contains(joined, t) {
				hits++
			}
		}
		if hits >= len(tokens) && len(tokens) > 0 {
			bestIdx = i
			bestHeaders = headers
			break
		}
		if hits >= 2 && bestIdx < 0 {
			bestIdx = i
			bestHeaders = headers
		}
	}

	if bestIdx < 0 {
		warnings = append(warnings, "header row not clearly detected; using row 1")
		if len(rows) == 0 {
			return 0, nil, warnings
		}
		return 0, normalizedHeaders(rows[0]), warnings
	}
	if bestIdx != 0 {
		warnings = append(warnings, fmt.Sprintf("header not found in row 1; using row %d", bestIdx+1))
	}
	return bestIdx, bestHeaders, warnings
}

// cell fetches a value by mapped index, Empty when unmapped or short.
func cell(row []table.Value, idx int) table.Value {
	if idx < 0 || idx >= len(row) {
		return table.None()
	}
	return row[idx]
}
