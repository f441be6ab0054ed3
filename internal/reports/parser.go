package reports

import (
	"fmt"

	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/xlsx"
)

// InvoiceParser reads one carrier's invoice format.
type InvoiceParser interface {
	// Carrier names the format.
	Carrier() models.Carrier
	// Sniff validates the workbook shape quickly, without a full
	// parse. Problems land in the returned meta, not in an error.
	Sniff(wb *xlsx.Workbook) *models.SniffMeta
	// Parse extracts all invoice lines.
	Parse(wb *xlsx.Workbook) ([]models.InvoiceRow, error)
}

// InvoiceParserFor picks the parser for a carrier.
func InvoiceParserFor(c models.Carrier) (InvoiceParser, error) {
	switch c {
	case models.CarrierCOSCO:
		return &COSCOParser{}, nil
	case models.CarrierONE:
		return &ONEParser{}, nil
	default:
		return nil, fmt.Errorf("no invoice parser for carrier %q", c)
	}
}

func newSniffMeta() *models.SniffMeta {
	return &models.SniffMeta{
		Errors:   []string{},
		Warnings: []string{},
		Mapped:   map[string]string{},
	}
}

// mappedNames records which original header matched each canonical
// field, for precheck display.
func mappedNames(meta *models.SniffMeta, headers []string, idx map[string]int) {
	for canon, i := range idx {
		if i >= 0 && i < len(headers) {
			meta.Mapped[canon] = headers[i]
		}
	}
}

func previewHeaders(headers []string) []string {
	if len(headers) > 50 {
		headers = headers[:50]
	}
	out := make([]string, len(headers))
	copy(out, headers)
	return out
}
