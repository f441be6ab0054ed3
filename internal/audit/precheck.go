// Package audit runs the freight billing audit: it parses the FILS
// report and a carrier invoice, reconciles them and renders the
// results as JSON-friendly structures or a multi sheet workbook.
package audit

import (
	"fmt"

	"github.com/freight-audit/backend/internal/models"
	"github.com/freight-audit/backend/internal/reports"
	"github.com/freight-audit/backend/internal/xlsx"
)

// Precheck sniffs both uploads without fully parsing them, so a
// client can surface mapping problems before launching an audit.
func Precheck(carrier models.Carrier, filsData, invoiceData []byte) (*models.PrecheckReport, error) {
	report := &models.PrecheckReport{
		Carrier: string(carrier),
		Meta:    make(map[string]*models.SniffMeta),
	}

	filsWB, err := xlsx.OpenWorkbook(filsData)
	if err != nil {
		return nil, fmt.Errorf("fils workbook: %w", err)
	}
	defer filsWB.Close()

	filsMeta := (&reports.FILSParser{}).Sniff(filsWB)
	report.Meta["fils"] = filsMeta
	collectIssues(report, filsMeta)

	parser, err := reports.InvoiceParserFor(carrier)
	if err != nil {
		report.Issues = append(report.Issues, models.PrecheckIssue{
			Level:   models.SeverityError,
			Message: err.Error(),
		})
		return report, nil
	}

	invWB, err := xlsx.OpenWorkbook(invoiceData)
	if err != nil {
		return nil, fmt.Errorf("invoice workbook: %w", err)
	}
	defer invWB.Close()

	invMeta := parser.Sniff(invWB)
	report.Meta["invoice"] = invMeta
	collectIssues(report, invMeta)

	report.OK = true
	for _, issue := range report.Issues {
		if issue.Level == models.SeverityError {
			report.OK = false
			break
		}
	}
	return report, nil
}

func collectIssues(report *models.PrecheckReport, meta *models.SniffMeta) {
	for _, msg := range meta.Errors {
		report.Issues = append(report.Issues, models.PrecheckIssue{Level: models.SeverityError, Message: msg})
	}
	for _, msg := range meta.Warnings {
		report.Issues = append(report.Issues, models.PrecheckIssue{Level: models.SeverityWarn, Message: msg})
	}
}
