package models

// SniffMeta is what a parser learns from a fast look at a workbook:
// enough to validate shape without a full parse.
type SniffMeta struct {
	Sheets         []string          `json:"sheets,omitempty"`
	SheetUsed      string            `json:"sheetUsed,omitempty"`
	HeaderRow      int               `json:"headerRow,omitempty"`
	HeadersPreview []string          `json:"headersPreview,omitempty"`
	Mapped         map[string]string `json:"mapped,omitempty"`
	Errors         []string          `json:"errors"`
	Warnings       []string          `json:"warnings"`
}

// PrecheckIssue is a single finding from the pre-run validation.
type PrecheckIssue struct {
	Level   string `json:"level"` // WARN / ERROR
	Message string `json:"message"`
}

// PrecheckReport aggregates issues from sniffing both uploads.
// OK is false when any issue is an ERROR.
type PrecheckReport struct {
	OK      bool                  `json:"ok"`
	Carrier string                `json:"carrier"`
	Issues  []PrecheckIssue       `json:"issues"`
	Meta    map[string]*SniffMeta `json:"meta"` // keyed "fils" / "invoice"
}
