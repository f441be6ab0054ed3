package normalize

import (
	"strings"
	"time"

	"github.com/freight-audit/backend/internal/table"
)

// Layouts the reports have been seen to use. Extend as new report
// variants show up.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04",
	"02-01-2006",
}

// DateTime parses a report date string. Returns the zero time when
// nothing matches; callers treat that as "no date".
func DateTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// DateTimeValue parses a typed cell. Excel serial date numbers are
// measured in days since the 1899-12-30 epoch.
func DateTimeValue(v table.Value) time.Time {
	switch v.Kind {
	case table.Text:
		return DateTime(v.Str)
	case table.Number:
		if v.Num <= 0 {
			return time.Time{}
		}
		epoch := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
		return epoch.Add(time.Duration(v.Num * 24 * float64(time.Hour)))
	default:
		return time.Time{}
	}
}
