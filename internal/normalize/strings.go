package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var markStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Text trims and collapses internal whitespace.
func Text(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// UpperClean is Text plus uppercasing, the form used for matching
// state values and charge names.
func UpperClean(s string) string {
	return strings.ToUpper(Text(s))
}

// Header normalizes a column header for synonym matching: accents
// stripped, lowercased, whitespace collapsed.
func Header(s string) string {
	stripped, _, err := transform.String(markStripper, s)
	if err != nil {
		stripped = s
	}
	return strings.ToLower(Text(stripped))
}

// Waybill normalizes a waybill number: trimmed, inner spaces and
// dashes removed ("0000-1234" and "0000 1234" are the same document).
func Waybill(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), "")
	return strings.ReplaceAll(s, "-", "")
}

// Container normalizes a container number, e.g. "CSNU-123456-7" to
// "CSNU1234567".
func Container(s string) string {
	return strings.ToUpper(Waybill(s))
}
