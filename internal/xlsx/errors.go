package xlsx

import "fmt"

// MalformedInputError means the uploaded stream is not a parseable
// xlsx workbook.
type MalformedInputError struct {
	Cause error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed workbook: %v", e.Cause)
}

func (e *MalformedInputError) Unwrap() error { return e.Cause }

// SheetNotFoundError means a named sheet was requested but the
// workbook does not contain it.
type SheetNotFoundError struct {
	Sheet string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet not found: %q", e.Sheet)
}
