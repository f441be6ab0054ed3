package transform

import "fmt"

// UnknownColumnError means an operation referenced a column that does
// not exist in the table at that point of the pipeline.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column: %q", e.Column)
}

// StepError wraps an operation failure with the index of the failing
// step, so callers can report exactly where a spec went wrong.
type StepError struct {
	Step int
	Op   string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (%s): %v", e.Step, e.Op, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
