package query

import "fmt"

// FormatError reports a query file that does not begin with a recognized
// query-language keyword. The check is a cheap fail-fast guard, not full
// validation.
type FormatError struct {
	Path    string
	Preview string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("query file %s must start with a query keyword, got: %q", e.Path, e.Preview)
}

// ExecutionError reports a query the engine rejected, either at parse time
// or during evaluation setup.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("query rejected: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
