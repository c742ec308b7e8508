package analyses

import "errors"

var (
	// ErrNotFound indicates no analysis exists for the given ID.
	ErrNotFound = errors.New("analysis not found")
	// ErrResultNotFound indicates the analysis has no stored result yet.
	ErrResultNotFound = errors.New("analysis result not found")
	// ErrSchemaMismatch indicates the model reply did not match the expected
	// result shape. The analysis is failed rather than stored empty.
	ErrSchemaMismatch = errors.New("llm output does not match result schema")
)
