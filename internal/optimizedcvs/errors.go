package optimizedcvs

import "errors"

var (
	// ErrNotFound indicates no optimized CV exists for the given ID.
	ErrNotFound = errors.New("optimized cv not found")
	// ErrSourceNotFound indicates the source job match does not exist.
	ErrSourceNotFound = errors.New("job match analysis not found")
	// ErrSourceNotCompleted indicates the source job match is not completed.
	ErrSourceNotCompleted = errors.New("job match analysis must be completed first")
	// ErrSchemaMismatch indicates the model reply did not match the expected
	// result shape.
	ErrSchemaMismatch = errors.New("llm output does not match optimization schema")
)
