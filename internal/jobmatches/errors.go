package jobmatches

import "errors"

var (
	// ErrNotFound indicates no job match exists for the given ID.
	ErrNotFound = errors.New("job match analysis not found")
	// ErrSourceNotFound indicates the source CV analysis does not exist.
	ErrSourceNotFound = errors.New("cv analysis not found")
	// ErrSourceNotCompleted indicates the source CV analysis is not completed.
	ErrSourceNotCompleted = errors.New("cv analysis must be completed first")
	// ErrSchemaMismatch indicates the model reply did not match the expected
	// result shape.
	ErrSchemaMismatch = errors.New("llm output does not match job match schema")
)
