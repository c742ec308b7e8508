package coverletters

import "errors"

var (
	// ErrNotFound indicates no cover letter exists for the given ID.
	ErrNotFound = errors.New("cover letter not found")
	// ErrSourceNotCompleted indicates the source CV analysis is not completed.
	ErrSourceNotCompleted = errors.New("cv analysis must be completed first")
	// ErrSourceNotFound indicates the source CV analysis does not exist.
	ErrSourceNotFound = errors.New("cv analysis not found")
)
