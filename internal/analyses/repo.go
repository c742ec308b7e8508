package analyses

import "context"

// Repo persists analyses and their results.
type Repo interface {
	Create(ctx context.Context, a Analysis) error
	GetByID(ctx context.Context, analysisID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	UpdateStatus(ctx context.Context, analysisID, status string) error
	SaveResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, analysisID string) (Result, error)
}
