package optimizedcvs

import "context"

// Repo persists optimized CVs.
type Repo interface {
	Create(ctx context.Context, o OptimizedCV) error
	GetByID(ctx context.Context, id string) (OptimizedCV, error)
	// GetByJobMatch returns the optimization for a job match, if one exists.
	// Returns ErrNotFound otherwise.
	GetByJobMatch(ctx context.Context, jobMatchID string) (OptimizedCV, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SaveResult(ctx context.Context, id, content string, notes []string) error
}
