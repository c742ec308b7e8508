package jobmatches

import "context"

// Repo persists job match analyses.
type Repo interface {
	Create(ctx context.Context, jm JobMatch) error
	GetByID(ctx context.Context, id string) (JobMatch, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SaveResult(ctx context.Context, jm JobMatch) error
}
