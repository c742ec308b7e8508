package coverletters

import "context"

// Repo persists cover letters.
type Repo interface {
	Create(ctx context.Context, cl CoverLetter) error
	GetByID(ctx context.Context, id string) (CoverLetter, error)
	UpdateStatus(ctx context.Context, id, status string) error
	SaveLetter(ctx context.Context, id, letter string) error
}
