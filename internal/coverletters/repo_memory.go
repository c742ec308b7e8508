package coverletters

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used for dev mode and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	letters map[string]CoverLetter
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{letters: make(map[string]CoverLetter)}
}

func (r *MemoryRepo) Create(ctx context.Context, cl CoverLetter) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if cl.CreatedAt.IsZero() {
		cl.CreatedAt = now
	}
	cl.UpdatedAt = now
	r.letters[cl.ID] = cl
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (CoverLetter, error) {
	if err := ctx.Err(); err != nil {
		return CoverLetter{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cl, ok := r.letters[id]
	if !ok {
		return CoverLetter{}, ErrNotFound
	}
	return cl, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cl, ok := r.letters[id]
	if !ok {
		return ErrNotFound
	}
	cl.Status = status
	cl.UpdatedAt = time.Now().UTC()
	r.letters[id] = cl
	return nil
}

func (r *MemoryRepo) SaveLetter(ctx context.Context, id, letter string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cl, ok := r.letters[id]
	if !ok {
		return ErrNotFound
	}
	cl.GeneratedLetter = letter
	cl.UpdatedAt = time.Now().UTC()
	r.letters[id] = cl
	return nil
}
