package optimizedcvs

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used for dev mode and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	cvs  map[string]OptimizedCV
	byJM map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		cvs:  make(map[string]OptimizedCV),
		byJM: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, o OptimizedCV) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	r.cvs[o.ID] = o
	r.byJM[o.JobMatchID] = o.ID
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (OptimizedCV, error) {
	if err := ctx.Err(); err != nil {
		return OptimizedCV{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.cvs[id]
	if !ok {
		return OptimizedCV{}, ErrNotFound
	}
	return o, nil
}

func (r *MemoryRepo) GetByJobMatch(ctx context.Context, jobMatchID string) (OptimizedCV, error) {
	if err := ctx.Err(); err != nil {
		return OptimizedCV{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byJM[jobMatchID]
	if !ok {
		return OptimizedCV{}, ErrNotFound
	}
	return r.cvs[id], nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.cvs[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	r.cvs[id] = o
	return nil
}

func (r *MemoryRepo) SaveResult(ctx context.Context, id, content string, notes []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.cvs[id]
	if !ok {
		return ErrNotFound
	}
	o.OptimizedContent = content
	o.OptimizationNotes = notes
	o.UpdatedAt = time.Now().UTC()
	r.cvs[id] = o
	return nil
}
