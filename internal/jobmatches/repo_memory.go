package jobmatches

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory Repo used for dev mode and tests.
type MemoryRepo struct {
	mu      sync.RWMutex
	matches map[string]JobMatch
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{matches: make(map[string]JobMatch)}
}

func (r *MemoryRepo) Create(ctx context.Context, jm JobMatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if jm.CreatedAt.IsZero() {
		jm.CreatedAt = now
	}
	jm.UpdatedAt = now
	r.matches[jm.ID] = jm
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (JobMatch, error) {
	if err := ctx.Err(); err != nil {
		return JobMatch{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	jm, ok := r.matches[id]
	if !ok {
		return JobMatch{}, ErrNotFound
	}
	return jm, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jm, ok := r.matches[id]
	if !ok {
		return ErrNotFound
	}
	jm.Status = status
	jm.UpdatedAt = time.Now().UTC()
	r.matches[id] = jm
	return nil
}

func (r *MemoryRepo) SaveResult(ctx context.Context, update JobMatch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jm, ok := r.matches[update.ID]
	if !ok {
		return ErrNotFound
	}
	jm.MatchScore = update.MatchScore
	jm.MissingSkills = update.MissingSkills
	jm.ExistingStrengths = update.ExistingStrengths
	jm.Recommendations = update.Recommendations
	jm.KeywordAnalysis = update.KeywordAnalysis
	jm.DetailedFeedback = update.DetailedFeedback
	jm.UpdatedAt = time.Now().UTC()
	r.matches[update.ID] = jm
	return nil
}
