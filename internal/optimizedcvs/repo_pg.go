package optimizedcvs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo is a Postgres-backed Repo.
type PGRepo struct {
	DB *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

func (r *PGRepo) Create(ctx context.Context, o OptimizedCV) error {
	notes, err := json.Marshal(o.OptimizationNotes)
	if err != nil {
		return fmt.Errorf("marshal optimization notes: %w", err)
	}
	if o.OptimizationNotes == nil {
		notes = []byte("[]")
	}
	const query = `
INSERT INTO optimized_cvs (id, user_id, job_match_analysis_id, optimized_content, optimization_notes, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err = r.DB.ExecContext(ctx, query,
		o.ID, o.UserID, o.JobMatchID, o.OptimizedContent, notes, o.Status)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (OptimizedCV, error) {
	const query = `
SELECT id, user_id, job_match_analysis_id, optimized_content, optimization_notes, status, created_at, updated_at
FROM optimized_cvs
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *PGRepo) GetByJobMatch(ctx context.Context, jobMatchID string) (OptimizedCV, error) {
	const query = `
SELECT id, user_id, job_match_analysis_id, optimized_content, optimization_notes, status, created_at, updated_at
FROM optimized_cvs
WHERE job_match_analysis_id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, jobMatchID))
}

func (r *PGRepo) scanOne(row *sql.Row) (OptimizedCV, error) {
	var o OptimizedCV
	var notes []byte
	err := row.Scan(&o.ID, &o.UserID, &o.JobMatchID, &o.OptimizedContent, &notes, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return OptimizedCV{}, ErrNotFound
		}
		return OptimizedCV{}, err
	}
	if err := json.Unmarshal(notes, &o.OptimizationNotes); err != nil {
		return OptimizedCV{}, fmt.Errorf("unmarshal optimization notes: %w", err)
	}
	return o, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `
UPDATE optimized_cvs SET status = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) SaveResult(ctx context.Context, id, content string, notes []string) error {
	encoded, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("marshal optimization notes: %w", err)
	}
	const query = `
UPDATE optimized_cvs SET optimized_content = $2, optimization_notes = $3, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, content, encoded)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
