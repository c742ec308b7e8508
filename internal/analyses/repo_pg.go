package analyses

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

func (r *PGRepo) Create(ctx context.Context, a Analysis) error {
	const query = `
INSERT INTO cv_analyses (id, user_id, file_name, storage_key, file_size, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		a.ID, a.UserID, a.FileName, a.StorageKey, a.FileSize, a.Status)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	const query = `
SELECT id, user_id, file_name, storage_key, file_size, status, created_at, updated_at
FROM cv_analyses
WHERE id = $1
LIMIT 1`
	var a Analysis
	var fileSize sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, analysisID).Scan(
		&a.ID, &a.UserID, &a.FileName, &a.StorageKey, &fileSize, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	if fileSize.Valid {
		a.FileSize = fileSize.Int64
	}
	return a, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, file_name, storage_key, file_size, status, created_at, updated_at
FROM cv_analyses
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Analysis, 0)
	for rows.Next() {
		var a Analysis
		var fileSize sql.NullInt64
		if err := rows.Scan(&a.ID, &a.UserID, &a.FileName, &a.StorageKey, &fileSize, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		if fileSize.Valid {
			a.FileSize = fileSize.Int64
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, analysisID, status string) error {
	const query = `
UPDATE cv_analyses SET status = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, analysisID, status)
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

func (r *PGRepo) SaveResult(ctx context.Context, res Result) error {
	strengths, err := json.Marshal(res.Strengths)
	if err != nil {
		return fmt.Errorf("marshal strengths: %w", err)
	}
	weaknesses, err := json.Marshal(res.Weaknesses)
	if err != nil {
		return fmt.Errorf("marshal weaknesses: %w", err)
	}
	improvements, err := json.Marshal(res.Improvements)
	if err != nil {
		return fmt.Errorf("marshal improvements: %w", err)
	}
	sectionScores, err := json.Marshal(res.SectionScores)
	if err != nil {
		return fmt.Errorf("marshal section scores: %w", err)
	}
	keywords, err := json.Marshal(res.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	const query = `
INSERT INTO analysis_results (id, cv_analysis_id, overall_score, summary, strengths, weaknesses, improvements, section_scores, keywords, ai_feedback, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
ON CONFLICT (cv_analysis_id) DO UPDATE SET
  overall_score = EXCLUDED.overall_score,
  summary = EXCLUDED.summary,
  strengths = EXCLUDED.strengths,
  weaknesses = EXCLUDED.weaknesses,
  improvements = EXCLUDED.improvements,
  section_scores = EXCLUDED.section_scores,
  keywords = EXCLUDED.keywords,
  ai_feedback = EXCLUDED.ai_feedback`
	_, err = r.DB.ExecContext(ctx, query,
		res.ID, res.AnalysisID, res.OverallScore, res.Summary,
		strengths, weaknesses, improvements, sectionScores, keywords, res.AIFeedback)
	return err
}

func (r *PGRepo) GetResult(ctx context.Context, analysisID string) (Result, error) {
	const query = `
SELECT id, cv_analysis_id, overall_score, summary, strengths, weaknesses, improvements, section_scores, keywords, ai_feedback, created_at
FROM analysis_results
WHERE cv_analysis_id = $1
LIMIT 1`
	var res Result
	var strengths, weaknesses, improvements, sectionScores, keywords []byte
	var aiFeedback sql.NullString
	err := r.DB.QueryRowContext(ctx, query, analysisID).Scan(
		&res.ID, &res.AnalysisID, &res.OverallScore, &res.Summary,
		&strengths, &weaknesses, &improvements, &sectionScores, &keywords,
		&aiFeedback, &res.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrResultNotFound
		}
		return Result{}, err
	}

	if err := json.Unmarshal(strengths, &res.Strengths); err != nil {
		return Result{}, fmt.Errorf("unmarshal strengths: %w", err)
	}
	if err := json.Unmarshal(weaknesses, &res.Weaknesses); err != nil {
		return Result{}, fmt.Errorf("unmarshal weaknesses: %w", err)
	}
	if err := json.Unmarshal(improvements, &res.Improvements); err != nil {
		return Result{}, fmt.Errorf("unmarshal improvements: %w", err)
	}
	if err := json.Unmarshal(sectionScores, &res.SectionScores); err != nil {
		return Result{}, fmt.Errorf("unmarshal section scores: %w", err)
	}
	if err := json.Unmarshal(keywords, &res.Keywords); err != nil {
		return Result{}, fmt.Errorf("unmarshal keywords: %w", err)
	}
	if aiFeedback.Valid {
		res.AIFeedback = aiFeedback.String
	}
	return res, nil
}
