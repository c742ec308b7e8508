package jobmatches

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

func (r *PGRepo) Create(ctx context.Context, jm JobMatch) error {
	const query = `
INSERT INTO job_match_analyses (id, user_id, cv_analysis_id, job_title, company_name, job_description, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		jm.ID, jm.UserID, jm.CVAnalysisID, jm.JobTitle,
		nullableString(jm.CompanyName), jm.JobDescription, jm.Status)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (JobMatch, error) {
	const query = `
SELECT id, user_id, cv_analysis_id, job_title, company_name, job_description, status,
       match_score, missing_skills, existing_strengths, recommendations, keyword_analysis, detailed_feedback,
       created_at, updated_at
FROM job_match_analyses
WHERE id = $1
LIMIT 1`
	var jm JobMatch
	var companyName, feedback sql.NullString
	var matchScore sql.NullInt64
	var missingSkills, existingStrengths, recommendations, keywordAnalysis []byte
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&jm.ID, &jm.UserID, &jm.CVAnalysisID, &jm.JobTitle, &companyName, &jm.JobDescription, &jm.Status,
		&matchScore, &missingSkills, &existingStrengths, &recommendations, &keywordAnalysis, &feedback,
		&jm.CreatedAt, &jm.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return JobMatch{}, ErrNotFound
		}
		return JobMatch{}, err
	}

	if companyName.Valid {
		jm.CompanyName = companyName.String
	}
	if matchScore.Valid {
		jm.MatchScore = int(matchScore.Int64)
	}
	if feedback.Valid {
		jm.DetailedFeedback = feedback.String
	}
	if err := json.Unmarshal(missingSkills, &jm.MissingSkills); err != nil {
		return JobMatch{}, fmt.Errorf("unmarshal missing skills: %w", err)
	}
	if err := json.Unmarshal(existingStrengths, &jm.ExistingStrengths); err != nil {
		return JobMatch{}, fmt.Errorf("unmarshal existing strengths: %w", err)
	}
	if err := json.Unmarshal(recommendations, &jm.Recommendations); err != nil {
		return JobMatch{}, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	if len(keywordAnalysis) > 0 && string(keywordAnalysis) != "{}" {
		if err := json.Unmarshal(keywordAnalysis, &jm.KeywordAnalysis); err != nil {
			return JobMatch{}, fmt.Errorf("unmarshal keyword analysis: %w", err)
		}
	}
	return jm, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `
UPDATE job_match_analyses SET status = $2, updated_at = now() WHERE id = $1`
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

func (r *PGRepo) SaveResult(ctx context.Context, jm JobMatch) error {
	missingSkills, err := json.Marshal(jm.MissingSkills)
	if err != nil {
		return fmt.Errorf("marshal missing skills: %w", err)
	}
	existingStrengths, err := json.Marshal(jm.ExistingStrengths)
	if err != nil {
		return fmt.Errorf("marshal existing strengths: %w", err)
	}
	recommendations, err := json.Marshal(jm.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	keywordAnalysis, err := json.Marshal(jm.KeywordAnalysis)
	if err != nil {
		return fmt.Errorf("marshal keyword analysis: %w", err)
	}

	const query = `
UPDATE job_match_analyses SET
  match_score = $2,
  missing_skills = $3,
  existing_strengths = $4,
  recommendations = $5,
  keyword_analysis = $6,
  detailed_feedback = $7,
  updated_at = now()
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, jm.ID,
		jm.MatchScore, missingSkills, existingStrengths, recommendations, keywordAnalysis, jm.DetailedFeedback)
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

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
