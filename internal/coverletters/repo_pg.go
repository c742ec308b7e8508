package coverletters

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo is a Postgres-backed Repo.
type PGRepo struct {
	DB *sql.DB
}

func NewPGRepo(db *sql.DB) *PGRepo {
	return &PGRepo{DB: db}
}

func (r *PGRepo) Create(ctx context.Context, cl CoverLetter) error {
	const query = `
INSERT INTO cover_letters (id, user_id, cv_analysis_id, job_title, company_name, job_description, language, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		cl.ID, cl.UserID, cl.CVAnalysisID, cl.JobTitle,
		nullableString(cl.CompanyName), cl.JobDescription, cl.Language, cl.Status)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (CoverLetter, error) {
	const query = `
SELECT id, user_id, cv_analysis_id, job_title, company_name, job_description, language, generated_letter, status, created_at, updated_at
FROM cover_letters
WHERE id = $1
LIMIT 1`
	var cl CoverLetter
	var companyName sql.NullString
	var letter sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&cl.ID, &cl.UserID, &cl.CVAnalysisID, &cl.JobTitle, &companyName,
		&cl.JobDescription, &cl.Language, &letter, &cl.Status, &cl.CreatedAt, &cl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CoverLetter{}, ErrNotFound
		}
		return CoverLetter{}, err
	}
	if companyName.Valid {
		cl.CompanyName = companyName.String
	}
	if letter.Valid {
		cl.GeneratedLetter = letter.String
	}
	return cl, nil
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const query = `
UPDATE cover_letters SET status = $2, updated_at = now() WHERE id = $1`
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

func (r *PGRepo) SaveLetter(ctx context.Context, id, letter string) error {
	const query = `
UPDATE cover_letters SET generated_letter = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, id, letter)
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
