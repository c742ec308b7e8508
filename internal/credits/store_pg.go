package credits

import (
	"context"
	"database/sql"
)

type pgStore struct {
	DB             *sql.DB
	InitialCredits int
}

// NewPGStore constructs a Postgres-backed credit store. initialCredits is the
// grant given to a user the first time their balance is touched.
func NewPGStore(db *sql.DB, initialCredits int) *pgStore {
	return &pgStore{DB: db, InitialCredits: initialCredits}
}

func (s *pgStore) Get(ctx context.Context, userID string) (Balance, error) {
	if err := s.ensure(ctx, userID); err != nil {
		return Balance{}, err
	}
	var b Balance
	row := s.DB.QueryRowContext(ctx, `
SELECT user_id, credits, updated_at FROM user_credits WHERE user_id = $1`, userID)
	if err := row.Scan(&b.UserID, &b.Credits, &b.UpdatedAt); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// Debit subtracts n in a single conditional UPDATE. The WHERE clause guards the
// balance, so concurrent debits can never drive it below zero.
func (s *pgStore) Debit(ctx context.Context, userID string, n int) (Balance, error) {
	if n <= 0 {
		return s.Get(ctx, userID)
	}
	if err := s.ensure(ctx, userID); err != nil {
		return Balance{}, err
	}

	res, err := s.DB.ExecContext(ctx, `
UPDATE user_credits SET credits = credits - $2, updated_at = now()
WHERE user_id = $1 AND credits >= $2`, userID, n)
	if err != nil {
		return Balance{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Balance{}, err
	}
	if affected == 0 {
		return Balance{}, ErrInsufficientCredits
	}
	return s.Get(ctx, userID)
}

func (s *pgStore) ensure(ctx context.Context, userID string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO user_credits (user_id, credits) VALUES ($1, $2)
ON CONFLICT (user_id) DO NOTHING`, userID, s.InitialCredits)
	return err
}
