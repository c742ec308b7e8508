package credits

import "context"

type store interface {
	Get(ctx context.Context, userID string) (Balance, error)
	Debit(ctx context.Context, userID string, n int) (Balance, error)
}

// Service manages the credit ledger via an underlying store.
type Service struct {
	store store
}

// NewService constructs a Service with an in-memory store.
func NewService(initialCredits int) *Service {
	return &Service{store: newMemoryStore(initialCredits)}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// Get returns the current balance for a user, initializing the grant if absent.
func (s *Service) Get(ctx context.Context, userID string) (Balance, error) {
	return s.store.Get(ctx, userID)
}

// Debit atomically subtracts n credits. Returns ErrInsufficientCredits when the
// balance cannot cover n; the balance never goes negative.
func (s *Service) Debit(ctx context.Context, userID string, n int) (Balance, error) {
	return s.store.Debit(ctx, userID, n)
}

// HasAtLeast reports whether the user's balance covers n credits. This is a
// pre-check only; Debit remains the authoritative gate.
func (s *Service) HasAtLeast(ctx context.Context, userID string, n int) (bool, error) {
	b, err := s.store.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return b.Credits >= n, nil
}
