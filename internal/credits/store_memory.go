package credits

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu             sync.Mutex
	balances       map[string]*Balance
	initialCredits int
}

func newMemoryStore(initialCredits int) *memoryStore {
	return &memoryStore{
		balances:       make(map[string]*Balance),
		initialCredits: initialCredits,
	}
}

func (m *memoryStore) Get(ctx context.Context, userID string) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.ensureLocked(userID), nil
}

func (m *memoryStore) Debit(ctx context.Context, userID string, n int) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.ensureLocked(userID)
	if n <= 0 {
		return *b, nil
	}
	if b.Credits < n {
		return Balance{}, ErrInsufficientCredits
	}
	b.Credits -= n
	b.UpdatedAt = time.Now().UTC()
	return *b, nil
}

func (m *memoryStore) ensureLocked(userID string) *Balance {
	if b, ok := m.balances[userID]; ok {
		return b
	}
	b := &Balance{
		UserID:    userID,
		Credits:   m.initialCredits,
		UpdatedAt: time.Now().UTC(),
	}
	m.balances[userID] = b
	return b
}
