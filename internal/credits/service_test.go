package credits

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestInitialGrant(t *testing.T) {
	svc := NewService(3)

	b, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Credits != 3 {
		t.Fatalf("expected 3 credits on first touch, got %d", b.Credits)
	}
}

func TestDebitReducesBalance(t *testing.T) {
	svc := NewService(3)

	b, err := svc.Debit(context.Background(), "user-1", 2)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if b.Credits != 1 {
		t.Fatalf("expected 1 credit after debit, got %d", b.Credits)
	}
}

func TestDebitInsufficientLeavesBalanceUntouched(t *testing.T) {
	svc := NewService(1)

	if _, err := svc.Debit(context.Background(), "user-1", 2); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}

	b, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Credits != 1 {
		t.Fatalf("expected balance untouched at 1, got %d", b.Credits)
	}
}

func TestDebitZeroIsNoop(t *testing.T) {
	svc := NewService(2)

	b, err := svc.Debit(context.Background(), "user-1", 0)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if b.Credits != 2 {
		t.Fatalf("expected balance unchanged at 2, got %d", b.Credits)
	}
}

func TestHasAtLeast(t *testing.T) {
	svc := NewService(2)

	ok, err := svc.HasAtLeast(context.Background(), "user-1", 2)
	if err != nil {
		t.Fatalf("HasAtLeast: %v", err)
	}
	if !ok {
		t.Fatalf("expected 2 credits to cover 2")
	}

	ok, err = svc.HasAtLeast(context.Background(), "user-1", 3)
	if err != nil {
		t.Fatalf("HasAtLeast: %v", err)
	}
	if ok {
		t.Fatalf("expected 2 credits not to cover 3")
	}
}

func TestConcurrentDebitsNeverGoNegative(t *testing.T) {
	const initial = 10
	svc := NewService(initial)

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < initial*3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Debit(context.Background(), "user-1", 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != initial {
		t.Fatalf("expected exactly %d successful debits, got %d", initial, succeeded)
	}
	b, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if b.Credits != 0 {
		t.Fatalf("expected balance drained to 0, got %d", b.Credits)
	}
}
