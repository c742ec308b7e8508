package credits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreDebitConditionalUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db, 3)

	mock.ExpectExec("INSERT INTO user_credits").
		WithArgs("user-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE user_credits SET credits = credits - ").
		WithArgs("user-1", 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO user_credits").
		WithArgs("user-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT user_id, credits, updated_at FROM user_credits").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "credits", "updated_at"}).
			AddRow("user-1", 2, time.Now().UTC()))

	b, err := store.Debit(context.Background(), "user-1", 1)
	if err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if b.Credits != 2 {
		t.Fatalf("expected balance 2 after debit, got %d", b.Credits)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGStoreDebitInsufficient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := NewPGStore(db, 3)

	mock.ExpectExec("INSERT INTO user_credits").
		WithArgs("user-1", 3).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("UPDATE user_credits SET credits = credits - ").
		WithArgs("user-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if _, err := store.Debit(context.Background(), "user-1", 2); !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
