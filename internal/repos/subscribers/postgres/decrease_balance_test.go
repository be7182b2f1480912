package subscribers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgtestutil"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
	"github.com/shopspring/decimal"
)

func TestSubscribers_DecreaseBalance_Table(t *testing.T) {
	t.Parallel()

	type tc struct {
		name        string
		seedBalance string // empty => no subscriber seeded
		points      string
		wantBalance string
		wantErr     error
	}

	tests := []tc{
		{
			name:        "full_debit_to_zero",
			seedBalance: "15.00",
			points:      "15.00",
			wantBalance: "0.00",
		},
		{
			name:        "partial_debit",
			seedBalance: "20.50",
			points:      "5.25",
			wantBalance: "15.25",
		},
		{
			name:        "insufficient_balance_rejected",
			seedBalance: "4.99",
			points:      "5.00",
			wantBalance: "4.99",
			wantErr:     subscribers.ErrInsufficientBalance,
		},
		{
			name:    "missing_subscriber",
			points:  "1.00",
			wantErr: subscribers.ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			var id int64 = 999

			if tt.seedBalance != "" {
				err := db.QueryRow(`
					INSERT INTO subscribers (mobile, name, balance)
					VALUES ('79991234567', 'Test Subscriber', $1)
					RETURNING id
				`, tt.seedBalance).Scan(&id)
				if err != nil {
					t.Fatalf("seed subscriber: %v", err)
				}
			}

			repo := New(db)

			ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
			defer cancel()

			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}
			defer func() { _ = tx.Rollback() }()

			err = repo.DecreaseBalance(tx, id, decimal.RequireFromString(tt.points))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			err = tx.Commit()
			if err != nil {
				t.Fatalf("commit: %v", err)
			}

			var got decimal.Decimal
			err = db.QueryRow(`SELECT balance FROM subscribers WHERE id = $1`, id).Scan(&got)
			if err != nil {
				t.Fatalf("read balance: %v", err)
			}

			if !got.Equal(decimal.RequireFromString(tt.wantBalance)) {
				t.Fatalf("balance mismatch: want %s, got %s", tt.wantBalance, got)
			}
		})
	}
}

func TestSubscribers_IncreaseBalance_MissingSubscriber(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = repo.IncreaseBalance(tx, 404, decimal.New(1, 0))
	if !errors.Is(err, subscribers.ErrSubscriberNotFound) {
		t.Fatalf("want ErrSubscriberNotFound, got %v", err)
	}
}

func TestSubscribers_Create_DuplicateMobile(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	_, err := repo.Create(ctx, "79990001122", "First")
	if err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err = repo.Create(ctx, "79990001122", "Second")
	if !errors.Is(err, subscribers.ErrDuplicateMobile) {
		t.Fatalf("want ErrDuplicateMobile, got %v", err)
	}

	var cnt int
	err = db.QueryRow(`SELECT COUNT(*) FROM subscribers`).Scan(&cnt)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("want 1 subscriber, got %d", cnt)
	}
}
