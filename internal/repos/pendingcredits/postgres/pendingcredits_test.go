package pendingcredits

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgtestutil"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
	"github.com/shopspring/decimal"
)

func seedPurchase(t *testing.T, db *sql.DB) (subscriberID, purchaseID int64) {
	t.Helper()

	err := db.QueryRow(`
		INSERT INTO subscribers (mobile, name) VALUES ('79990000077', 'Test Subscriber')
		RETURNING id
	`).Scan(&subscriberID)
	if err != nil {
		t.Fatalf("seed subscriber: %v", err)
	}

	err = db.QueryRow(`
		INSERT INTO purchases (subscriber_id, amount) VALUES ($1, 500000)
		RETURNING id
	`, subscriberID).Scan(&purchaseID)
	if err != nil {
		t.Fatalf("seed purchase: %v", err)
	}

	return subscriberID, purchaseID
}

func inTx(t *testing.T, db *sql.DB, fn func(tx *sql.Tx) error) error {
	t.Helper()

	tx, err := db.BeginTx(t.Context(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = fn(tx)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	return nil
}

func TestPendingCredits_Insert_OneActivePerPurchase(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	subID, purchaseID := seedPurchase(t, db)
	repo := New(db)
	points := decimal.RequireFromString("5.00")

	err := inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.Insert(tx, subID, purchaseID, points)
		return err
	})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err = inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.Insert(tx, subID, purchaseID, points)
		return err
	})
	if !errors.Is(err, pendingcredits.ErrDuplicatePendingCredit) {
		t.Fatalf("want ErrDuplicatePendingCredit, got %v", err)
	}
}

func TestPendingCredits_Insert_AllowedAfterDeactivation(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	subID, purchaseID := seedPurchase(t, db)
	repo := New(db)
	points := decimal.RequireFromString("5.00")

	var firstID int64

	err := inTx(t, db, func(tx *sql.Tx) error {
		id, err := repo.Insert(tx, subID, purchaseID, points)
		firstID = id
		return err
	})
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}

	err = inTx(t, db, func(tx *sql.Tx) error {
		return repo.Deactivate(tx, firstID)
	})
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	// the uniqueness constraint only covers active rows
	err = inTx(t, db, func(tx *sql.Tx) error {
		_, err := repo.Insert(tx, subID, purchaseID, points)
		return err
	})
	if err != nil {
		t.Fatalf("re-insert after deactivation: %v", err)
	}
}

func TestPendingCredits_MarkTransferred_Guarded(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	subID, purchaseID := seedPurchase(t, db)
	repo := New(db)

	var id int64

	err := inTx(t, db, func(tx *sql.Tx) error {
		var ierr error
		id, ierr = repo.Insert(tx, subID, purchaseID, decimal.RequireFromString("5.00"))
		return ierr
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	err = inTx(t, db, func(tx *sql.Tx) error {
		return repo.MarkTransferred(tx, id, time.Now())
	})
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}

	err = inTx(t, db, func(tx *sql.Tx) error {
		return repo.MarkTransferred(tx, id, time.Now())
	})
	if !errors.Is(err, pendingcredits.ErrAlreadyTransferred) {
		t.Fatalf("want ErrAlreadyTransferred, got %v", err)
	}
}

func TestPendingCredits_ListEligible_CutoffAndFilter(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	subID, purchaseID := seedPurchase(t, db)
	repo := New(db)

	var id int64

	err := inTx(t, db, func(tx *sql.Tx) error {
		var ierr error
		id, ierr = repo.Insert(tx, subID, purchaseID, decimal.RequireFromString("5.00"))
		return ierr
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	// fresh row is not yet past a cutoff in the past
	got, err := repo.ListEligible(ctx, time.Now().Add(-time.Hour), nil)
	if err != nil {
		t.Fatalf("list eligible: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want 0 eligible, got %d", len(got))
	}

	_, err = db.Exec(`UPDATE pending_credits SET created_at = now() - INTERVAL '49 hours' WHERE id = $1`, id)
	if err != nil {
		t.Fatalf("backdate: %v", err)
	}

	got, err = repo.ListEligible(ctx, time.Now().Add(-48*time.Hour), nil)
	if err != nil {
		t.Fatalf("list eligible: %v", err)
	}
	if len(got) != 1 || got[0].ID != id {
		t.Fatalf("want the backdated row, got %+v", got)
	}

	other := subID + 1000
	got, err = repo.ListEligible(ctx, time.Now().Add(-48*time.Hour), &other)
	if err != nil {
		t.Fatalf("list eligible filtered: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want 0 rows for other subscriber, got %d", len(got))
	}
}
