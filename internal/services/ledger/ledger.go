// Package ledger is the narrow API through which external callers touch
// subscriber balances: purchase entry, gift credit and credit usage.
// Every mutating operation runs its full flow in a single DB transaction
// with the subscriber row locked, so no partial state is ever visible.
package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgutils"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/creditusages"
	pgcreditusages "github.com/prodominocode/bamboclub-ledger/internal/repos/creditusages/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/giftcredits"
	pggiftcredits "github.com/prodominocode/bamboclub-ledger/internal/repos/giftcredits/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
	pgpendingcredits "github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/purchases"
	pgpurchases "github.com/prodominocode/bamboclub-ledger/internal/repos/purchases/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
	pgsubscribers "github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers/postgres"
)

type Service struct {
	db       *sql.DB
	subs     subscribers.Subscribers
	buys     purchases.Purchases
	pendings pendingcredits.PendingCredits
	gifts    giftcredits.GiftCredits
	usages   creditusages.CreditUsages
}

func New(db *sql.DB) *Service {
	return &Service{
		db:       db,
		subs:     pgsubscribers.New(db),
		buys:     pgpurchases.New(db),
		pendings: pgpendingcredits.New(db),
		gifts:    pggiftcredits.New(db),
		usages:   pgcreditusages.New(db),
	}
}

// RegisterSubscriber creates a subscriber with a zero balance.
func (s *Service) RegisterSubscriber(ctx context.Context, mobile, name string) (int64, error) {
	id, err := s.subs.Create(ctx, mobile, name)
	if err != nil {
		return 0, fmt.Errorf("register subscriber: %w", err)
	}

	return id, nil
}

// RecordPurchase inserts a purchase and, unless it is excluded from
// credit, its pending credit in the same transaction. The balance is not
// touched; points become spendable only after settlement.
func (s *Service) RecordPurchase(ctx context.Context, subscriberID, amount int64, excludedFromCredit bool) (*PurchaseReceipt, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	receipt := &PurchaseReceipt{Points: decimal.Zero}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.subs.Exists(tx, subscriberID)
		if err != nil {
			return fmt.Errorf("check subscriber exists: %w", err)
		}

		purchaseID, err := s.buys.Insert(tx, subscriberID, amount, excludedFromCredit)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		receipt.PurchaseID = purchaseID

		if excludedFromCredit {
			return nil
		}

		points := domain.PurchasePoints(amount)
		if !points.IsPositive() {
			return nil
		}

		pendingID, err := s.pendings.Insert(tx, subscriberID, purchaseID, points)
		if err != nil {
			return fmt.Errorf("insert pending credit: %w", err)
		}

		receipt.PendingCreditID = pendingID
		receipt.Points = points

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}

	return receipt, nil
}

// AccruePurchaseCredit creates the pending credit for a purchase owned by
// an external purchase-entry flow. Exactly one active pending credit may
// exist per purchase.
func (s *Service) AccruePurchaseCredit(ctx context.Context, subscriberID, purchaseID int64, points decimal.Decimal) (int64, error) {
	if !points.IsPositive() {
		return 0, ErrInvalidAmount
	}

	var pendingID int64

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := s.subs.Exists(tx, subscriberID)
		if err != nil {
			return fmt.Errorf("check subscriber exists: %w", err)
		}

		p, err := s.buys.Get(tx, purchaseID)
		if err != nil {
			return fmt.Errorf("get purchase: %w", err)
		}
		if !p.State.Active() {
			return purchases.ErrPurchaseNotFound
		}

		pendingID, err = s.pendings.Insert(tx, subscriberID, purchaseID, points)
		if err != nil {
			return fmt.Errorf("insert pending credit: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("accrue purchase credit: %w", err)
	}

	return pendingID, nil
}

// AddGiftCredit converts the amount to points and credits the balance
// immediately, gift row and balance update in one transaction.
func (s *Service) AddGiftCredit(ctx context.Context, subscriberID, amount int64, note string) (*GiftReceipt, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	points := domain.GiftPoints(amount)
	receipt := &GiftReceipt{Points: points}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		balance, err := s.subs.LockAndGetBalance(tx, subscriberID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		giftID, err := s.gifts.Insert(tx, subscriberID, amount, points, note)
		if err != nil {
			return fmt.Errorf("insert gift credit: %w", err)
		}

		err = s.subs.IncreaseBalance(tx, subscriberID, points)
		if err != nil {
			return fmt.Errorf("increase balance: %w", err)
		}

		receipt.GiftCreditID = giftID
		receipt.NewBalance = balance.Add(points)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add gift credit: %w", err)
	}

	return receipt, nil
}

// UseCredit debits points from the balance and records the usage row.
// isRefund is carried as metadata only; a refund-flagged usage deducts
// exactly like a regular one.
func (s *Service) UseCredit(ctx context.Context, subscriberID int64, points decimal.Decimal, isRefund bool) (*UsageReceipt, error) {
	if !points.IsPositive() {
		return nil, ErrInvalidAmount
	}

	receipt := &UsageReceipt{Points: points}

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		balance, err := s.subs.LockAndGetBalance(tx, subscriberID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		// pre-check against locked balance
		if points.GreaterThan(balance) {
			return fmt.Errorf("pre-check debit: %w", subscribers.ErrInsufficientBalance)
		}

		err = s.subs.DecreaseBalance(tx, subscriberID, points)
		if err != nil {
			return fmt.Errorf("decrease balance: %w", err)
		}

		usageID, err := s.usages.Insert(tx, subscriberID, domain.UsageAmount(points), points, isRefund)
		if err != nil {
			return fmt.Errorf("insert credit usage: %w", err)
		}

		receipt.UsageID = usageID
		receipt.NewBalance = balance.Sub(points)

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("use credit: %w", err)
	}

	return receipt, nil
}

// GetBalance returns the stored balance (no locks; suitable for reads).
func (s *Service) GetBalance(ctx context.Context, subscriberID int64) (decimal.Decimal, error) {
	balance, err := s.subs.GetBalance(ctx, subscriberID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}
