// Package deactivation reverses the balance effect of soft-deleted
// purchases and gift credits. The compensation a purchase needs depends
// on whether its pending credit was already settled; the whole decision
// and its balance write happen in one transaction under the subscriber
// row lock, so settlement can never interleave with it.
package deactivation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/logging"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/metrics"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgutils"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/auditlog"
	pgauditlog "github.com/prodominocode/bamboclub-ledger/internal/repos/auditlog/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/giftcredits"
	pggiftcredits "github.com/prodominocode/bamboclub-ledger/internal/repos/giftcredits/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
	pgpendingcredits "github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/purchases"
	pgpurchases "github.com/prodominocode/bamboclub-ledger/internal/repos/purchases/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
	pgsubscribers "github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers/postgres"
)

// Result reports the compensation applied by a deactivation.
type Result struct {
	SubscriberID  int64
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	Disposition   domain.PendingCreditDisposition
	Floored       bool
}

type Compensator struct {
	db       *sql.DB
	subs     subscribers.Subscribers
	buys     purchases.Purchases
	pendings pendingcredits.PendingCredits
	gifts    giftcredits.GiftCredits
	audit    auditlog.AuditLog
}

func New(db *sql.DB) *Compensator {
	return &Compensator{
		db:       db,
		subs:     pgsubscribers.New(db),
		buys:     pgpurchases.New(db),
		pendings: pgpendingcredits.New(db),
		gifts:    pggiftcredits.New(db),
		audit:    pgauditlog.New(db),
	}
}

// DeactivatePurchase soft-deletes a purchase and compensates the balance:
//
//   - no pending credit: the credit is assumed applied directly (legacy
//     rows), so the purchase's computed points are debited back;
//   - pending, not transferred: the pending credit is deactivated and the
//     balance is untouched, the credit was never granted;
//   - pending, transferred: the settled points are debited back and the
//     pending credit stays as evidence of the reversed transfer.
//
// Debits are floored at zero and the floor event is recorded for audit.
func (c *Compensator) DeactivatePurchase(ctx context.Context, purchaseID int64) (*Result, error) {
	var result Result

	err := pgutils.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		p, err := c.buys.Get(tx, purchaseID)
		if err != nil {
			return fmt.Errorf("get purchase: %w", err)
		}
		if !p.State.Active() {
			return purchases.ErrPurchaseNotFound
		}

		before, err := c.subs.LockAndGetBalance(tx, p.SubscriberID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		pc, err := c.pendings.GetActiveByPurchase(tx, purchaseID)
		if err != nil && !errors.Is(err, pendingcredits.ErrPendingCreditNotFound) {
			return fmt.Errorf("get pending credit: %w", err)
		}

		disposition := domain.DispositionOf(pc)
		debit := decimal.Zero

		switch disposition {
		case domain.DispositionNone:
			if !p.ExcludedFromCredit {
				debit = domain.PurchasePoints(p.Amount)
			}
		case domain.DispositionUntransferred:
			err = c.pendings.Deactivate(tx, pc.ID)
			if err != nil {
				return fmt.Errorf("deactivate pending credit: %w", err)
			}
		case domain.DispositionTransferred:
			debit = pc.Points
		}

		after, floored := domain.ClampDebit(before, debit)

		if !after.Equal(before) || floored {
			err = c.subs.SetBalance(tx, p.SubscriberID, after)
			if err != nil {
				return fmt.Errorf("set balance: %w", err)
			}
		}

		err = c.buys.Deactivate(tx, purchaseID)
		if err != nil {
			return fmt.Errorf("deactivate purchase: %w", err)
		}

		err = c.audit.Insert(tx, domain.AuditEntry{
			SubscriberID:  p.SubscriberID,
			Action:        domain.AuditPurchaseDeactivated,
			BalanceBefore: before,
			BalanceAfter:  after,
			Reason:        auditReason(disposition.String(), floored),
		})
		if err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}

		result = Result{
			SubscriberID:  p.SubscriberID,
			BalanceBefore: before,
			BalanceAfter:  after,
			Disposition:   disposition,
			Floored:       floored,
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deactivate purchase: %w", err)
	}

	c.noteFloor(result, "purchase_id", purchaseID)

	return &result, nil
}

// DeactivateGiftCredit soft-deletes a gift credit and debits its points.
// Gift credit hits the balance at creation, so there is no transferred
// distinction; the debit always applies, floored at zero.
func (c *Compensator) DeactivateGiftCredit(ctx context.Context, giftCreditID int64) (*Result, error) {
	var result Result

	err := pgutils.WithTx(ctx, c.db, func(tx *sql.Tx) error {
		gc, err := c.gifts.Get(tx, giftCreditID)
		if err != nil {
			return fmt.Errorf("get gift credit: %w", err)
		}
		if !gc.State.Active() {
			return giftcredits.ErrGiftCreditNotFound
		}

		before, err := c.subs.LockAndGetBalance(tx, gc.SubscriberID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		after, floored := domain.ClampDebit(before, gc.Points)

		err = c.subs.SetBalance(tx, gc.SubscriberID, after)
		if err != nil {
			return fmt.Errorf("set balance: %w", err)
		}

		err = c.gifts.Deactivate(tx, giftCreditID)
		if err != nil {
			return fmt.Errorf("deactivate gift credit: %w", err)
		}

		err = c.audit.Insert(tx, domain.AuditEntry{
			SubscriberID:  gc.SubscriberID,
			Action:        domain.AuditGiftCreditDeactivated,
			BalanceBefore: before,
			BalanceAfter:  after,
			Reason:        auditReason("gift_credit_reversal", floored),
		})
		if err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}

		result = Result{
			SubscriberID:  gc.SubscriberID,
			BalanceBefore: before,
			BalanceAfter:  after,
			Floored:       floored,
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("deactivate gift credit: %w", err)
	}

	c.noteFloor(result, "gift_credit_id", giftCreditID)

	return &result, nil
}

func auditReason(code string, floored bool) string {
	if floored {
		return code + domain.FlooredReasonSuffix
	}

	return code
}

func (c *Compensator) noteFloor(result Result, refKey string, refID int64) {
	if !result.Floored {
		return
	}

	metrics.BalanceFloorClampsTotal.Inc()
	logging.Component("deactivation").Warn("debit clamped at zero balance",
		refKey, refID,
		"subscriber_id", result.SubscriberID,
		"balance_before", result.BalanceBefore.String(),
	)
}
