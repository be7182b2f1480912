// Package reconciliation recomputes every subscriber's balance from the
// four event streams and compares it with the stored value. The stored
// balance is the denormalized one the request path reads; drift between
// the two indicates a bug in one of the mutating paths.
//
// Calculated balance = A + B - C - D where
//
//	A: active, non-excluded purchase points
//	B: active gift-credit points
//	C: active credit-usage points
//	D: active, untransferred pending-credit points
package reconciliation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/logging"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/metrics"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgutils"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/auditlog"
	pgauditlog "github.com/prodominocode/bamboclub-ledger/internal/repos/auditlog/postgres"
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

var (
	// ErrWithinTolerance: the fix was requested but the stored balance
	// does not drift beyond tolerance.
	ErrWithinTolerance = errors.New("balance within tolerance")

	// ErrNegativeCalculated: the recomputed balance is negative; the fix
	// refuses to write it.
	ErrNegativeCalculated = errors.New("calculated balance is negative")

	// ErrVirtualCardSubscriber: the subscriber belongs to the reserved
	// virtual-card mobile range and is never auto-corrected.
	ErrVirtualCardSubscriber = errors.New("virtual card subscriber excluded from fixes")
)

// FixResult reports an applied balance overwrite.
type FixResult struct {
	SubscriberID int64
	OldBalance   decimal.Decimal
	NewBalance   decimal.Decimal
}

// FixSummary reports a FixAll batch.
type FixSummary struct {
	Examined int
	Fixed    int
	Skipped  int // guarded away (tolerance, negative, virtual card)
	Faults   int
}

type Engine struct {
	db       *sql.DB
	subs     subscribers.Subscribers
	buys     purchases.Purchases
	pendings pendingcredits.PendingCredits
	gifts    giftcredits.GiftCredits
	usages   creditusages.CreditUsages
	audit    auditlog.AuditLog

	// tolerance is expressed in currency units; deltas are converted
	// with the point value before comparison.
	tolerance     decimal.Decimal
	virtualPrefix string
}

func New(db *sql.DB, tolerance decimal.Decimal, virtualPrefix string) *Engine {
	if !tolerance.IsPositive() {
		tolerance = domain.DefaultReconciliationTolerance
	}
	if virtualPrefix == "" {
		virtualPrefix = domain.DefaultVirtualCardPrefix
	}

	return &Engine{
		db:            db,
		subs:          pgsubscribers.New(db),
		buys:          pgpurchases.New(db),
		pendings:      pgpendingcredits.New(db),
		gifts:         pggiftcredits.New(db),
		usages:        pgcreditusages.New(db),
		audit:         pgauditlog.New(db),
		tolerance:     tolerance,
		virtualPrefix: virtualPrefix,
	}
}

// Compute builds the reconciliation report. A nil subscriberID audits
// every subscriber; a failing subscriber is logged and skipped without
// aborting the run.
func (e *Engine) Compute(ctx context.Context, subscriberID *int64) ([]domain.ReconciliationRow, error) {
	log := logging.Component("reconciliation")

	var (
		subs []domain.Subscriber
		err  error
	)

	if subscriberID != nil {
		sub, gerr := e.subs.Get(ctx, *subscriberID)
		if gerr != nil {
			return nil, fmt.Errorf("get subscriber: %w", gerr)
		}

		subs = []domain.Subscriber{*sub}
	} else {
		subs, err = e.subs.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list subscribers: %w", err)
		}
	}

	rows := make([]domain.ReconciliationRow, 0, len(subs))

	for _, sub := range subs {
		row, err := e.computeRow(ctx, sub)
		if err != nil {
			metrics.ReconciliationFaultsTotal.Inc()
			log.Error("recompute failed", "subscriber_id", sub.ID, "error", err)

			continue
		}

		if row.Mismatched {
			metrics.ReconciliationMismatchesTotal.Inc()
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func (e *Engine) computeRow(ctx context.Context, sub domain.Subscriber) (domain.ReconciliationRow, error) {
	a, err := e.buys.ActivePoints(ctx, sub.ID)
	if err != nil {
		return domain.ReconciliationRow{}, fmt.Errorf("purchase points: %w", err)
	}

	b, err := e.gifts.ActivePoints(ctx, sub.ID)
	if err != nil {
		return domain.ReconciliationRow{}, fmt.Errorf("gift points: %w", err)
	}

	c, err := e.usages.ActivePoints(ctx, sub.ID)
	if err != nil {
		return domain.ReconciliationRow{}, fmt.Errorf("usage points: %w", err)
	}

	d, err := e.pendings.UntransferredPoints(ctx, sub.ID)
	if err != nil {
		return domain.ReconciliationRow{}, fmt.Errorf("untransferred points: %w", err)
	}

	calculated := a.Add(b).Sub(c).Sub(d)
	delta := sub.Balance.Sub(calculated)

	return domain.ReconciliationRow{
		SubscriberID: sub.ID,
		Mobile:       sub.Mobile,
		Stored:       sub.Balance,
		Calculated:   calculated,
		Delta:        delta,
		Mismatched:   e.exceedsTolerance(delta),
	}, nil
}

func (e *Engine) exceedsTolerance(delta decimal.Decimal) bool {
	return domain.CurrencyValue(delta.Abs()).GreaterThan(e.tolerance)
}

// ApplyFix overwrites the stored balance with the calculated one, but
// only when the drift exceeds tolerance, the calculated balance is
// non-negative and the subscriber is not a virtual card identity. Every
// overwrite is logged and written to the audit log for rollback.
func (e *Engine) ApplyFix(ctx context.Context, subscriberID int64) (*FixResult, error) {
	sub, err := e.subs.Get(ctx, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("get subscriber: %w", err)
	}

	if e.isVirtualCard(sub.Mobile) {
		return nil, ErrVirtualCardSubscriber
	}

	row, err := e.computeRow(ctx, *sub)
	if err != nil {
		return nil, fmt.Errorf("compute: %w", err)
	}

	if !row.Mismatched {
		return nil, ErrWithinTolerance
	}
	if row.Calculated.IsNegative() {
		return nil, ErrNegativeCalculated
	}

	var result FixResult

	err = pgutils.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		before, err := e.subs.LockAndGetBalance(tx, subscriberID)
		if err != nil {
			return fmt.Errorf("lock and get balance: %w", err)
		}

		// The balance may have moved since the report was computed;
		// re-check the guard against the locked value.
		if !e.exceedsTolerance(before.Sub(row.Calculated)) {
			return ErrWithinTolerance
		}

		err = e.subs.SetBalance(tx, subscriberID, row.Calculated)
		if err != nil {
			return fmt.Errorf("set balance: %w", err)
		}

		err = e.audit.Insert(tx, domain.AuditEntry{
			SubscriberID:  subscriberID,
			Action:        domain.AuditReconciliationFix,
			BalanceBefore: before,
			BalanceAfter:  row.Calculated,
			Reason:        fmt.Sprintf("stored=%s calculated=%s", before, row.Calculated),
		})
		if err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}

		result = FixResult{
			SubscriberID: subscriberID,
			OldBalance:   before,
			NewBalance:   row.Calculated,
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("apply fix: %w", err)
	}

	metrics.ReconciliationFixesTotal.Inc()
	logging.Component("reconciliation").Info("balance overwritten",
		"subscriber_id", result.SubscriberID,
		"old_balance", result.OldBalance.String(),
		"new_balance", result.NewBalance.String(),
	)

	return &result, nil
}

// FixAll applies the fix to every mismatched subscriber from a fresh
// report, isolating per-subscriber failures.
func (e *Engine) FixAll(ctx context.Context) (FixSummary, error) {
	log := logging.Component("reconciliation")

	rows, err := e.Compute(ctx, nil)
	if err != nil {
		return FixSummary{}, fmt.Errorf("compute: %w", err)
	}

	summary := FixSummary{Examined: len(rows)}

	for _, row := range rows {
		if !row.Mismatched {
			continue
		}

		_, err = e.ApplyFix(ctx, row.SubscriberID)

		switch {
		case err == nil:
			summary.Fixed++
		case errors.Is(err, ErrWithinTolerance),
			errors.Is(err, ErrNegativeCalculated),
			errors.Is(err, ErrVirtualCardSubscriber):
			summary.Skipped++
		default:
			summary.Faults++
			log.Error("fix failed", "subscriber_id", row.SubscriberID, "error", err)
		}
	}

	log.Info("fix run finished",
		"examined", summary.Examined,
		"fixed", summary.Fixed,
		"skipped", summary.Skipped,
		"faults", summary.Faults,
	)

	return summary, nil
}

func (e *Engine) isVirtualCard(mobile string) bool {
	return strings.HasPrefix(mobile, e.virtualPrefix)
}
