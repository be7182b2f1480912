// Package settlement promotes pending credits older than the holding
// period into the subscriber's spendable balance. It has no scheduling
// logic of its own; cmd/settler or an admin endpoint triggers a run.
package settlement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/logging"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/metrics"
	"github.com/prodominocode/bamboclub-ledger/internal/infra/pgutils"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
	pgpendingcredits "github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits/postgres"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
	pgsubscribers "github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers/postgres"
)

// Summary reports what a settlement run did.
type Summary struct {
	Eligible    int
	Transferred int
	Skipped     int // raced away by a concurrent run or deactivation
	Faults      int
	Points      decimal.Decimal
}

type Engine struct {
	db       *sql.DB
	subs     subscribers.Subscribers
	pendings pendingcredits.PendingCredits
	delay    time.Duration
}

func New(db *sql.DB, delay time.Duration) *Engine {
	if delay <= 0 {
		delay = domain.DefaultSettlementDelay
	}

	return &Engine{
		db:       db,
		subs:     pgsubscribers.New(db),
		pendings: pgpendingcredits.New(db),
		delay:    delay,
	}
}

// Settle transfers every eligible pending credit, one transaction per
// credit: lock the subscriber row, flip the transferred flag, add the
// points. A nil subscriberID settles system-wide. Re-running with no
// newly eligible rows is a no-op.
//
// A failing credit is logged and counted; it never aborts the rest of
// the run.
func (e *Engine) Settle(ctx context.Context, subscriberID *int64) (Summary, error) {
	log := logging.Component("settlement")
	summary := Summary{Points: decimal.Zero}

	cutoff := time.Now().Add(-e.delay)

	eligible, err := e.pendings.ListEligible(ctx, cutoff, subscriberID)
	if err != nil {
		return summary, fmt.Errorf("list eligible: %w", err)
	}

	summary.Eligible = len(eligible)

	for _, pc := range eligible {
		err = e.transfer(ctx, pc)

		switch {
		case err == nil:
			summary.Transferred++
			summary.Points = summary.Points.Add(pc.Points)
			metrics.SettlementTransfersTotal.Inc()
			pts, _ := pc.Points.Float64()
			metrics.SettlementPointsTotal.Add(pts)
		case errors.Is(err, pendingcredits.ErrAlreadyTransferred):
			summary.Skipped++
		default:
			summary.Faults++
			metrics.SettlementFaultsTotal.Inc()
			log.Error("pending credit transfer failed",
				"pending_credit_id", pc.ID,
				"subscriber_id", pc.SubscriberID,
				"error", err,
			)
		}
	}

	log.Info("settlement run finished",
		"eligible", summary.Eligible,
		"transferred", summary.Transferred,
		"skipped", summary.Skipped,
		"faults", summary.Faults,
		"points", summary.Points.String(),
	)

	return summary, nil
}

func (e *Engine) transfer(ctx context.Context, pc domain.PendingCredit) error {
	return pgutils.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		_, err := e.subs.LockAndGetBalance(tx, pc.SubscriberID)
		if err != nil {
			return fmt.Errorf("lock subscriber: %w", err)
		}

		err = e.pendings.MarkTransferred(tx, pc.ID, time.Now())
		if err != nil {
			return fmt.Errorf("mark transferred: %w", err)
		}

		err = e.subs.IncreaseBalance(tx, pc.SubscriberID, pc.Points)
		if err != nil {
			return fmt.Errorf("increase balance: %w", err)
		}

		return nil
	})
}
