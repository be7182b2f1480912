package pendingcredits

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

var (
	// ErrDuplicatePendingCredit: the purchase already has an active
	// pending credit. Enforced by a partial unique index.
	ErrDuplicatePendingCredit = errors.New("duplicate pending credit for purchase")

	ErrPendingCreditNotFound = errors.New("pending credit not found")

	// ErrAlreadyTransferred: the guarded transfer update matched no row,
	// so the credit was settled (or deactivated) by someone else.
	ErrAlreadyTransferred = errors.New("pending credit already transferred")
)

type PendingCredits interface {
	Insert(tx *sql.Tx, subscriberID, purchaseID int64, points decimal.Decimal) (int64, error)

	// GetActiveByPurchase returns the single active pending credit of a
	// purchase, transferred or not.
	GetActiveByPurchase(tx *sql.Tx, purchaseID int64) (*domain.PendingCredit, error)

	// ListEligible returns active, untransferred credits created at or
	// before the cutoff. A nil subscriberID means system-wide.
	ListEligible(ctx context.Context, cutoff time.Time, subscriberID *int64) ([]domain.PendingCredit, error)

	// MarkTransferred flips the transferred flag exactly once. The flag
	// is the single source of truth for "already applied to balance".
	MarkTransferred(tx *sql.Tx, id int64, at time.Time) error

	Deactivate(tx *sql.Tx, id int64) error

	// UntransferredPoints is the reconciliation D term: active points not
	// yet promoted into the balance.
	UntransferredPoints(ctx context.Context, subscriberID int64) (decimal.Decimal, error)
}
