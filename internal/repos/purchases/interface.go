package purchases

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

// ErrPurchaseNotFound covers both a missing row and one that is already
// deactivated, matching what callers of deactivation need to know.
var ErrPurchaseNotFound = errors.New("purchase not found")

type Purchases interface {
	Insert(tx *sql.Tx, subscriberID, amount int64, excludedFromCredit bool) (int64, error)
	Get(tx *sql.Tx, id int64) (*domain.Purchase, error)
	Deactivate(tx *sql.Tx, id int64) error

	// ActivePoints is the reconciliation A term: active, non-excluded
	// purchase amounts converted to points, rounded per purchase.
	ActivePoints(ctx context.Context, subscriberID int64) (decimal.Decimal, error)
}
