package creditusages

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// CreditUsages records balance deductions. Usage rows are written by the
// ledger in the same transaction that debits the balance; the ledger core
// never re-applies them.
type CreditUsages interface {
	Insert(tx *sql.Tx, subscriberID, amount int64, points decimal.Decimal, isRefund bool) (int64, error)

	// ActivePoints is the reconciliation C term.
	ActivePoints(ctx context.Context, subscriberID int64) (decimal.Decimal, error)
}
