package giftcredits

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

// ErrGiftCreditNotFound covers a missing row and one already deactivated.
var ErrGiftCreditNotFound = errors.New("gift credit not found")

type GiftCredits interface {
	Insert(tx *sql.Tx, subscriberID, amount int64, points decimal.Decimal, note string) (int64, error)
	Get(tx *sql.Tx, id int64) (*domain.GiftCredit, error)
	Deactivate(tx *sql.Tx, id int64) error

	// ActivePoints is the reconciliation B term.
	ActivePoints(ctx context.Context, subscriberID int64) (decimal.Decimal, error)
}
