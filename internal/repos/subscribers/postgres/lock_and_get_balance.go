package subscribers

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
)

// LockAndGetBalance serializes balance writers on the subscriber row.
// Settlement, deactivation and usage racing on the same subscriber queue
// up here.
func (r *subscribersRepo) LockAndGetBalance(tx *sql.Tx, id int64) (decimal.Decimal, error) {
	var balance decimal.Decimal

	err := tx.QueryRow(`
		SELECT balance
		FROM subscribers
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, subscribers.ErrSubscriberNotFound
		}

		return decimal.Zero, fmt.Errorf("lock/get balance: %w", err)
	}

	return balance, nil
}
