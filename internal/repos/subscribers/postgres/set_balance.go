package subscribers

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
)

// SetBalance overwrites the balance with a value the caller computed
// under the row lock (clamped debits, reconciliation fixes).
func (r *subscribersRepo) SetBalance(tx *sql.Tx, id int64, balance decimal.Decimal) error {
	res, err := tx.Exec(`
		UPDATE subscribers
		SET balance = $2
		WHERE id = $1
	`, id, balance)
	if err != nil {
		return fmt.Errorf("set balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return subscribers.ErrSubscriberNotFound
	}

	return nil
}
