package subscribers

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
)

// DecreaseBalance debits the balance only when it covers the amount.
// Zero rows affected means the guard rejected the debit.
func (r *subscribersRepo) DecreaseBalance(tx *sql.Tx, id int64, points decimal.Decimal) error {
	res, err := tx.Exec(`
		UPDATE subscribers
		SET balance = balance - $2
		WHERE id = $1
		  AND balance >= $2
	`, id, points)
	if err != nil {
		return fmt.Errorf("decrease balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return subscribers.ErrInsufficientBalance
	}

	return nil
}
