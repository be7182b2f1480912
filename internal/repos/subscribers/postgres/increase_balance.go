package subscribers

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
)

func (r *subscribersRepo) IncreaseBalance(tx *sql.Tx, id int64, points decimal.Decimal) error {
	res, err := tx.Exec(`
		UPDATE subscribers
		SET balance = balance + $2
		WHERE id = $1
	`, id, points)
	if err != nil {
		return fmt.Errorf("increase balance: %w", err)
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
