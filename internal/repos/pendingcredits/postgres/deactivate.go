package pendingcredits

import (
	"database/sql"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
)

func (r *pendingCreditsRepo) Deactivate(tx *sql.Tx, id int64) error {
	res, err := tx.Exec(`
		UPDATE pending_credits
		SET active = FALSE
		WHERE id = $1
		  AND active
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate pending credit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return pendingcredits.ErrPendingCreditNotFound
	}

	return nil
}
