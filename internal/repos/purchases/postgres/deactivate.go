package purchases

import (
	"database/sql"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/purchases"
)

// Deactivate soft-deletes a purchase. The guard on active means a second
// deactivation reports not-found instead of silently succeeding.
func (r *purchasesRepo) Deactivate(tx *sql.Tx, id int64) error {
	res, err := tx.Exec(`
		UPDATE purchases
		SET active = FALSE
		WHERE id = $1
		  AND active
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate purchase: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return purchases.ErrPurchaseNotFound
	}

	return nil
}
