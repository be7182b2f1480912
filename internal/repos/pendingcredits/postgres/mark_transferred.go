package pendingcredits

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
)

// MarkTransferred is the idempotency guard of the settlement engine: the
// update matches only an active, untransferred row, so a credit can be
// applied to the balance at most once no matter how often settlement runs.
func (r *pendingCreditsRepo) MarkTransferred(tx *sql.Tx, id int64, at time.Time) error {
	res, err := tx.Exec(`
		UPDATE pending_credits
		SET transferred = TRUE,
		    transferred_at = $2
		WHERE id = $1
		  AND active
		  AND NOT transferred
	`, id, at)
	if err != nil {
		return fmt.Errorf("mark transferred: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return pendingcredits.ErrAlreadyTransferred
	}

	return nil
}
