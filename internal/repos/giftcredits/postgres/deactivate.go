package giftcredits

import (
	"database/sql"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/giftcredits"
)

func (r *giftCreditsRepo) Deactivate(tx *sql.Tx, id int64) error {
	res, err := tx.Exec(`
		UPDATE gift_credits
		SET active = FALSE
		WHERE id = $1
		  AND active
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate gift credit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return giftcredits.ErrGiftCreditNotFound
	}

	return nil
}
