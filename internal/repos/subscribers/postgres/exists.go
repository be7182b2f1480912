package subscribers

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/subscribers"
)

func (r *subscribersRepo) Exists(tx *sql.Tx, id int64) error {
	var one int

	err := tx.QueryRow(`
		SELECT 1
		FROM subscribers
		WHERE id = $1
	`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return subscribers.ErrSubscriberNotFound
		}

		return fmt.Errorf("check subscriber exists: %w", err)
	}

	return nil
}
