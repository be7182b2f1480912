package purchases

import (
	"database/sql"
	"fmt"
)

func (r *purchasesRepo) Insert(tx *sql.Tx, subscriberID, amount int64, excludedFromCredit bool) (int64, error) {
	var id int64

	err := tx.QueryRow(`
		INSERT INTO purchases (subscriber_id, amount, excluded_from_credit)
		VALUES ($1, $2, $3)
		RETURNING id
	`, subscriberID, amount, excludedFromCredit).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert purchase: %w", err)
	}

	return id, nil
}
