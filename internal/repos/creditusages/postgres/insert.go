package creditusages

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

func (r *creditUsagesRepo) Insert(tx *sql.Tx, subscriberID, amount int64, points decimal.Decimal, isRefund bool) (int64, error) {
	var id int64

	err := tx.QueryRow(`
		INSERT INTO credit_usages (subscriber_id, amount, points, is_refund)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, subscriberID, amount, points, isRefund).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert credit usage: %w", err)
	}

	return id, nil
}
