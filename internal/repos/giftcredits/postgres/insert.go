package giftcredits

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
)

func (r *giftCreditsRepo) Insert(tx *sql.Tx, subscriberID, amount int64, points decimal.Decimal, note string) (int64, error) {
	var id int64

	err := tx.QueryRow(`
		INSERT INTO gift_credits (subscriber_id, amount, points, note)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, subscriberID, amount, points, note).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert gift credit: %w", err)
	}

	return id, nil
}
