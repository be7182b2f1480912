package pendingcredits

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
)

func (r *pendingCreditsRepo) Insert(tx *sql.Tx, subscriberID, purchaseID int64, points decimal.Decimal) (int64, error) {
	var id int64

	err := tx.QueryRow(`
		INSERT INTO pending_credits (subscriber_id, purchase_id, points)
		VALUES ($1, $2, $3)
		RETURNING id
	`, subscriberID, purchaseID, points).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return 0, pendingcredits.ErrDuplicatePendingCredit
		}

		return 0, fmt.Errorf("insert pending credit: %w", err)
	}

	return id, nil
}
