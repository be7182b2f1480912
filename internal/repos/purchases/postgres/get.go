package purchases

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/purchases"
)

func (r *purchasesRepo) Get(tx *sql.Tx, id int64) (*domain.Purchase, error) {
	var (
		p      domain.Purchase
		active bool
	)

	err := tx.QueryRow(`
		SELECT id, subscriber_id, amount, excluded_from_credit, active, created_at
		FROM purchases
		WHERE id = $1
	`, id).Scan(&p.ID, &p.SubscriberID, &p.Amount, &p.ExcludedFromCredit, &active, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, purchases.ErrPurchaseNotFound
		}

		return nil, fmt.Errorf("get purchase: %w", err)
	}

	p.State = domain.StateOf(active)

	return &p, nil
}
