package giftcredits

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/giftcredits"
)

func (r *giftCreditsRepo) Get(tx *sql.Tx, id int64) (*domain.GiftCredit, error) {
	var (
		gc     domain.GiftCredit
		active bool
	)

	err := tx.QueryRow(`
		SELECT id, subscriber_id, amount, points, active, note, created_at
		FROM gift_credits
		WHERE id = $1
	`, id).Scan(&gc.ID, &gc.SubscriberID, &gc.Amount, &gc.Points, &active, &gc.Note, &gc.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, giftcredits.ErrGiftCreditNotFound
		}

		return nil, fmt.Errorf("get gift credit: %w", err)
	}

	gc.State = domain.StateOf(active)

	return &gc, nil
}
