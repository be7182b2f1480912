package pendingcredits

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
	"github.com/prodominocode/bamboclub-ledger/internal/repos/pendingcredits"
)

func (r *pendingCreditsRepo) GetActiveByPurchase(tx *sql.Tx, purchaseID int64) (*domain.PendingCredit, error) {
	var (
		pc            domain.PendingCredit
		active        bool
		transferredAt sql.NullTime
	)

	err := tx.QueryRow(`
		SELECT id, subscriber_id, purchase_id, points, active, transferred, transferred_at, created_at
		FROM pending_credits
		WHERE purchase_id = $1
		  AND active
	`, purchaseID).Scan(
		&pc.ID, &pc.SubscriberID, &pc.PurchaseID, &pc.Points,
		&active, &pc.Transferred, &transferredAt, &pc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pendingcredits.ErrPendingCreditNotFound
		}

		return nil, fmt.Errorf("get pending credit by purchase: %w", err)
	}

	pc.State = domain.StateOf(active)
	if transferredAt.Valid {
		pc.TransferredAt = &transferredAt.Time
	}

	return &pc, nil
}
