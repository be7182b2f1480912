package pendingcredits

import (
	"context"
	"fmt"
	"time"

	"github.com/prodominocode/bamboclub-ledger/internal/domain"
)

func (r *pendingCreditsRepo) ListEligible(ctx context.Context, cutoff time.Time, subscriberID *int64) ([]domain.PendingCredit, error) {
	// $2 NULL means no subscriber filter.
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subscriber_id, purchase_id, points, created_at
		FROM pending_credits
		WHERE active
		  AND NOT transferred
		  AND created_at <= $1
		  AND ($2::bigint IS NULL OR subscriber_id = $2)
		ORDER BY subscriber_id, id
	`, cutoff, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("list eligible pending credits: %w", err)
	}
	defer rows.Close()

	var credits []domain.PendingCredit

	for rows.Next() {
		pc := domain.PendingCredit{State: domain.StateActive}

		err = rows.Scan(&pc.ID, &pc.SubscriberID, &pc.PurchaseID, &pc.Points, &pc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan pending credit: %w", err)
		}

		credits = append(credits, pc)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate pending credits: %w", err)
	}

	return credits, nil
}
