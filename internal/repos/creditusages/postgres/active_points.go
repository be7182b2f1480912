package creditusages

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// ActivePoints sums refund-flagged rows like any other usage; refunds
// deduct balance the same way, so they reduce the calculated balance too.
func (r *creditUsagesRepo) ActivePoints(ctx context.Context, subscriberID int64) (decimal.Decimal, error) {
	var points decimal.Decimal

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM credit_usages
		WHERE subscriber_id = $1
		  AND active
	`, subscriberID).Scan(&points)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum active usage points: %w", err)
	}

	return points, nil
}
