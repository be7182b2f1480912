package pendingcredits

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

func (r *pendingCreditsRepo) UntransferredPoints(ctx context.Context, subscriberID int64) (decimal.Decimal, error) {
	var points decimal.Decimal

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM pending_credits
		WHERE subscriber_id = $1
		  AND active
		  AND NOT transferred
	`, subscriberID).Scan(&points)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum untransferred points: %w", err)
	}

	return points, nil
}
