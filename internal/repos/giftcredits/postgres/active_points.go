package giftcredits

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

func (r *giftCreditsRepo) ActivePoints(ctx context.Context, subscriberID int64) (decimal.Decimal, error) {
	var points decimal.Decimal

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(points), 0)
		FROM gift_credits
		WHERE subscriber_id = $1
		  AND active
	`, subscriberID).Scan(&points)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum active gift points: %w", err)
	}

	return points, nil
}
